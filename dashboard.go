package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"chatsync/entity"
	"chatsync/internal/channel"
	"chatsync/internal/config"
	"chatsync/internal/lib/sl"
	"chatsync/internal/lifecycle"
	"chatsync/internal/nav"
	"chatsync/internal/notify"
	"chatsync/internal/presence"
	"chatsync/internal/service/conversations"
	"chatsync/internal/store"
)

// terminalBell is the console notification player.
type terminalBell struct{}

func (terminalBell) Play() error {
	_, err := fmt.Fprint(os.Stdout, "\a")
	return err
}

// dashboard is the console stand-in for the agent UI: it owns the
// visible conversation list and current selection, and consumes the
// engine the same way the real dashboard would.
type dashboard struct {
	conf      *config.Config
	log       *slog.Logger
	api       *conversations.Service
	manager   *channel.Manager
	messages  *store.Store
	online    *presence.Tracker
	lifecycle *lifecycle.Service
	throttle  *notify.Throttle

	mu       sync.Mutex
	ids      []string
	convs    map[string]entity.Conversation
	selected string
	sub      *channel.Subscription
}

func newDashboard(
	conf *config.Config,
	log *slog.Logger,
	api *conversations.Service,
	manager *channel.Manager,
	messages *store.Store,
	online *presence.Tracker,
	lifecycleService *lifecycle.Service,
	throttle *notify.Throttle,
) *dashboard {
	return &dashboard{
		conf:      conf,
		log:       log.With(sl.Module("dashboard")),
		api:       api,
		manager:   manager,
		messages:  messages,
		online:    online,
		lifecycle: lifecycleService,
		throttle:  throttle,
		convs:     make(map[string]entity.Conversation),
	}
}

// run fetches the open conversations, joins the first one, and reads
// triage commands from stdin until EOF or "q".
func (d *dashboard) run(ctx context.Context) error {
	convs, err := d.api.FetchConversations(ctx, entity.ConversationOpen)
	if err != nil {
		return fmt.Errorf("fetching conversations: %w", err)
	}

	d.mu.Lock()
	for _, c := range convs {
		d.ids = append(d.ids, c.ID)
		d.convs[c.ID] = c
		d.lifecycle.Tracker().Track(c)
	}
	ids := append([]string(nil), d.ids...)
	d.mu.Unlock()

	d.log.Info("conversation list loaded", slog.Int("count", len(ids)))
	d.selectConversation(nav.Next("", ids))

	fmt.Println("commands: n(ext), p(rev), close, reopen, who, q(uit); anything else is sent as a message")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "q":
			return nil
		case "n":
			d.selectConversation(nav.Next(d.selectedID(), d.visibleIDs()))
		case "p":
			d.selectConversation(nav.Previous(d.selectedID(), d.visibleIDs()))
		case "close":
			d.closeSelected(ctx)
		case "reopen":
			d.reopenSelected(ctx)
		case "who":
			d.printPresence()
		default:
			d.sendMessage(line)
		}
	}
	return scanner.Err()
}

func (d *dashboard) selectedID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.selected
}

func (d *dashboard) visibleIDs() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.ids...)
}

// selectConversation switches the active conversation, joining its
// channel. The manager leaves the previous channel itself.
func (d *dashboard) selectConversation(id string) {
	if id == "" {
		fmt.Println("no conversations")
		return
	}

	sub, err := d.manager.Join(id)
	if err != nil {
		d.log.Error("join failed", slog.String("conversation_id", id), sl.Err(err))
	}

	d.mu.Lock()
	d.selected = id
	d.sub = sub
	d.mu.Unlock()

	fmt.Printf("-> conversation %s\n", id)
}

func (d *dashboard) closeSelected(ctx context.Context) {
	id := d.selectedID()
	if id == "" {
		return
	}

	if err := d.lifecycle.Close(ctx, id); err != nil {
		fmt.Printf("close failed, conversation stays open: %v\n", err)
		return
	}

	// The closed conversation drops out of the open filter; pick the
	// replacement from the pre-removal list.
	d.mu.Lock()
	next := nav.ResolveNextSelection(id, d.ids)
	remaining := d.ids[:0]
	for _, v := range d.ids {
		if v != id {
			remaining = append(remaining, v)
		}
	}
	d.ids = remaining
	d.mu.Unlock()

	fmt.Printf("closed %s\n", id)
	d.selectConversation(next)
}

func (d *dashboard) reopenSelected(ctx context.Context) {
	id := d.selectedID()
	if id == "" {
		return
	}
	if err := d.lifecycle.Reopen(ctx, id); err != nil {
		fmt.Printf("reopen failed: %v\n", err)
		return
	}
	fmt.Printf("reopened %s\n", id)
}

func (d *dashboard) printPresence() {
	id := d.selectedID()

	d.mu.Lock()
	conv, ok := d.convs[id]
	d.mu.Unlock()
	if !ok {
		return
	}

	if d.online.IsOnline(conv.CustomerID) {
		fmt.Printf("customer %s is online\n", conv.CustomerID)
		return
	}
	fmt.Printf("customer %s is offline\n", conv.CustomerID)
}

func (d *dashboard) sendMessage(body string) {
	d.mu.Lock()
	sub := d.sub
	d.mu.Unlock()

	now := time.Now().UTC()
	d.manager.Send(sub, entity.OutboundMessage{
		Body:      body,
		Sender:    entity.MessageTypeAgent,
		AccountID: d.conf.Account.ID,
		UserID:    d.conf.Account.UserID,
		SentAt:    &now,
	})
}

// Append implements channel.MessageListener: merge into the store, then
// render.
func (d *dashboard) Append(conversationID string, msg entity.Message) {
	d.messages.Append(conversationID, msg)

	sender := msg.UserID
	if sender == "" {
		sender = msg.CustomerID
	}
	fmt.Printf("[%s] %s (%s): %s\n", conversationID, sender, msg.Type, msg.Body)
}

// Joined implements channel.JoinListener: load the history once the
// channel is up.
func (d *dashboard) Joined(conversationID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	history, err := d.api.FetchMessages(ctx, conversationID)
	if err != nil {
		d.log.Error("history load failed", slog.String("conversation_id", conversationID), sl.Err(err))
		return
	}

	d.messages.LoadInitial(conversationID, history)
	msgs := d.messages.Get(conversationID)
	fmt.Printf("joined %s, %d messages\n", conversationID, len(msgs))
	for i, m := range msgs {
		marker := " "
		if store.IsLastInGroup(msgs, i) {
			marker = "*"
		}
		fmt.Printf("  %s %s: %s\n", marker, m.Type, m.Body)
	}
}

// JoinFailed implements channel.JoinListener.
func (d *dashboard) JoinFailed(conversationID string, err error) {
	fmt.Printf("could not join %s: %v\n", conversationID, err)
}

// Effect implements channel.EffectListener. Failed effects stay out of
// conversation state.
func (d *dashboard) Effect(e channel.Effect) {
	switch e.Type {
	case channel.EffectScrollToLatest:
		d.log.Debug("scroll to latest", slog.String("conversation_id", e.ConversationID))
	case channel.EffectNotificationSound:
		d.throttle.Notify()
	}
}
