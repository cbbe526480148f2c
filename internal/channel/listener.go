package channel

import "chatsync/entity"

// MessageListener receives confirmed inbound messages so they can be
// merged into the message store without the manager importing it.
type MessageListener interface {
	Append(conversationID string, msg entity.Message)
}

// PresenceListener receives presence diffs from joined channels.
type PresenceListener interface {
	ApplyDiff(diff entity.PresenceDiff)
}

// JoinListener is notified of join outcomes. Join failures are reported
// here once and never retried by the manager.
type JoinListener interface {
	Joined(conversationID string)
	JoinFailed(conversationID string, err error)
}

// Effect types emitted by the manager. Effects describe UI side effects;
// the manager never performs them itself, and a failed effect must not
// feed back into conversation state.
const (
	EffectScrollToLatest    = "scroll_to_latest"
	EffectNotificationSound = "notification_sound"
)

// Effect is a descriptor of a UI side effect triggered by channel
// activity. Each inbound transport event produces any given effect at
// most once.
type Effect struct {
	Type           string
	ConversationID string
}

// EffectListener consumes effect descriptors.
type EffectListener interface {
	Effect(e Effect)
}
