package conversations

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"chatsync/entity"
)

// FetchConversations returns the conversations matching a status filter
// ("open", "closed", or "" for all).
func (s *Service) FetchConversations(ctx context.Context, status string) ([]entity.Conversation, error) {
	path := "/api/conversations"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}

	var convs []entity.Conversation
	if err := s.do(ctx, http.MethodGet, path, nil, &convs); err != nil {
		return nil, err
	}

	s.Log.With(
		slog.String("status", status),
		slog.Int("count", len(convs)),
	).Debug("fetched conversations")
	return convs, nil
}

// FetchCustomerConversations returns all conversations for one customer
// within an account.
func (s *Service) FetchCustomerConversations(ctx context.Context, customerID, accountID string) ([]entity.Conversation, error) {
	path := fmt.Sprintf("/api/customers/%s/conversations?account_id=%s",
		url.PathEscape(customerID), url.QueryEscape(accountID))

	var convs []entity.Conversation
	if err := s.do(ctx, http.MethodGet, path, nil, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

// FetchMessages returns the message history for a conversation, used
// for the initial load when its channel is joined.
func (s *Service) FetchMessages(ctx context.Context, conversationID string) ([]entity.Message, error) {
	path := fmt.Sprintf("/api/conversations/%s/messages", url.PathEscape(conversationID))

	var msgs []entity.Message
	if err := s.do(ctx, http.MethodGet, path, nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// CreateConversation opens a new conversation for a customer.
func (s *Service) CreateConversation(ctx context.Context, accountID, customerID string) (entity.Conversation, error) {
	body := map[string]any{
		"conversation": map[string]string{
			"account_id":  accountID,
			"customer_id": customerID,
		},
	}

	var conv entity.Conversation
	if err := s.do(ctx, http.MethodPost, "/api/conversations", body, &conv); err != nil {
		return entity.Conversation{}, err
	}
	return conv, nil
}

// CreateCustomer registers a new customer and returns its id.
func (s *Service) CreateCustomer(ctx context.Context, accountID string) (string, error) {
	body := map[string]any{
		"customer": map[string]string{"account_id": accountID},
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := s.do(ctx, http.MethodPost, "/api/customers", body, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

// CloseConversation requests a close; the lifecycle tracker confirms or
// rolls back on the result.
func (s *Service) CloseConversation(ctx context.Context, conversationID string) error {
	path := fmt.Sprintf("/api/conversations/%s/close", url.PathEscape(conversationID))
	return s.do(ctx, http.MethodPost, path, nil, nil)
}

// ReopenConversation requests a reopen.
func (s *Service) ReopenConversation(ctx context.Context, conversationID string) error {
	path := fmt.Sprintf("/api/conversations/%s/reopen", url.PathEscape(conversationID))
	return s.do(ctx, http.MethodPost, path, nil, nil)
}

// MarkPriority flags the conversation as priority.
func (s *Service) MarkPriority(ctx context.Context, conversationID string) error {
	path := fmt.Sprintf("/api/conversations/%s/priority", url.PathEscape(conversationID))
	return s.do(ctx, http.MethodPost, path, nil, nil)
}

// RemovePriority clears the priority flag.
func (s *Service) RemovePriority(ctx context.Context, conversationID string) error {
	path := fmt.Sprintf("/api/conversations/%s/priority", url.PathEscape(conversationID))
	return s.do(ctx, http.MethodDelete, path, nil, nil)
}

// AssignUser assigns an agent to the conversation.
func (s *Service) AssignUser(ctx context.Context, conversationID, userID string) error {
	path := fmt.Sprintf("/api/conversations/%s/assignee", url.PathEscape(conversationID))
	return s.do(ctx, http.MethodPost, path, map[string]string{"user_id": userID}, nil)
}
