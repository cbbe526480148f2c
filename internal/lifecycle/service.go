package lifecycle

import (
	"context"
	"log/slog"

	"chatsync/internal/lib/sl"
)

// API is the slice of the backend REST surface that drives lifecycle
// transitions. Network failure and server-side rejection are not
// distinguished: both roll back identically.
type API interface {
	CloseConversation(ctx context.Context, conversationID string) error
	ReopenConversation(ctx context.Context, conversationID string) error
	MarkPriority(ctx context.Context, conversationID string) error
	RemovePriority(ctx context.Context, conversationID string) error
	AssignUser(ctx context.Context, conversationID, userID string) error
}

// Service pairs optimistic tracker transitions with the confirming REST
// calls. Errors are returned to the caller for user-visible feedback
// after the tracker has been rolled back.
type Service struct {
	tracker *Tracker
	api     API
	log     *slog.Logger
}

// NewService creates a lifecycle service.
func NewService(tracker *Tracker, api API, log *slog.Logger) *Service {
	return &Service{
		tracker: tracker,
		api:     api,
		log:     log.With(sl.Module("lifecycle.service")),
	}
}

// Tracker exposes the underlying display state.
func (s *Service) Tracker() *Tracker {
	return s.tracker
}

// Close marks the conversation closing immediately and confirms or
// rolls back when the request resolves.
func (s *Service) Close(ctx context.Context, conversationID string) error {
	s.tracker.MarkClosing(conversationID)

	if err := s.api.CloseConversation(ctx, conversationID); err != nil {
		s.tracker.Rollback(conversationID)
		s.log.Error("close failed", slog.String("conversation_id", conversationID), sl.Err(err))
		return err
	}

	s.tracker.ConfirmClosed(conversationID)
	return nil
}

// Reopen optimistically reopens a closed conversation.
func (s *Service) Reopen(ctx context.Context, conversationID string) error {
	s.tracker.Reopen(conversationID)

	if err := s.api.ReopenConversation(ctx, conversationID); err != nil {
		s.tracker.Rollback(conversationID)
		s.log.Error("reopen failed", slog.String("conversation_id", conversationID), sl.Err(err))
		return err
	}

	s.tracker.ConfirmReopened(conversationID)
	return nil
}

// SetPriority toggles the priority flag optimistically, reverting on
// request failure.
func (s *Service) SetPriority(ctx context.Context, conversationID string, priority bool) error {
	prev := s.tracker.IsPriority(conversationID)
	s.tracker.SetPriority(conversationID, priority)

	var err error
	if priority {
		err = s.api.MarkPriority(ctx, conversationID)
	} else {
		err = s.api.RemovePriority(ctx, conversationID)
	}
	if err != nil {
		s.tracker.SetPriority(conversationID, prev)
		s.log.Error("priority update failed", slog.String("conversation_id", conversationID), sl.Err(err))
		return err
	}
	return nil
}

// Assign assigns an agent to the conversation. Assignment lives in the
// externally fetched conversation list, so there is no optimistic state
// to roll back here.
func (s *Service) Assign(ctx context.Context, conversationID, userID string) error {
	return s.api.AssignUser(ctx, conversationID, userID)
}
