package lifecycle_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatsync/entity"
	"chatsync/internal/lifecycle"
)

// fakeAPI fails the operations listed in failing.
type fakeAPI struct {
	failing map[string]bool
	calls   []string
}

func (f *fakeAPI) call(name string) error {
	f.calls = append(f.calls, name)
	if f.failing[name] {
		return errors.New("backend rejected")
	}
	return nil
}

func (f *fakeAPI) CloseConversation(_ context.Context, _ string) error {
	return f.call("close")
}

func (f *fakeAPI) ReopenConversation(_ context.Context, _ string) error {
	return f.call("reopen")
}

func (f *fakeAPI) MarkPriority(_ context.Context, _ string) error {
	return f.call("mark_priority")
}

func (f *fakeAPI) RemovePriority(_ context.Context, _ string) error {
	return f.call("remove_priority")
}

func (f *fakeAPI) AssignUser(_ context.Context, _, _ string) error {
	return f.call("assign")
}

func newService(failing ...string) (*lifecycle.Service, *fakeAPI) {
	api := &fakeAPI{failing: make(map[string]bool)}
	for _, op := range failing {
		api.failing[op] = true
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return lifecycle.NewService(lifecycle.NewTracker(), api, log), api
}

func TestCloseConfirmsOnSuccess(t *testing.T) {
	svc, api := newService()

	err := svc.Close(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"close"}, api.calls)
	assert.Equal(t, lifecycle.StatusClosed, svc.Tracker().Status("c1"))
}

func TestCloseRollsBackOnFailure(t *testing.T) {
	svc, _ := newService("close")

	err := svc.Close(context.Background(), "c1")
	require.Error(t, err)
	assert.Equal(t, lifecycle.StatusOpen, svc.Tracker().Status("c1"))
	assert.False(t, svc.Tracker().IsClosing("c1"))
}

func TestReopenRollsBackOnFailure(t *testing.T) {
	svc, _ := newService("reopen")
	svc.Tracker().Track(entity.Conversation{ID: "c1", Status: entity.ConversationClosed})

	err := svc.Reopen(context.Background(), "c1")
	require.Error(t, err)
	assert.Equal(t, lifecycle.StatusClosed, svc.Tracker().Status("c1"))
}

func TestSetPriorityRevertsFlagOnFailure(t *testing.T) {
	svc, _ := newService("mark_priority")

	err := svc.SetPriority(context.Background(), "c1", true)
	require.Error(t, err)
	assert.False(t, svc.Tracker().IsPriority("c1"))
}

func TestSetPriorityRoundTrip(t *testing.T) {
	svc, api := newService()

	require.NoError(t, svc.SetPriority(context.Background(), "c1", true))
	assert.True(t, svc.Tracker().IsPriority("c1"))

	require.NoError(t, svc.SetPriority(context.Background(), "c1", false))
	assert.False(t, svc.Tracker().IsPriority("c1"))

	assert.Equal(t, []string{"mark_priority", "remove_priority"}, api.calls)
}

func TestAssignDelegates(t *testing.T) {
	svc, api := newService()

	require.NoError(t, svc.Assign(context.Background(), "c1", "agent-1"))
	assert.Equal(t, []string{"assign"}, api.calls)
}
