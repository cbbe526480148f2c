package lifecycle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"chatsync/entity"
	"chatsync/internal/lifecycle"
)

func TestUnknownConversationIsOpen(t *testing.T) {
	tr := lifecycle.NewTracker()
	assert.Equal(t, lifecycle.StatusOpen, tr.Status("c1"))
	assert.False(t, tr.IsClosing("c1"))
}

func TestTrackSeedsStatusAndPriority(t *testing.T) {
	tr := lifecycle.NewTracker()

	tr.Track(entity.Conversation{ID: "c1", Status: entity.ConversationClosed, Priority: entity.PriorityHigh})
	assert.Equal(t, lifecycle.StatusClosed, tr.Status("c1"))
	assert.True(t, tr.IsPriority("c1"))

	tr.Track(entity.Conversation{ID: "c2", Status: entity.ConversationOpen})
	assert.Equal(t, lifecycle.StatusOpen, tr.Status("c2"))
	assert.False(t, tr.IsPriority("c2"))
}

func TestCloseHappyPath(t *testing.T) {
	tr := lifecycle.NewTracker()

	tr.MarkClosing("c1")
	assert.Equal(t, lifecycle.StatusClosing, tr.Status("c1"))
	assert.True(t, tr.IsClosing("c1"))

	tr.ConfirmClosed("c1")
	assert.Equal(t, lifecycle.StatusClosed, tr.Status("c1"))
	assert.False(t, tr.IsClosing("c1"))
}

func TestRollbackRestoresOpenWithNoResidualClosing(t *testing.T) {
	tr := lifecycle.NewTracker()

	tr.MarkClosing("c1")
	tr.Rollback("c1")

	assert.Equal(t, lifecycle.StatusOpen, tr.Status("c1"))
	assert.False(t, tr.IsClosing("c1"))
}

func TestReopenRollbackRestoresClosed(t *testing.T) {
	tr := lifecycle.NewTracker()
	tr.Track(entity.Conversation{ID: "c1", Status: entity.ConversationClosed})

	tr.Reopen("c1")
	assert.Equal(t, lifecycle.StatusOpen, tr.Status("c1"))

	tr.Rollback("c1")
	assert.Equal(t, lifecycle.StatusClosed, tr.Status("c1"))
}

func TestReopenConfirm(t *testing.T) {
	tr := lifecycle.NewTracker()
	tr.Track(entity.Conversation{ID: "c1", Status: entity.ConversationClosed})

	tr.Reopen("c1")
	tr.ConfirmReopened("c1")

	assert.Equal(t, lifecycle.StatusOpen, tr.Status("c1"))
	// A later rollback has nothing in flight to revert.
	tr.Rollback("c1")
	assert.Equal(t, lifecycle.StatusOpen, tr.Status("c1"))
}

func TestRollbackWithoutTransitionIsNoop(t *testing.T) {
	tr := lifecycle.NewTracker()
	tr.Track(entity.Conversation{ID: "c1", Status: entity.ConversationClosed})

	tr.Rollback("c1")

	assert.Equal(t, lifecycle.StatusClosed, tr.Status("c1"))
}

func TestPriorityIsOrthogonalToLifecycle(t *testing.T) {
	tr := lifecycle.NewTracker()

	tr.SetPriority("c1", true)
	tr.MarkClosing("c1")
	tr.ConfirmClosed("c1")

	// Closing and closing confirmation never touch the flag.
	assert.True(t, tr.IsPriority("c1"))
	tr.SetPriority("c1", false)
	assert.False(t, tr.IsPriority("c1"))
}
