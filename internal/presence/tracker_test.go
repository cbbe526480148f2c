package presence_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"chatsync/entity"
	"chatsync/internal/presence"
)

func TestJoinAndLeave(t *testing.T) {
	tr := presence.NewTracker()

	tr.ApplyDiff(entity.PresenceDiff{Joins: []string{"cust-1"}})
	assert.True(t, tr.IsOnline("cust-1"))

	tr.ApplyDiff(entity.PresenceDiff{Leaves: []string{"cust-1"}})
	assert.False(t, tr.IsOnline("cust-1"))
}

func TestMultipleConnections(t *testing.T) {
	tr := presence.NewTracker()

	// Two tabs, one leave: still online.
	tr.ApplyDiff(entity.PresenceDiff{Joins: []string{"cust-1", "cust-1"}})
	tr.ApplyDiff(entity.PresenceDiff{Leaves: []string{"cust-1"}})
	assert.True(t, tr.IsOnline("cust-1"))

	tr.ApplyDiff(entity.PresenceDiff{Leaves: []string{"cust-1"}})
	assert.False(t, tr.IsOnline("cust-1"))
}

func TestSpuriousLeaveClampsAtZero(t *testing.T) {
	tr := presence.NewTracker()

	tr.ApplyDiff(entity.PresenceDiff{Leaves: []string{"cust-1", "cust-1"}})
	assert.False(t, tr.IsOnline("cust-1"))

	// A later join must bring the customer online immediately: the
	// spurious leaves did not accumulate a negative balance.
	tr.ApplyDiff(entity.PresenceDiff{Joins: []string{"cust-1"}})
	assert.True(t, tr.IsOnline("cust-1"))
}

func TestNetBalanceNeverReportsOnlineAtZeroOrBelow(t *testing.T) {
	tr := presence.NewTracker()

	diffs := []entity.PresenceDiff{
		{Joins: []string{"a"}, Leaves: []string{"a"}},
		{Leaves: []string{"a"}},
		{Joins: []string{"a"}},
		{Leaves: []string{"a", "a"}},
	}
	for _, d := range diffs {
		tr.ApplyDiff(d)
	}
	assert.False(t, tr.IsOnline("a"))
}

func TestUnknownCustomerIsOffline(t *testing.T) {
	tr := presence.NewTracker()
	assert.False(t, tr.IsOnline("ghost"))
}

func TestResetOnReconnect(t *testing.T) {
	tr := presence.NewTracker()
	tr.ApplyDiff(entity.PresenceDiff{Joins: []string{"cust-1"}})

	tr.Reset()

	assert.False(t, tr.IsOnline("cust-1"))
}
