package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewActionLog(t *testing.T) {
	t.Parallel()

	userID, taskID := uuid.New(), uuid.New()

	entry, err := NewActionLog("Created task: A by alice", userID, taskID)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.Equal(t, userID, entry.UserID)
	assert.Equal(t, taskID, entry.TaskID)
	assert.False(t, entry.CreatedAt.IsZero())

	_, err = NewActionLog("", userID, taskID)
	assert.ErrorIs(t, err, ErrEmptyAction)

	_, err = NewActionLog("x", uuid.Nil, taskID)
	assert.ErrorIs(t, err, ErrEmptyUserID)

	_, err = NewActionLog("x", userID, uuid.Nil)
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestActionDescriptions(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Created task: Plan by alice", CreatedAction("Plan", "alice"))
	assert.Equal(t, "Updated task: Plan by bob", UpdatedAction("Plan", "bob"))
	assert.Equal(t, "Deleted task: Plan by carol", DeletedAction("Plan", "carol"))
	assert.Equal(t, "Smart assigned task: Plan to dave by alice", AssignedAction("Plan", "dave", "alice"))
	assert.Equal(t, "Smart assigned task: Plan to Unassigned by alice", AssignedAction("Plan", "", "alice"))
}
