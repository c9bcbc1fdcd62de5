package events

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	payload := map[string]string{"hello": "world"}

	event, err := NewEvent("greeting", payload)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, "greeting", event.Type)
	assert.False(t, event.CreatedAt.IsZero())

	var decoded map[string]string
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, payload, decoded)

	_, err = NewEvent("bad", make(chan int))
	assert.Error(t, err)
}

func TestNewActionLoggedEvent(t *testing.T) {
	actor := uuid.New()
	task, err := domain.NewTask("Deploy", "", "", "", actor)
	require.NoError(t, err)
	entry, err := domain.NewActionLog(domain.CreatedAction(task.Title, "alice"), actor, task.ID)
	require.NoError(t, err)

	t.Run("carries task snapshot", func(t *testing.T) {
		event, err := NewActionLoggedEvent(entry, OperationCreated, task.ID, &domain.TaskView{Task: task})
		require.NoError(t, err)
		assert.Equal(t, TypeActionLogged, event.Type)

		var raw map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(event.Payload, &raw))
		assert.JSONEq(t, `"created"`, string(raw["operation"]))
		assert.JSONEq(t, `"`+task.ID.String()+`"`, string(raw["task_id"]))

		var snapshot map[string]any
		require.NoError(t, json.Unmarshal(raw["task"], &snapshot))
		assert.Equal(t, "Deploy", snapshot["title"])
		assert.Nil(t, snapshot["assigned_user"])
	})

	t.Run("deletion has null task", func(t *testing.T) {
		event, err := NewActionLoggedEvent(entry, OperationDeleted, task.ID, nil)
		require.NoError(t, err)

		var raw map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(event.Payload, &raw))
		assert.Equal(t, "null", string(raw["task"]))
		assert.JSONEq(t, `"deleted"`, string(raw["operation"]))
	})
}
