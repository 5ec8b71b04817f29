package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawFields(t *testing.T, body string) map[string]json.RawMessage {
	t.Helper()
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(body), &fields))
	return fields
}

func TestNewTask(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	task := NewTask(owner, "  buy milk ", false)

	assert.NotEqual(t, uuid.Nil, task.ID)
	assert.Equal(t, owner, task.UserID)
	assert.Equal(t, "buy milk", task.Description)
	assert.False(t, task.Completed)
}

func TestParseTaskPatch(t *testing.T) {
	t.Parallel()

	t.Run("allowed fields", func(t *testing.T) {
		patch, err := ParseTaskPatch(rawFields(t, `{"description":"walk dog","completed":true}`))
		require.NoError(t, err)
		require.NotNil(t, patch.Description)
		require.NotNil(t, patch.Completed)
		assert.Equal(t, "walk dog", *patch.Description)
		assert.True(t, *patch.Completed)
	})

	t.Run("owner cannot be patched", func(t *testing.T) {
		patch, err := ParseTaskPatch(rawFields(t, `{"completed":true,"owner_id":"`+uuid.NewString()+`"}`))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnknownField))
		assert.True(t, patch.IsEmpty(), "no partial patch may leak out")
	})

	t.Run("wrong type", func(t *testing.T) {
		_, err := ParseTaskPatch(rawFields(t, `{"completed":"yes"}`))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrSchemaViolation))
	})

	t.Run("empty object", func(t *testing.T) {
		patch, err := ParseTaskPatch(rawFields(t, `{}`))
		require.NoError(t, err)
		assert.True(t, patch.IsEmpty())
	})
}

func TestTaskPatch_Apply(t *testing.T) {
	t.Parallel()

	task := NewTask(uuid.New(), "old", false)
	owner := task.UserID
	done := true

	TaskPatch{Completed: &done}.Apply(task)

	assert.Equal(t, "old", task.Description)
	assert.True(t, task.Completed)
	assert.Equal(t, owner, task.UserID)
}
