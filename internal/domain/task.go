package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Task is a to-do item owned by exactly one user. UserID is fixed at creation.
type Task struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"owner_id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTask creates a task owned by ownerID.
func NewTask(ownerID uuid.UUID, description string, completed bool) *Task {
	now := time.Now().UTC()
	return &Task{
		ID:          uuid.New(),
		UserID:      ownerID,
		Description: strings.TrimSpace(description),
		Completed:   completed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// TaskPatchFields lists the only fields a task update may touch.
var TaskPatchFields = []string{"description", "completed"}

// TaskPatch is a validated partial update of a Task.
type TaskPatch struct {
	Description *string
	Completed   *bool
}

// ParseTaskPatch converts a raw JSON object into a TaskPatch. A key outside
// TaskPatchFields fails the whole patch before any value is decoded.
func ParseTaskPatch(fields map[string]json.RawMessage) (TaskPatch, error) {
	var patch TaskPatch
	if err := checkAllowed(fields, TaskPatchFields); err != nil {
		return patch, err
	}

	if raw, ok := fields["description"]; ok {
		patch.Description = new(string)
		if err := json.Unmarshal(raw, patch.Description); err != nil {
			return TaskPatch{}, NewValidationError("description", "must be a string", ErrSchemaViolation)
		}
	}
	if raw, ok := fields["completed"]; ok {
		patch.Completed = new(bool)
		if err := json.Unmarshal(raw, patch.Completed); err != nil {
			return TaskPatch{}, NewValidationError("completed", "must be a boolean", ErrSchemaViolation)
		}
	}

	return patch, nil
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Description == nil && p.Completed == nil
}

// Apply copies the set fields onto t and bumps UpdatedAt.
func (p TaskPatch) Apply(t *Task) {
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	t.UpdatedAt = time.Now().UTC()
}
