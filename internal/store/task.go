package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskman/internal/domain"
)

// TaskStore defines the interface for task persistence. Every read and write
// except Create is scoped by owner; a task belonging to another user behaves
// exactly like a missing one.
type TaskStore interface {
	// Create saves a new task.
	// Returns ErrInvalidEntity if the owner does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetForOwner retrieves the task with the given id owned by ownerID.
	// Returns ErrTaskNotFound otherwise.
	GetForOwner(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error)

	// ListForOwner returns ownerID's tasks filtered, ordered and paged by q.
	// Without a sort instruction tasks come back oldest first.
	ListForOwner(ctx context.Context, ownerID uuid.UUID, q domain.TaskQuery) ([]*domain.Task, error)

	// Update overwrites description, completed and updated_at of the task
	// matching both task.ID and task.UserID.
	// Returns ErrTaskNotFound if no such task exists.
	Update(ctx context.Context, task *domain.Task) error

	// DeleteForOwner removes the task with the given id owned by ownerID.
	// Returns ErrTaskNotFound otherwise.
	DeleteForOwner(ctx context.Context, id, ownerID uuid.UUID) error

	// DeleteAllForOwner removes every task owned by ownerID and returns how
	// many were deleted.
	DeleteAllForOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)

	// WithTx returns a TaskStore that runs its queries on tx.
	WithTx(tx *sql.Tx) TaskStore
}
