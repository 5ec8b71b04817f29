package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskman/internal/domain"
	"github.com/phrazzld/taskman/internal/platform/logger"
	"github.com/phrazzld/taskman/internal/store"
	"github.com/phrazzld/taskman/internal/validation"
)

// TaskService exposes a user's tasks. Every method takes the owner as its
// first argument; a task owned by anyone else is reported as
// store.ErrTaskNotFound, exactly like a task that does not exist.
type TaskService interface {
	// Create stores a new task owned by ownerID.
	Create(ctx context.Context, ownerID uuid.UUID, description string, completed bool) (*domain.Task, error)

	// List returns ownerID's tasks filtered, ordered and paged by q.
	List(ctx context.Context, ownerID uuid.UUID, q domain.TaskQuery) ([]*domain.Task, error)

	// Get returns one of ownerID's tasks.
	Get(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error)

	// Update applies a partial update restricted to description and completed.
	// Any other field fails with domain.ErrUnknownField and nothing is changed.
	Update(ctx context.Context, ownerID, taskID uuid.UUID, fields map[string]json.RawMessage) (*domain.Task, error)

	// Delete removes one of ownerID's tasks and returns it.
	Delete(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error)
}

// TaskServiceImpl implements the TaskService interface
type TaskServiceImpl struct {
	tasks     store.TaskStore
	tx        store.Transactor
	validator *validation.Validator
	logger    *slog.Logger
}

var _ TaskService = (*TaskServiceImpl)(nil)

// NewTaskService creates a new TaskService.
func NewTaskService(
	tasks store.TaskStore,
	tx store.Transactor,
	validator *validation.Validator,
	logger *slog.Logger,
) (*TaskServiceImpl, error) {
	if tasks == nil || tx == nil || validator == nil {
		return nil, fmt.Errorf("%w: task service", ErrMissingDependency)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskServiceImpl{
		tasks:     tasks,
		tx:        tx,
		validator: validator,
		logger:    logger.With("component", "task_service"),
	}, nil
}

// Create implements TaskService.
func (s *TaskServiceImpl) Create(
	ctx context.Context,
	ownerID uuid.UUID,
	description string,
	completed bool,
) (*domain.Task, error) {
	task := domain.NewTask(ownerID, description, completed)
	if err := s.validator.Task(task); err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, NewServiceError("task", "create", "failed to save task", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("task created",
		"task_id", task.ID,
		"user_id", ownerID)
	return task, nil
}

// List implements TaskService.
func (s *TaskServiceImpl) List(ctx context.Context, ownerID uuid.UUID, q domain.TaskQuery) ([]*domain.Task, error) {
	tasks, err := s.tasks.ListForOwner(ctx, ownerID, q)
	if err != nil {
		return nil, NewServiceError("task", "list", "failed to list tasks", err)
	}
	return tasks, nil
}

// Get implements TaskService.
func (s *TaskServiceImpl) Get(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.GetForOwner(ctx, taskID, ownerID)
	if err != nil {
		return nil, s.wrap("get", err)
	}
	return task, nil
}

// Update implements TaskService.
func (s *TaskServiceImpl) Update(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
	fields map[string]json.RawMessage,
) (*domain.Task, error) {
	patch, err := domain.ParseTaskPatch(fields)
	if err != nil {
		return nil, err
	}

	var updated *domain.Task
	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		tasks := s.tasks.WithTx(tx)

		task, err := tasks.GetForOwner(ctx, taskID, ownerID)
		if err != nil {
			return err
		}
		if patch.IsEmpty() {
			updated = task
			return nil
		}

		patch.Apply(task)
		if err := s.validator.Task(task); err != nil {
			return err
		}
		if err := tasks.Update(ctx, task); err != nil {
			return err
		}
		updated = task
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return nil, err
		}
		return nil, s.wrap("update", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("task updated",
		"task_id", taskID,
		"user_id", ownerID)
	return updated, nil
}

// Delete implements TaskService.
func (s *TaskServiceImpl) Delete(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	var deleted *domain.Task
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		tasks := s.tasks.WithTx(tx)

		task, err := tasks.GetForOwner(ctx, taskID, ownerID)
		if err != nil {
			return err
		}
		if err := tasks.DeleteForOwner(ctx, taskID, ownerID); err != nil {
			return err
		}
		deleted = task
		return nil
	})
	if err != nil {
		return nil, s.wrap("delete", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("task deleted",
		"task_id", taskID,
		"user_id", ownerID)
	return deleted, nil
}

// wrap passes ErrTaskNotFound through unchanged and wraps anything else.
func (s *TaskServiceImpl) wrap(operation string, err error) error {
	if errors.Is(err, store.ErrTaskNotFound) {
		return err
	}
	return NewServiceError("task", operation, "storage failure", err)
}
