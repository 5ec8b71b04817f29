package mocks

import (
	"cmp"
	"context"
	"database/sql"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskman/internal/domain"
	"github.com/phrazzld/taskman/internal/store"
)

// MockTaskStore is an in-memory store.TaskStore that applies the same owner
// scoping, filtering, ordering and paging as the Postgres store.
type MockTaskStore struct {
	// Function fields for customizable behavior
	CreateFn            func(ctx context.Context, task *domain.Task) error
	ListForOwnerFn      func(ctx context.Context, ownerID uuid.UUID, q domain.TaskQuery) ([]*domain.Task, error)
	DeleteAllForOwnerFn func(ctx context.Context, ownerID uuid.UUID) (int64, error)

	mu    sync.Mutex
	tasks map[uuid.UUID]domain.Task
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// NewMockTaskStore creates an empty store.
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{tasks: make(map[uuid.UUID]domain.Task)}
}

// Create implements the TaskStore interface
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[task.ID] = *task
	return nil
}

// GetForOwner implements the TaskStore interface
func (m *MockTaskStore) GetForOwner(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.tasks[id]
	if !ok || task.UserID != ownerID {
		return nil, store.ErrTaskNotFound
	}
	return &task, nil
}

// ListForOwner implements the TaskStore interface
func (m *MockTaskStore) ListForOwner(
	ctx context.Context,
	ownerID uuid.UUID,
	q domain.TaskQuery,
) ([]*domain.Task, error) {
	if m.ListForOwnerFn != nil {
		return m.ListForOwnerFn(ctx, ownerID, q)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := make([]domain.Task, 0)
	for _, task := range m.tasks {
		if task.UserID != ownerID {
			continue
		}
		if q.Completed != nil && task.Completed != *q.Completed {
			continue
		}
		matched = append(matched, task)
	}

	slices.SortFunc(matched, taskComparator(q.Sort))

	if q.Skip > 0 {
		if q.Skip >= len(matched) {
			matched = matched[:0]
		} else {
			matched = matched[q.Skip:]
		}
	}
	if q.Limit > 0 && q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}

	result := make([]*domain.Task, len(matched))
	for i := range matched {
		result[i] = &matched[i]
	}
	return result, nil
}

func taskComparator(sort *domain.TaskSort) func(a, b domain.Task) int {
	byField := func(a, b domain.Task) int { return a.CreatedAt.Compare(b.CreatedAt) }
	descending := false
	if sort != nil {
		switch sort.Field {
		case domain.TaskSortCreatedAt:
			descending = sort.Descending
		case domain.TaskSortUpdatedAt:
			byField = func(a, b domain.Task) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
			descending = sort.Descending
		case domain.TaskSortDescription:
			byField = func(a, b domain.Task) int { return cmp.Compare(a.Description, b.Description) }
			descending = sort.Descending
		case domain.TaskSortCompleted:
			byField = func(a, b domain.Task) int { return compareBool(a.Completed, b.Completed) }
			descending = sort.Descending
		}
	}
	return func(a, b domain.Task) int {
		c := byField(a, b)
		if descending {
			c = -c
		}
		if c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// Update implements the TaskStore interface
func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return store.ErrTaskNotFound
	}
	m.tasks[task.ID] = *task
	return nil
}

// DeleteForOwner implements the TaskStore interface
func (m *MockTaskStore) DeleteForOwner(ctx context.Context, id, ownerID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.tasks[id]
	if !ok || existing.UserID != ownerID {
		return store.ErrTaskNotFound
	}
	delete(m.tasks, id)
	return nil
}

// DeleteAllForOwner implements the TaskStore interface
func (m *MockTaskStore) DeleteAllForOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	if m.DeleteAllForOwnerFn != nil {
		return m.DeleteAllForOwnerFn(ctx, ownerID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, task := range m.tasks {
		if task.UserID == ownerID {
			delete(m.tasks, id)
			n++
		}
	}
	return n, nil
}

// WithTx returns the same store; the fake has no transactions.
func (m *MockTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return m
}

// CountForOwner returns how many tasks ownerID has.
func (m *MockTaskStore) CountForOwner(ownerID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, task := range m.tasks {
		if task.UserID == ownerID {
			n++
		}
	}
	return n
}
