package mocks

import (
	"context"
	"database/sql"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskman/internal/domain"
	"github.com/phrazzld/taskman/internal/store"
)

// MockUserStore is an in-memory store.UserStore. Users are copied on the way
// in and out, matching the value semantics of a real database.
type MockUserStore struct {
	// Function fields for customizable behavior
	CreateFn      func(ctx context.Context, user *domain.User) error
	GetByEmailFn  func(ctx context.Context, email string) (*domain.User, error)
	GetByIDFn     func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateFn      func(ctx context.Context, user *domain.User) error
	DeleteFn      func(ctx context.Context, id uuid.UUID) error
	ClearTokensFn func(ctx context.Context, userID uuid.UUID) error

	mu      sync.Mutex
	users   map[uuid.UUID]domain.User
	tokens  map[uuid.UUID][]string
	avatars map[uuid.UUID][]byte
}

var _ store.UserStore = (*MockUserStore)(nil)

// NewMockUserStore creates an empty store.
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{
		users:   make(map[uuid.UUID]domain.User),
		tokens:  make(map[uuid.UUID][]string),
		avatars: make(map[uuid.UUID][]byte),
	}
}

// Create implements the UserStore interface
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.emailTakenLocked(user.Email, uuid.Nil) {
		return store.ErrEmailExists
	}
	stored := *user
	stored.Email = domain.NormalizeEmail(stored.Email)
	stored.Password = ""
	m.users[user.ID] = stored
	return nil
}

// GetByID implements the UserStore interface
func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return &user, nil
}

// GetByEmail implements the UserStore interface
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	email = domain.NormalizeEmail(email)
	for _, user := range m.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// Update implements the UserStore interface
func (m *MockUserStore) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.ID]; !ok {
		return store.ErrUserNotFound
	}
	if m.emailTakenLocked(user.Email, user.ID) {
		return store.ErrEmailExists
	}
	stored := *user
	stored.Email = domain.NormalizeEmail(stored.Email)
	stored.Password = ""
	m.users[user.ID] = stored
	return nil
}

// Delete implements the UserStore interface
func (m *MockUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(m.users, id)
	delete(m.tokens, id)
	delete(m.avatars, id)
	return nil
}

// SetAvatar implements the UserStore interface
func (m *MockUserStore) SetAvatar(ctx context.Context, id uuid.UUID, image []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return store.ErrUserNotFound
	}
	if image == nil {
		delete(m.avatars, id)
		return nil
	}
	m.avatars[id] = slices.Clone(image)
	return nil
}

// GetAvatar implements the UserStore interface
func (m *MockUserStore) GetAvatar(ctx context.Context, id uuid.UUID) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return nil, store.ErrUserNotFound
	}
	image, ok := m.avatars[id]
	if !ok {
		return nil, store.ErrAvatarNotFound
	}
	return slices.Clone(image), nil
}

// AddToken implements the UserStore interface
func (m *MockUserStore) AddToken(ctx context.Context, userID uuid.UUID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[userID]; !ok {
		return store.ErrUserNotFound
	}
	m.tokens[userID] = append(m.tokens[userID], token)
	return nil
}

// HasToken implements the UserStore interface
func (m *MockUserStore) HasToken(ctx context.Context, userID uuid.UUID, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Contains(m.tokens[userID], token), nil
}

// RemoveToken implements the UserStore interface
func (m *MockUserStore) RemoveToken(ctx context.Context, userID uuid.UUID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[userID] = slices.DeleteFunc(m.tokens[userID], func(t string) bool { return t == token })
	return nil
}

// ClearTokens implements the UserStore interface
func (m *MockUserStore) ClearTokens(ctx context.Context, userID uuid.UUID) error {
	if m.ClearTokensFn != nil {
		return m.ClearTokensFn(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, userID)
	return nil
}

// WithTx returns the same store; the fake has no transactions.
func (m *MockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return m
}

// Tokens returns a copy of the user's token collection in issue order.
func (m *MockUserStore) Tokens(userID uuid.UUID) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.tokens[userID])
}

// Count returns the number of stored users.
func (m *MockUserStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

func (m *MockUserStore) emailTakenLocked(email string, except uuid.UUID) bool {
	email = domain.NormalizeEmail(email)
	for id, user := range m.users {
		if id != except && user.Email == email {
			return true
		}
	}
	return false
}
