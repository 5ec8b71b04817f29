package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskman/internal/domain"
)

// UserStore defines the interface for user data persistence, including the
// user's avatar and the collection of session tokens that are currently valid.
type UserStore interface {
	// Create saves a new user. The caller must have set HashedPassword.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their normalized email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update overwrites name, email, age and HashedPassword of an existing user.
	// Returns ErrUserNotFound if the user does not exist.
	// Returns ErrEmailExists if updating to an email that already exists.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user by ID.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// SetAvatar replaces the user's avatar. A nil image removes it.
	// Returns ErrUserNotFound if the user does not exist.
	SetAvatar(ctx context.Context, id uuid.UUID, image []byte) error

	// GetAvatar returns the stored avatar image.
	// Returns ErrUserNotFound if the user does not exist and ErrAvatarNotFound
	// if the user has none.
	GetAvatar(ctx context.Context, id uuid.UUID) ([]byte, error)

	// AddToken appends a session token to the user's collection.
	// Returns ErrUserNotFound if the user does not exist.
	AddToken(ctx context.Context, userID uuid.UUID, token string) error

	// HasToken reports whether token is in the user's collection.
	HasToken(ctx context.Context, userID uuid.UUID, token string) (bool, error)

	// RemoveToken removes exactly one token. Removing an absent token is not an error.
	RemoveToken(ctx context.Context, userID uuid.UUID, token string) error

	// ClearTokens removes every token held by the user.
	ClearTokens(ctx context.Context, userID uuid.UUID) error

	// WithTx returns a UserStore that runs its queries on tx.
	WithTx(tx *sql.Tx) UserStore
}
