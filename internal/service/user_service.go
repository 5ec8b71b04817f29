package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskman/internal/avatar"
	"github.com/phrazzld/taskman/internal/domain"
	"github.com/phrazzld/taskman/internal/events"
	"github.com/phrazzld/taskman/internal/platform/logger"
	"github.com/phrazzld/taskman/internal/redact"
	"github.com/phrazzld/taskman/internal/service/auth"
	"github.com/phrazzld/taskman/internal/store"
	"github.com/phrazzld/taskman/internal/validation"
)

// TokenSigner signs the first session token of a freshly registered user.
// The service stores the token in the same transaction as the user.
// *auth.Gate satisfies it.
type TokenSigner interface {
	SignToken(ctx context.Context, userID uuid.UUID) (string, error)
}

// RegisterRequest carries the fields a new account is created from.
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
	Age      int
}

// UserService provides account operations for the authenticated user.
type UserService interface {
	// Register validates and stores a new user, then issues their first
	// session token. Returns store.ErrEmailExists if the email is taken.
	Register(ctx context.Context, req RegisterRequest) (*domain.User, string, error)

	// GetUser retrieves a user by their ID.
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// Update applies a partial update. Any field outside the user allow-list
	// fails with domain.ErrUnknownField before the user is loaded.
	Update(ctx context.Context, userID uuid.UUID, fields map[string]json.RawMessage) (*domain.User, error)

	// Delete removes the user together with all of their tasks and sessions,
	// and returns the removed user.
	Delete(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// SetAvatar decodes, resizes and stores an uploaded image.
	SetAvatar(ctx context.Context, userID uuid.UUID, image io.Reader) error

	// DeleteAvatar removes the user's avatar. Removing a missing avatar is not an error.
	DeleteAvatar(ctx context.Context, userID uuid.UUID) error

	// GetAvatar returns the stored PNG avatar.
	// Returns store.ErrAvatarNotFound if the user has none.
	GetAvatar(ctx context.Context, userID uuid.UUID) ([]byte, error)
}

// UserServiceDeps groups the collaborators of the user service.
type UserServiceDeps struct {
	Users      store.UserStore
	Tasks      store.TaskStore
	Transactor store.Transactor
	Hasher     auth.PasswordHasher
	Tokens     TokenSigner
	Validator  *validation.Validator
	Emitter    events.EventEmitter
	AvatarSize int
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	users      store.UserStore
	tasks      store.TaskStore
	tx         store.Transactor
	hasher     auth.PasswordHasher
	tokens     TokenSigner
	validator  *validation.Validator
	emitter    events.EventEmitter
	avatarSize int
	logger     *slog.Logger
}

var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a new UserService. A nil Emitter discards events.
func NewUserService(deps UserServiceDeps, logger *slog.Logger) (*UserServiceImpl, error) {
	if deps.Users == nil || deps.Tasks == nil || deps.Transactor == nil ||
		deps.Hasher == nil || deps.Tokens == nil || deps.Validator == nil {
		return nil, fmt.Errorf("%w: user service", ErrMissingDependency)
	}
	if deps.Emitter == nil {
		deps.Emitter = events.NopEmitter{}
	}
	if deps.AvatarSize <= 0 {
		deps.AvatarSize = avatar.DefaultSize
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &UserServiceImpl{
		users:      deps.Users,
		tasks:      deps.Tasks,
		tx:         deps.Transactor,
		hasher:     deps.Hasher,
		tokens:     deps.Tokens,
		validator:  deps.Validator,
		emitter:    deps.Emitter,
		avatarSize: deps.AvatarSize,
		logger:     logger.With("component", "user_service"),
	}, nil
}

// Register implements UserService.
func (s *UserServiceImpl) Register(ctx context.Context, req RegisterRequest) (*domain.User, string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user := domain.NewUser(req.Name, req.Email, req.Password, req.Age)
	if err := s.validator.User(user); err != nil {
		return nil, "", err
	}
	if err := s.hashPassword(user); err != nil {
		return nil, "", NewServiceError("user", "register", "failed to hash password", err)
	}

	token, err := s.tokens.SignToken(ctx, user.ID)
	if err != nil {
		return nil, "", NewServiceError("user", "register", "failed to issue token", err)
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		users := s.users.WithTx(tx)
		if err := users.Create(ctx, user); err != nil {
			return err
		}
		return users.AddToken(ctx, user.ID, token)
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("registration with existing email rejected")
			return nil, "", err
		}
		return nil, "", NewServiceError("user", "register", "failed to save user", err)
	}

	log.Info("user registered", "user_id", user.ID)
	s.emit(ctx, events.TypeUserRegistered, user)
	return user, token, nil
}

// GetUser implements UserService.
func (s *UserServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}

// Update implements UserService.
func (s *UserServiceImpl) Update(
	ctx context.Context,
	userID uuid.UUID,
	fields map[string]json.RawMessage,
) (*domain.User, error) {
	patch, err := domain.ParseUserPatch(fields)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user for update: %w", err)
	}

	patch.Apply(user)
	if patch.Password != nil {
		if err := s.validator.Password(user.Password); err != nil {
			return nil, err
		}
	}
	if err := s.validator.User(user); err != nil {
		return nil, err
	}
	if patch.Password != nil {
		if err := s.hashPassword(user); err != nil {
			return nil, NewServiceError("user", "update", "failed to hash password", err)
		}
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) || errors.Is(err, store.ErrUserNotFound) {
			return nil, err
		}
		return nil, NewServiceError("user", "update", "failed to save user", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("user updated",
		"user_id", user.ID,
		"password_changed", patch.Password != nil)
	return user, nil
}

// Delete implements UserService. Tasks, then sessions, then the user row are
// removed in one transaction; the farewell event is emitted only after commit.
func (s *UserServiceImpl) Delete(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var deleted *domain.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		users := s.users.WithTx(tx)
		tasks := s.tasks.WithTx(tx)

		user, err := users.GetByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to retrieve user for deletion: %w", err)
		}

		n, err := tasks.DeleteAllForOwner(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to delete tasks: %w", err)
		}
		if err := users.ClearTokens(ctx, userID); err != nil {
			return fmt.Errorf("failed to clear sessions: %w", err)
		}
		if err := users.Delete(ctx, userID); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}

		log.Debug("user data removed", "user_id", userID, "tasks_deleted", n)
		deleted = user
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, err
		}
		return nil, NewServiceError("user", "delete", "transaction failed", err)
	}

	log.Info("user deleted", "user_id", userID)
	s.emit(ctx, events.TypeUserDeleted, deleted)
	return deleted, nil
}

// SetAvatar implements UserService.
func (s *UserServiceImpl) SetAvatar(ctx context.Context, userID uuid.UUID, image io.Reader) error {
	img, err := avatar.Process(image, s.avatarSize)
	if err != nil {
		if errors.Is(err, avatar.ErrUnsupportedFormat) || errors.Is(err, avatar.ErrTooLarge) {
			return err
		}
		return NewServiceError("user", "set avatar", "failed to process image", err)
	}

	if err := s.users.SetAvatar(ctx, userID, img); err != nil {
		return fmt.Errorf("failed to store avatar: %w", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("avatar stored",
		"user_id", userID,
		"bytes", len(img))
	return nil
}

// DeleteAvatar implements UserService.
func (s *UserServiceImpl) DeleteAvatar(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.SetAvatar(ctx, userID, nil); err != nil {
		return fmt.Errorf("failed to remove avatar: %w", err)
	}
	return nil
}

// GetAvatar implements UserService.
func (s *UserServiceImpl) GetAvatar(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	img, err := s.users.GetAvatar(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve avatar: %w", err)
	}
	return img, nil
}

// hashPassword replaces the plaintext password with its hash.
func (s *UserServiceImpl) hashPassword(user *domain.User) error {
	hash, err := s.hasher.Hash(user.Password)
	if err != nil {
		return err
	}
	user.HashedPassword = hash
	user.Password = ""
	return nil
}

// emit publishes a user lifecycle event. Notification failures never fail
// the operation that triggered them.
func (s *UserServiceImpl) emit(ctx context.Context, eventType string, user *domain.User) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewEvent(eventType, events.UserPayload{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
	})
	if err != nil {
		log.Error("failed to build event", "event_type", eventType, "error", redact.Error(err))
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("event handler failed",
			"event_type", eventType,
			"event_id", event.ID,
			"error", redact.Error(err))
	}
}
