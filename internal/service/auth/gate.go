package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskman/internal/domain"
	"github.com/phrazzld/taskman/internal/platform/logger"
	"github.com/phrazzld/taskman/internal/redact"
	"github.com/phrazzld/taskman/internal/store"
)

// dummyPassword is hashed once and compared against when a login names an
// unknown email, so both failure paths cost one bcrypt comparison.
const dummyPassword = "taskman-timing-equalizer"

// Gate issues, verifies and revokes session tokens. A token is valid only
// while it is both correctly signed and present in its user's token
// collection.
type Gate struct {
	users  store.UserStore
	tokens JWTService
	hasher PasswordHasher
	logger *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewGate creates a Gate. If logger is nil, the default logger is used.
func NewGate(users store.UserStore, tokens JWTService, hasher PasswordHasher, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		logger: logger.With(slog.String("component", "auth_gate")),
	}
}

// IssueToken signs a new token for user and adds it to the user's collection.
// There is no limit on concurrent sessions.
func (g *Gate) IssueToken(ctx context.Context, user *domain.User) (string, error) {
	token, err := g.SignToken(ctx, user.ID)
	if err != nil {
		return "", err
	}
	if err := g.users.AddToken(ctx, user.ID, token); err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}
	return token, nil
}

// SignToken signs a token for userID without storing it. The caller must add
// it to the user's collection before it authenticates anything.
func (g *Gate) SignToken(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := g.tokens.GenerateToken(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

// VerifyCredentials returns the user owning email if password matches.
// Unknown emails yield ErrCredentialsNotFound and wrong passwords
// ErrInvalidCredentials; both satisfy errors.Is(err, ErrInvalidCredentials).
func (g *Gate) VerifyCredentials(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	user, err := g.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			g.equalizeTiming(password)
			log.Debug("login failed: unknown email")
			return nil, ErrCredentialsNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := g.hasher.Compare(user.HashedPassword, password); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			log.Debug("login failed: password mismatch", slog.String("user_id", user.ID.String()))
			return nil, ErrInvalidCredentials
		}
		log.Error("password comparison failed",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (g *Gate) equalizeTiming(password string) {
	g.dummyOnce.Do(func() {
		hash, err := g.hasher.Hash(dummyPassword)
		if err == nil {
			g.dummyHash = hash
		}
	})
	if g.dummyHash != "" {
		_ = g.hasher.Compare(g.dummyHash, password)
	}
}

// Authenticate resolves the user a bearer token belongs to. It fails with
// ErrInvalidToken if the token does not verify or its user is gone, and with
// ErrTokenRevoked if the token is no longer in the user's collection.
func (g *Gate) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	claims, err := g.tokens.ValidateToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	user, err := g.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", ErrInvalidToken)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	ok, err := g.users.HasToken(ctx, user.ID, token)
	if err != nil {
		return nil, fmt.Errorf("failed to check token: %w", err)
	}
	if !ok {
		return nil, ErrTokenRevoked
	}

	return user, nil
}

// RevokeToken removes exactly token from the user's collection. Revoking a
// token twice is not an error.
func (g *Gate) RevokeToken(ctx context.Context, userID uuid.UUID, token string) error {
	if err := g.users.RemoveToken(ctx, userID, token); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// RevokeAll empties the user's token collection.
func (g *Gate) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	if err := g.users.ClearTokens(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke tokens: %w", err)
	}
	return nil
}
