package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/taskman/internal/api/shared"
	"github.com/phrazzld/taskman/internal/avatar"
	"github.com/phrazzld/taskman/internal/domain"
	"github.com/phrazzld/taskman/internal/platform/logger"
	"github.com/phrazzld/taskman/internal/service"
	"github.com/phrazzld/taskman/internal/service/auth"
	"github.com/phrazzld/taskman/internal/validation"
)

// AvatarFormField is the multipart field carrying an avatar upload.
const AvatarFormField = "avatar"

// multipartOverhead is the room left for multipart headers on top of the
// avatar size limit.
const multipartOverhead = 64 << 10

// SessionGate is the part of the auth gate the user endpoints need.
// *auth.Gate satisfies it.
type SessionGate interface {
	VerifyCredentials(ctx context.Context, email, password string) (*domain.User, error)
	IssueToken(ctx context.Context, user *domain.User) (string, error)
	RevokeToken(ctx context.Context, userID uuid.UUID, token string) error
	RevokeAll(ctx context.Context, userID uuid.UUID) error
}

// UserHandler handles account, session and avatar requests.
type UserHandler struct {
	users          service.UserService
	gate           SessionGate
	validator      *validation.Validator
	maxAvatarBytes int64
	logger         *slog.Logger
}

// NewUserHandler creates a new UserHandler. maxAvatarBytes bounds uploaded
// avatar files.
func NewUserHandler(
	users service.UserService,
	gate SessionGate,
	validator *validation.Validator,
	maxAvatarBytes int64,
	logger *slog.Logger,
) *UserHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for UserHandler")
	}
	return &UserHandler{
		users:          users,
		gate:           gate,
		validator:      validator,
		maxAvatarBytes: maxAvatarBytes,
		logger:         logger.With(slog.String("component", "user_handler")),
	}
}

// Register handles POST /users.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	user, token, err := h.users.Register(r.Context(), service.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, AuthResponse{
		User:  userToResponse(user),
		Token: token,
	})
}

// Login handles POST /users/login. Every credential failure, including a
// malformed body, yields the same 400 response.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, auth.ErrInvalidCredentials, "")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		HandleAPIError(w, r, auth.ErrInvalidCredentials, "")
		return
	}

	user, err := h.gate.VerifyCredentials(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return
	}

	token, err := h.gate.IssueToken(r.Context(), user)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate authentication token")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("user logged in",
		slog.String("user_id", user.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		User:  userToResponse(user),
		Token: token,
	})
}

// Logout handles POST /users/logout by revoking only the token the request
// was made with.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	user, ok := userFromRequest(w, r, log)
	if !ok {
		return
	}
	token, _ := shared.TokenFromContext(r.Context())

	if err := h.gate.RevokeToken(r.Context(), user.ID, token); err != nil {
		HandleAPIError(w, r, err, "Failed to log out")
		return
	}
	w.WriteHeader(http.StatusOK)
}

// LogoutAll handles POST /users/logout-all by revoking every session.
func (h *UserHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	user, ok := userFromRequest(w, r, log)
	if !ok {
		return
	}

	if err := h.gate.RevokeAll(r.Context(), user.ID); err != nil {
		HandleAPIError(w, r, err, "Failed to log out")
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Me handles GET /users/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	user, ok := userFromRequest(w, r, log)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// UpdateMe handles PATCH /users/me.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	user, ok := userFromRequest(w, r, log)
	if !ok {
		return
	}

	fields, err := shared.DecodeObject(w, r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	updated, err := h.users.Update(r.Context(), user.ID, fields)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update user")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(updated))
}

// DeleteMe handles DELETE /users/me.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	user, ok := userFromRequest(w, r, log)
	if !ok {
		return
	}

	deleted, err := h.users.Delete(r.Context(), user.ID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete user")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(deleted))
}

// UploadAvatar handles POST /users/me/avatar with a multipart "avatar" file.
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	user, ok := userFromRequest(w, r, log)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxAvatarBytes+multipartOverhead)
	file, header, err := r.FormFile(AvatarFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			HandleAPIError(w, r, avatar.ErrTooLarge, "")
			return
		}
		HandleAPIError(w, r, domain.NewValidationError(AvatarFormField, "file is required", domain.ErrSchemaViolation), "")
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > h.maxAvatarBytes {
		HandleAPIError(w, r, avatar.ErrTooLarge, "")
		return
	}
	if err := avatar.CheckFilename(header.Filename); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.users.SetAvatar(r.Context(), user.ID, file); err != nil {
		HandleAPIError(w, r, err, "Failed to store avatar")
		return
	}
	w.WriteHeader(http.StatusOK)
}

// DeleteAvatar handles DELETE /users/me/avatar.
func (h *UserHandler) DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	user, ok := userFromRequest(w, r, log)
	if !ok {
		return
	}

	if err := h.users.DeleteAvatar(r.Context(), user.ID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete avatar")
		return
	}
	w.WriteHeader(http.StatusOK)
}

// GetAvatar handles the public GET /users/{id}/avatar.
func (h *UserHandler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	img, err := h.users.GetAvatar(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load avatar")
		return
	}

	w.Header().Set("Content-Type", avatar.ContentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img); err != nil {
		log.Error("failed to write avatar", slog.String("error", err.Error()))
	}
}
