package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/taskman/internal/api"
	"github.com/phrazzld/taskman/internal/api/middleware"
	"github.com/phrazzld/taskman/internal/config"
	"github.com/phrazzld/taskman/internal/mocks"
	"github.com/phrazzld/taskman/internal/service"
	"github.com/phrazzld/taskman/internal/service/auth"
	"github.com/phrazzld/taskman/internal/validation"
	"github.com/stretchr/testify/require"
)

const testMaxAvatarBytes = 64 << 10

type testServer struct {
	router http.Handler
	users  *mocks.MockUserStore
	tasks  *mocks.MockTaskStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtSvc, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret: "api-test-secret-that-is-at-least-32-chars",
	})
	require.NoError(t, err)

	users := mocks.NewMockUserStore()
	tasks := mocks.NewMockTaskStore()
	tx := &mocks.NoopTransactor{}
	hasher := &mocks.MockPasswordHasher{}
	v := validation.New()
	gate := auth.NewGate(users, jwtSvc, hasher, log)

	userSvc, err := service.NewUserService(service.UserServiceDeps{
		Users:      users,
		Tasks:      tasks,
		Transactor: tx,
		Hasher:     hasher,
		Tokens:     gate,
		Validator:  v,
		AvatarSize: 8,
	}, log)
	require.NoError(t, err)
	taskSvc, err := service.NewTaskService(tasks, tx, v, log)
	require.NoError(t, err)

	userHandler := api.NewUserHandler(userSvc, gate, v, testMaxAvatarBytes, log)
	taskHandler := api.NewTaskHandler(taskSvc, log)
	authMW := middleware.NewAuthMiddleware(gate, log)

	r := chi.NewRouter()
	r.Use(middleware.NewTraceMiddleware(log))
	r.Post("/users", userHandler.Register)
	r.Post("/users/login", userHandler.Login)
	r.Get("/users/{id}/avatar", userHandler.GetAvatar)
	r.Group(func(r chi.Router) {
		r.Use(authMW.Authenticate)
		r.Post("/users/logout", userHandler.Logout)
		r.Post("/users/logout-all", userHandler.LogoutAll)
		r.Get("/users/me", userHandler.Me)
		r.Patch("/users/me", userHandler.UpdateMe)
		r.Delete("/users/me", userHandler.DeleteMe)
		r.Post("/users/me/avatar", userHandler.UploadAvatar)
		r.Delete("/users/me/avatar", userHandler.DeleteAvatar)
		r.Post("/tasks", taskHandler.Create)
		r.Get("/tasks", taskHandler.List)
		r.Get("/tasks/{id}", taskHandler.Get)
		r.Patch("/tasks/{id}", taskHandler.Update)
		r.Delete("/tasks/{id}", taskHandler.Delete)
	})

	return &testServer{router: r, users: users, tasks: tasks}
}

// do sends a request with an optional JSON body and bearer token.
func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// register creates an account and returns its id and token.
func (s *testServer) register(t *testing.T, name, email string) (api.UserResponse, string) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/users", "", map[string]interface{}{
		"name":     name,
		"email":    email,
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp api.AuthResponse
	decode(t, rec, &resp)
	return resp.User, resp.Token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	decode(t, rec, &body)
	return body
}
