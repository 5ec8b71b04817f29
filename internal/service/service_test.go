package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/phrazzld/taskman/internal/config"
	"github.com/phrazzld/taskman/internal/events"
	"github.com/phrazzld/taskman/internal/mocks"
	"github.com/phrazzld/taskman/internal/service"
	"github.com/phrazzld/taskman/internal/service/auth"
	"github.com/phrazzld/taskman/internal/validation"
	"github.com/stretchr/testify/require"
)

// recordingEmitter keeps emitted events for assertions.
type recordingEmitter struct {
	mu     sync.Mutex
	events []*events.Event
}

func (e *recordingEmitter) EmitEvent(_ context.Context, event *events.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return nil
}

func (e *recordingEmitter) types() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.events))
	for _, ev := range e.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	users   *mocks.MockUserStore
	tasks   *mocks.MockTaskStore
	tx      *mocks.NoopTransactor
	gate    *auth.Gate
	emitter *recordingEmitter
	userSvc *service.UserServiceImpl
	taskSvc *service.TaskServiceImpl
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	jwtSvc, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret: "service-test-secret-that-is-at-least-32-chars",
	})
	require.NoError(t, err)

	f := &fixture{
		users:   mocks.NewMockUserStore(),
		tasks:   mocks.NewMockTaskStore(),
		tx:      &mocks.NoopTransactor{},
		emitter: &recordingEmitter{},
	}
	hasher := &mocks.MockPasswordHasher{}
	f.gate = auth.NewGate(f.users, jwtSvc, hasher, nil)

	v := validation.New()
	f.userSvc, err = service.NewUserService(service.UserServiceDeps{
		Users:      f.users,
		Tasks:      f.tasks,
		Transactor: f.tx,
		Hasher:     hasher,
		Tokens:     f.gate,
		Validator:  v,
		Emitter:    f.emitter,
		AvatarSize: 16,
	}, nil)
	require.NoError(t, err)

	f.taskSvc, err = service.NewTaskService(f.tasks, f.tx, v, nil)
	require.NoError(t, err)

	return f
}
