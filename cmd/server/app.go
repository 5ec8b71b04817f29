package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/taskman/internal/config"
	"github.com/phrazzld/taskman/internal/events"
	"github.com/phrazzld/taskman/internal/job"
	"github.com/phrazzld/taskman/internal/mailer"
	"github.com/phrazzld/taskman/internal/platform/postgres"
	"github.com/phrazzld/taskman/internal/service"
	"github.com/phrazzld/taskman/internal/service/auth"
	"github.com/phrazzld/taskman/internal/store"
	"github.com/phrazzld/taskman/internal/validation"
)

// jobTimeout bounds a single background job such as one outgoing mail.
const jobTimeout = 30 * time.Second

// application holds the wired dependencies of a running server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	gate        *auth.Gate
	validator   *validation.Validator
	userService service.UserService
	taskService service.TaskService

	queue *job.Queue
	pool  *job.WorkerPool
}

// dependencies are the storage-facing collaborators of the application.
// Tests substitute in-memory fakes.
type dependencies struct {
	users  store.UserStore
	tasks  store.TaskStore
	tx     store.Transactor
	sender mailer.Sender
}

// newApplication wires the application against a live database.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app, err := buildApplication(cfg, logger, dependencies{
		users:  postgres.NewPostgresUserStore(db, logger),
		tasks:  postgres.NewPostgresTaskStore(db, logger),
		tx:     store.NewSQLTransactor(db),
		sender: mailer.NewSender(cfg.Mail, logger),
	})
	if err != nil {
		return nil, err
	}
	app.db = db
	return app, nil
}

// buildApplication creates the services, the event emitter and the mail
// worker pool. The pool is started before returning.
func buildApplication(cfg *config.Config, logger *slog.Logger, deps dependencies) (*application, error) {
	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}
	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	gate := auth.NewGate(deps.users, jwtService, hasher, logger)
	v := validation.New()

	queue := job.NewQueue(cfg.Jobs.QueueSize, logger)
	pool := job.NewWorkerPool(queue, job.WorkerPoolConfig{
		WorkerCount: cfg.Jobs.WorkerCount,
		JobTimeout:  jobTimeout,
	}, logger)

	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(
		mailer.NewNotificationHandler(deps.sender, queue, logger),
		events.TypeUserRegistered,
		events.TypeUserDeleted,
	)

	userService, err := service.NewUserService(service.UserServiceDeps{
		Users:      deps.users,
		Tasks:      deps.tasks,
		Transactor: deps.tx,
		Hasher:     hasher,
		Tokens:     gate,
		Validator:  v,
		Emitter:    emitter,
		AvatarSize: cfg.Avatar.Size,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	taskService, err := service.NewTaskService(deps.tasks, deps.tx, v, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	pool.Start()

	return &application{
		config:      cfg,
		logger:      logger,
		gate:        gate,
		validator:   v,
		userService: userService,
		taskService: taskService,
		queue:       queue,
		pool:        pool,
	}, nil
}

// cleanup closes the job queue, waits for queued mail to drain and closes
// the database.
func (app *application) cleanup(ctx context.Context) error {
	app.queue.Close()

	var errs []error
	if err := app.pool.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop worker pool: %w", err))
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
