package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/taskman/internal/domain"
	"github.com/phrazzld/taskman/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func boolPtr(b bool) *bool { return &b }

func TestBuildListTasksQuery(t *testing.T) {
	owner := uuid.New()
	base := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`

	tests := []struct {
		name      string
		query     domain.TaskQuery
		wantSQL   string
		wantExtra []any
	}{
		{
			name:    "defaults to oldest first",
			query:   domain.TaskQuery{},
			wantSQL: base + ` ORDER BY created_at ASC, id ASC`,
		},
		{
			name:      "completed filter",
			query:     domain.TaskQuery{Completed: boolPtr(false)},
			wantSQL:   base + ` AND completed = $2 ORDER BY created_at ASC, id ASC`,
			wantExtra: []any{false},
		},
		{
			name: "sort descending",
			query: domain.TaskQuery{
				Sort: &domain.TaskSort{Field: domain.TaskSortUpdatedAt, Descending: true},
			},
			wantSQL: base + ` ORDER BY updated_at DESC, id ASC`,
		},
		{
			name: "sort ascending",
			query: domain.TaskQuery{
				Sort: &domain.TaskSort{Field: domain.TaskSortDescription},
			},
			wantSQL: base + ` ORDER BY description ASC, id ASC`,
		},
		{
			name: "unknown sort field falls back to default",
			query: domain.TaskQuery{
				Sort: &domain.TaskSort{Field: domain.TaskSortField("owner; DROP TABLE tasks")},
			},
			wantSQL: base + ` ORDER BY created_at ASC, id ASC`,
		},
		{
			name:      "limit and skip",
			query:     domain.TaskQuery{Limit: 10, Skip: 20},
			wantSQL:   base + ` ORDER BY created_at ASC, id ASC LIMIT $2 OFFSET $3`,
			wantExtra: []any{10, 20},
		},
		{
			name: "everything",
			query: domain.TaskQuery{
				Completed: boolPtr(true),
				Sort:      &domain.TaskSort{Field: domain.TaskSortCompleted, Descending: true},
				Skip:      5,
			},
			wantSQL:   base + ` AND completed = $2 ORDER BY completed DESC, id ASC OFFSET $3`,
			wantExtra: []any{true, 5},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gotSQL, gotArgs := buildListTasksQuery(owner, tc.query)

			assert.Equal(t, tc.wantSQL, gotSQL)
			assert.Equal(t, append([]any{owner}, tc.wantExtra...), gotArgs)
		})
	}
}

func TestPostgresTaskStore_GetForOwner(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	taskID := uuid.New()
	now := time.Now().UTC()

	t.Run("found", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresTaskStore(db, nil)

		rows := sqlmock.NewRows([]string{"id", "user_id", "description", "completed", "created_at", "updated_at"}).
			AddRow(taskID.String(), owner.String(), "write report", true, now, now)
		mock.ExpectQuery(regexp.QuoteMeta(`FROM tasks WHERE id = $1 AND user_id = $2`)).
			WithArgs(taskID, owner).
			WillReturnRows(rows)

		task, err := s.GetForOwner(ctx, taskID, owner)

		require.NoError(t, err)
		assert.Equal(t, taskID, task.ID)
		assert.Equal(t, owner, task.UserID)
		assert.Equal(t, "write report", task.Description)
		assert.True(t, task.Completed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("other owner is not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresTaskStore(db, nil)

		mock.ExpectQuery(regexp.QuoteMeta(`FROM tasks WHERE id = $1 AND user_id = $2`)).
			WillReturnError(sql.ErrNoRows)

		task, err := s.GetForOwner(ctx, taskID, uuid.New())

		assert.Nil(t, task)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("driver failure becomes store error", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresTaskStore(db, nil)

		mock.ExpectQuery(regexp.QuoteMeta(`FROM tasks`)).
			WillReturnError(errors.New("connection reset"))

		_, err := s.GetForOwner(ctx, taskID, owner)

		var storeErr *store.StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Equal(t, "task", storeErr.Entity)
		assert.NotErrorIs(t, err, store.ErrNotFound)
	})
}

func TestPostgresTaskStore_ListForOwner(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresTaskStore(db, nil)
	owner := uuid.New()
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "user_id", "description", "completed", "created_at", "updated_at"}).
		AddRow(uuid.NewString(), owner.String(), "first", false, now, now).
		AddRow(uuid.NewString(), owner.String(), "second", false, now.Add(time.Second), now)
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE user_id = $1 AND completed = $2 ORDER BY created_at ASC, id ASC LIMIT $3`)).
		WithArgs(owner, false, 2).
		WillReturnRows(rows)

	tasks, err := s.ListForOwner(context.Background(), owner, domain.TaskQuery{
		Completed: boolPtr(false),
		Limit:     2,
	})

	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "first", tasks[0].Description)
	assert.Equal(t, "second", tasks[1].Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTaskStore_Create(t *testing.T) {
	ctx := context.Background()
	task := domain.NewTask(uuid.New(), "buy milk", false)

	t.Run("success", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresTaskStore(db, nil)

		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO tasks`)).
			WithArgs(task.ID, task.UserID, "buy milk", false, task.CreatedAt, task.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Create(ctx, task))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing owner", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresTaskStore(db, nil)

		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO tasks`)).
			WillReturnError(&pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "tasks_user_id_fkey"})

		assert.ErrorIs(t, s.Create(ctx, task), store.ErrInvalidEntity)
	})
}

func TestPostgresTaskStore_UpdateAndDeleteAreOwnerScoped(t *testing.T) {
	ctx := context.Background()
	task := domain.NewTask(uuid.New(), "buy milk", false)

	t.Run("update no rows", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresTaskStore(db, nil)

		mock.ExpectExec(regexp.QuoteMeta(`WHERE id = $1 AND user_id = $2`)).
			WithArgs(task.ID, task.UserID, task.Description, task.Completed, task.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, s.Update(ctx, task), store.ErrTaskNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete no rows", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresTaskStore(db, nil)
		stranger := uuid.New()

		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM tasks WHERE id = $1 AND user_id = $2`)).
			WithArgs(task.ID, stranger).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, s.DeleteForOwner(ctx, task.ID, stranger), store.ErrTaskNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete all returns count", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresTaskStore(db, nil)

		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM tasks WHERE user_id = $1`)).
			WithArgs(task.UserID).
			WillReturnResult(sqlmock.NewResult(0, 3))

		n, err := s.DeleteAllForOwner(ctx, task.UserID)

		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})
}

func TestPostgresTaskStore_WithTx(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresTaskStore(db, nil)

	mock.ExpectBegin()
	tx, err := db.Begin()
	require.NoError(t, err)

	txStore, ok := s.WithTx(tx).(*PostgresTaskStore)
	require.True(t, ok)
	assert.Same(t, tx, txStore.db)
	assert.Same(t, s.logger, txStore.logger)
}
