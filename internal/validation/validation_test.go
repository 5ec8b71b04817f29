package validation

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskman/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_User(t *testing.T) {
	t.Parallel()

	v := New()

	tests := []struct {
		name      string
		mutate    func(u *domain.User)
		wantField string
	}{
		{name: "valid", mutate: func(u *domain.User) {}},
		{name: "missing name", mutate: func(u *domain.User) { u.Name = "" }, wantField: "name"},
		{name: "bad email", mutate: func(u *domain.User) { u.Email = "not-an-email" }, wantField: "email"},
		{name: "negative age", mutate: func(u *domain.User) { u.Age = -1 }, wantField: "age"},
		{name: "short password", mutate: func(u *domain.User) { u.Password = "abc" }, wantField: "password"},
		{name: "password contains the word", mutate: func(u *domain.User) { u.Password = "MyPassword123" }, wantField: "password"},
		{
			name:   "stored user without plaintext",
			mutate: func(u *domain.User) { u.Password = ""; u.HashedPassword = "$2a$10$x" },
		},
		{
			name:      "no password at all",
			mutate:    func(u *domain.User) { u.Password = "" },
			wantField: "password",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			u := domain.NewUser("Ada", "ada@example.com", "s3cret-phrase", 20)
			tc.mutate(u)

			err := v.User(u)
			if tc.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrSchemaViolation))

			var vErr *domain.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tc.wantField, vErr.Field)
		})
	}
}

func TestValidator_Password(t *testing.T) {
	t.Parallel()

	v := New()

	assert.NoError(t, v.Password("s3cret-phrase"))

	for _, pw := range []string{"", "abc", "123456", "my-password-1"} {
		err := v.Password(pw)
		require.Error(t, err, pw)
		assert.True(t, errors.Is(err, domain.ErrSchemaViolation), pw)

		var vErr *domain.ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "password", vErr.Field)
	}
}

func TestValidator_UserPasswordIsTrimmedBeforeLengthCheck(t *testing.T) {
	t.Parallel()

	u := domain.NewUser("Ada", "ada@example.com", "   abcd   ", 20)
	err := New().User(u)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSchemaViolation))
}

func TestValidator_Task(t *testing.T) {
	t.Parallel()

	v := New()

	assert.NoError(t, v.Task(domain.NewTask(uuid.New(), "water plants", false)))

	err := v.Task(domain.NewTask(uuid.New(), "   ", false))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSchemaViolation))

	err = v.Task(domain.NewTask(uuid.Nil, "orphan", false))
	require.Error(t, err)
	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "owner_id", vErr.Field)
}

func TestValidator_Struct(t *testing.T) {
	t.Parallel()

	type loginRequest struct {
		Email    string `validate:"required,email"`
		Password string `validate:"required"`
	}

	err := New().Struct(loginRequest{Email: "ada@example.com"})
	require.Error(t, err)

	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "password", vErr.Field)
	assert.Equal(t, "is required", vErr.Message)
}
