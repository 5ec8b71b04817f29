// Package validation holds the explicit field rules for users and tasks. Each
// Validator owns its own go-playground instance so rules are registered once,
// at construction, and never on shared global state.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/phrazzld/taskman/internal/domain"
)

// Field limits.
const (
	MaxNameLength        = 100
	MaxDescriptionLength = 1000
	MinPasswordLength    = 7
	MaxPasswordLength    = 72 // bcrypt ignores anything longer
)

// Validator checks domain entities before they reach the store.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator with the custom rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	// ALLOW-PANIC: registration only fails on programmer error
	if err := v.RegisterValidation("nopassword", noPasswordWord); err != nil {
		panic(fmt.Sprintf("register nopassword rule: %v", err))
	}
	return &Validator{validate: v}
}

// Struct validates a tagged request struct and converts the first failure into
// a *domain.ValidationError.
func (v *Validator) Struct(s any) error {
	return toValidationError("", v.validate.Struct(s))
}

// User validates a user about to be created or updated. The plaintext password
// is only checked when present; stored users carry just the hash.
func (v *Validator) User(u *domain.User) error {
	if err := v.field("name", u.Name, fmt.Sprintf("required,max=%d", MaxNameLength)); err != nil {
		return err
	}
	if err := v.field("email", u.Email, "required,email"); err != nil {
		return err
	}
	if err := v.field("age", u.Age, "gte=0"); err != nil {
		return err
	}
	if u.Password != "" || u.HashedPassword == "" {
		return v.Password(u.Password)
	}
	return nil
}

// Password validates a plaintext password about to be hashed. An empty
// password is reported as missing.
func (v *Validator) Password(password string) error {
	if password == "" {
		return domain.NewValidationError("password", "is required", domain.ErrSchemaViolation)
	}
	rule := fmt.Sprintf("min=%d,max=%d,nopassword", MinPasswordLength, MaxPasswordLength)
	return v.field("password", password, rule)
}

// Task validates a task about to be created or updated.
func (v *Validator) Task(t *domain.Task) error {
	if err := v.field("description", t.Description, fmt.Sprintf("required,max=%d", MaxDescriptionLength)); err != nil {
		return err
	}
	if t.UserID == uuid.Nil {
		return domain.NewValidationError("owner_id", "is required", domain.ErrSchemaViolation)
	}
	return nil
}

func (v *Validator) field(name string, value any, tag string) error {
	return toValidationError(name, v.validate.Var(value, tag))
}

func toValidationError(field string, err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return domain.NewValidationError(field, "is invalid", domain.ErrSchemaViolation)
	}

	fe := fieldErrs[0]
	if field == "" {
		field = jsonName(fe.Field())
	}
	return domain.NewValidationError(field, tagMessage(fe), domain.ErrSchemaViolation)
}

// tagMessage maps validation tags to user-friendly messages.
func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "is not a valid email"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "nopassword":
		return `must not contain the word "password"`
	default:
		return "is invalid"
	}
}

func noPasswordWord(fl validator.FieldLevel) bool {
	return !strings.Contains(strings.ToLower(fl.Field().String()), "password")
}

func jsonName(structField string) string {
	if structField == "" {
		return ""
	}
	return strings.ToLower(structField[:1]) + structField[1:]
}
