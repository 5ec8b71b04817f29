package domain

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User represents a registered user of the task manager.
type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Age            int       `json:"age"`
	Password       string    `json:"-"` // Plaintext password, set only while registering or changing it
	HashedPassword string    `json:"-"` // Never expose password hash in JSON
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a new User with a fresh ID and timestamps. Name, email and
// password are trimmed; the plaintext password is kept until the caller hashes it.
func NewUser(name, email, password string, age int) *User {
	now := time.Now().UTC()
	return &User{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Email:     NormalizeEmail(email),
		Age:       age,
		Password:  strings.TrimSpace(password),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NormalizeEmail trims and lowercases an email address. Lookups and uniqueness
// are always applied to the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserPatchFields lists the fields a user may change on their own profile.
var UserPatchFields = []string{"name", "email", "age", "password"}

// UserPatch is a validated partial update of a User. Nil fields are left untouched.
type UserPatch struct {
	Name     *string
	Email    *string
	Age      *int
	Password *string
}

// ParseUserPatch converts a raw JSON object into a UserPatch. Any key outside
// UserPatchFields rejects the whole patch with ErrUnknownField.
func ParseUserPatch(fields map[string]json.RawMessage) (UserPatch, error) {
	var patch UserPatch
	if err := checkAllowed(fields, UserPatchFields); err != nil {
		return patch, err
	}

	for name, raw := range fields {
		if string(bytes.TrimSpace(raw)) == "null" {
			return UserPatch{}, NewValidationError(name, "must not be null", ErrSchemaViolation)
		}

		var err error
		switch name {
		case "name":
			patch.Name = new(string)
			err = json.Unmarshal(raw, patch.Name)
		case "email":
			patch.Email = new(string)
			err = json.Unmarshal(raw, patch.Email)
		case "age":
			patch.Age = new(int)
			err = json.Unmarshal(raw, patch.Age)
		case "password":
			patch.Password = new(string)
			err = json.Unmarshal(raw, patch.Password)
		}
		if err != nil {
			return UserPatch{}, NewValidationError(name, "has an invalid type", ErrSchemaViolation)
		}
	}

	if patch.Password != nil && strings.TrimSpace(*patch.Password) == "" {
		return UserPatch{}, NewValidationError("password", "is required", ErrSchemaViolation)
	}
	return patch, nil
}

// Apply copies the set fields onto u and bumps UpdatedAt.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = strings.TrimSpace(*p.Name)
	}
	if p.Email != nil {
		u.Email = NormalizeEmail(*p.Email)
	}
	if p.Age != nil {
		u.Age = *p.Age
	}
	if p.Password != nil {
		u.Password = strings.TrimSpace(*p.Password)
	}
	u.UpdatedAt = time.Now().UTC()
}

// checkAllowed rejects fields not present in allowed. The reported field is the
// alphabetically first offender so errors are deterministic.
func checkAllowed(fields map[string]json.RawMessage, allowed []string) error {
	var unknown []string
	for name := range fields {
		if !slices.Contains(allowed, name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	return NewValidationError(slices.Min(unknown), "is not an updatable field", ErrUnknownField)
}
