package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User validation errors
var (
	ErrEmptyUserID     = errors.New("user ID cannot be empty")
	ErrEmptyUsername   = errors.New("username cannot be empty")
	ErrInvalidUsername = errors.New("username must be 1-50 letters, digits, '.', '_' or '-'")
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,50}$`)

// User is an identity that can act on tasks and receive assignments.
// Users are provisioned by an administrator and are read-only to the
// task mutation path.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUser creates a new User with the given username.
func NewUser(username string) (*User, error) {
	user := &User{
		ID:        uuid.New(),
		Username:  strings.TrimSpace(username),
		CreatedAt: time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.Username == "" {
		return ErrEmptyUsername
	}

	if !usernamePattern.MatchString(u.Username) {
		return ErrInvalidUsername
	}

	return nil
}
