package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	user, err := NewUser(" alice ")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.False(t, user.CreatedAt.IsZero())

	_, err = NewUser("")
	assert.ErrorIs(t, err, ErrEmptyUsername)

	_, err = NewUser("bob smith")
	assert.ErrorIs(t, err, ErrInvalidUsername)

	_, err = NewUser(strings.Repeat("x", 51))
	assert.ErrorIs(t, err, ErrInvalidUsername)
}

func TestUserValidate(t *testing.T) {
	t.Parallel()

	u := User{ID: uuid.Nil, Username: "carol"}
	assert.ErrorIs(t, u.Validate(), ErrEmptyUserID)

	u.ID = uuid.New()
	assert.NoError(t, u.Validate())
}
