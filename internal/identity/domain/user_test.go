package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewUser(t *testing.T) {
	u := NewUser(7, "  Ada Lovelace ", " ada@example.com")

	assert.Equal(t, 7, u.ID())
	assert.Equal(t, "Ada Lovelace", u.Name())
	assert.Equal(t, "ada@example.com", u.Email())
}

func TestUser_UpdateProfile(t *testing.T) {
	u := NewUser(7, "Ada", "ada@example.com")
	u.UpdateProfile("Ada L.", "ada@lovelace.dev")

	assert.Equal(t, 7, u.ID())
	assert.Equal(t, "Ada L.", u.Name())
	assert.Equal(t, "ada@lovelace.dev", u.Email())
}
