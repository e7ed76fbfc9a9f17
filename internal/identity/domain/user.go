// Package domain holds the signed-in user and the session value keys.
package domain

import (
	"context"
	"errors"
	"strings"
)

var ErrUserNotFound = errors.New("user not found")

// User is the account signed in on this device. The store keeps at most one.
type User struct {
	id    int
	name  string
	email string
}

func NewUser(id int, name, email string) *User {
	return &User{id: id, name: strings.TrimSpace(name), email: strings.TrimSpace(email)}
}

func (u *User) ID() int       { return u.id }
func (u *User) Name() string  { return u.name }
func (u *User) Email() string { return u.email }

// UpdateProfile changes name and email in place, keeping the id.
func (u *User) UpdateProfile(name, email string) {
	u.name = strings.TrimSpace(name)
	u.email = strings.TrimSpace(email)
}

// UserRepository stores the single signed-in user.
type UserRepository interface {
	// Current returns ErrUserNotFound when nobody is signed in.
	Current(ctx context.Context) (*User, error)
	// Save replaces whatever user was stored.
	Save(ctx context.Context, u *User) error
	Clear(ctx context.Context) error
}
