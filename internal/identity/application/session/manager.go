// Package session keeps the credentials of the signed-in user.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/felixgeelhaar/tasksync/internal/identity/domain"
	"github.com/felixgeelhaar/tasksync/internal/shared/infrastructure/crypto"
)

var (
	ErrNoSession      = errors.New("not signed in")
	ErrNoRefreshToken = errors.New("no refresh token stored")
	ErrTokenExpired   = errors.New("access token expired")
)

// UserInfo is the cached identity of the signed-in user.
type UserInfo struct {
	ID    int
	Name  string
	Email string
}

// Manager reads and writes session values, sealing them at rest.
type Manager struct {
	store  domain.SessionStore
	sealer crypto.Sealer
	logger *slog.Logger
}

// NewManager creates a Manager. A nil sealer stores values in the clear.
func NewManager(store domain.SessionStore, sealer crypto.Sealer, logger *slog.Logger) *Manager {
	if sealer == nil {
		sealer = crypto.Plain{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: store, sealer: sealer, logger: logger}
}

func (m *Manager) get(ctx context.Context, key string) (string, bool, error) {
	sealed, ok, err := m.store.Get(ctx, key)
	if err != nil || !ok {
		return "", false, err
	}
	value, err := m.sealer.Open(sealed)
	if err != nil {
		return "", false, fmt.Errorf("open session value %s: %w", key, err)
	}
	return value, true, nil
}

func (m *Manager) set(ctx context.Context, key, value string) error {
	sealed, err := m.sealer.Seal(value)
	if err != nil {
		return fmt.Errorf("seal session value %s: %w", key, err)
	}
	return m.store.Set(ctx, key, sealed)
}

// Token returns the stored access token or ErrNoSession.
func (m *Manager) Token(ctx context.Context) (string, error) {
	tok, ok, err := m.get(ctx, domain.KeyToken)
	if err != nil {
		return "", err
	}
	if !ok || tok == "" {
		return "", ErrNoSession
	}
	return tok, nil
}

func (m *Manager) SaveToken(ctx context.Context, token string) error {
	return m.set(ctx, domain.KeyToken, token)
}

// RefreshToken returns the stored refresh token or ErrNoRefreshToken.
func (m *Manager) RefreshToken(ctx context.Context) (string, error) {
	tok, ok, err := m.get(ctx, domain.KeyRefreshToken)
	if err != nil {
		return "", err
	}
	if !ok || tok == "" {
		return "", ErrNoRefreshToken
	}
	return tok, nil
}

func (m *Manager) SaveRefreshToken(ctx context.Context, token string) error {
	return m.set(ctx, domain.KeyRefreshToken, token)
}

func (m *Manager) SaveUserInfo(ctx context.Context, info UserInfo) error {
	for key, value := range map[string]string{
		domain.KeyUserID:    strconv.Itoa(info.ID),
		domain.KeyUserName:  info.Name,
		domain.KeyUserEmail: info.Email,
	} {
		if err := m.set(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}

// UserInfo returns the cached identity, or ErrNoSession when none is stored.
func (m *Manager) UserInfo(ctx context.Context) (UserInfo, error) {
	rawID, ok, err := m.get(ctx, domain.KeyUserID)
	if err != nil {
		return UserInfo{}, err
	}
	if !ok {
		return UserInfo{}, ErrNoSession
	}
	id, err := strconv.Atoi(rawID)
	if err != nil {
		return UserInfo{}, fmt.Errorf("stored user id %q: %w", rawID, err)
	}
	name, _, err := m.get(ctx, domain.KeyUserName)
	if err != nil {
		return UserInfo{}, err
	}
	email, _, err := m.get(ctx, domain.KeyUserEmail)
	if err != nil {
		return UserInfo{}, err
	}
	return UserInfo{ID: id, Name: name, Email: email}, nil
}

// ClearAll removes every session value.
func (m *Manager) ClearAll(ctx context.Context) error {
	return m.store.Delete(ctx, domain.SessionKeys...)
}

// IsLoggedIn reports whether an access token is stored. Expiry is not checked.
func (m *Manager) IsLoggedIn(ctx context.Context) (bool, error) {
	_, err := m.Token(ctx)
	if errors.Is(err, ErrNoSession) {
		return false, nil
	}
	return err == nil, err
}

// ValidToken returns the access token unless its exp claim has passed.
func (m *Manager) ValidToken(ctx context.Context) (string, error) {
	tok, err := m.Token(ctx)
	if err != nil {
		return "", err
	}
	if exp, ok := Expiry(tok); ok && !time.Now().Before(exp) {
		return tok, ErrTokenExpired
	}
	return tok, nil
}

// Expiry reads the exp claim of a JWT without verifying its signature.
// ok is false for tokens that are not JWTs or carry no exp.
func Expiry(token string) (time.Time, bool) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
