package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"
)

// Refresher exchanges a refresh token for a new access token.
type Refresher interface {
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
}

const refreshTimeout = 10 * time.Second

// Refresh trades the stored refresh token for a new access token and stores it.
func (m *Manager) Refresh(ctx context.Context, r Refresher) (string, error) {
	refresh, err := m.RefreshToken(ctx)
	if err != nil {
		return "", err
	}
	tok, err := r.RefreshToken(ctx, refresh)
	if err != nil {
		return "", fmt.Errorf("refresh access token: %w", err)
	}
	if err := m.SaveToken(ctx, tok); err != nil {
		return "", err
	}
	m.logger.InfoContext(ctx, "access token refreshed")
	return tok, nil
}

// TokenSource serves the stored access token to an oauth2.Transport.
// An expired token is refreshed first when a refresh token is stored;
// without one the expired token is sent and the server decides.
func (m *Manager) TokenSource(r Refresher) oauth2.TokenSource {
	return &tokenSource{m: m, refresher: r}
}

type tokenSource struct {
	m         *Manager
	refresher Refresher
}

func (s *tokenSource) Token() (*oauth2.Token, error) {
	// oauth2.TokenSource carries no context.
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	tok, err := s.m.ValidToken(ctx)
	if errors.Is(err, ErrTokenExpired) {
		err = nil
		if s.refresher != nil {
			refreshed, rerr := s.m.Refresh(ctx, s.refresher)
			switch {
			case rerr == nil:
				tok = refreshed
			case !errors.Is(rerr, ErrNoRefreshToken):
				s.m.logger.WarnContext(ctx, "token refresh failed", "error", rerr)
			}
		}
	}
	if err != nil {
		return nil, err
	}

	out := &oauth2.Token{AccessToken: tok, TokenType: "Bearer"}
	if exp, ok := Expiry(tok); ok {
		out.Expiry = exp
	}
	return out, nil
}
