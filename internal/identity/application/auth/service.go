// Package auth signs the user in and out and keeps their profile cached.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/felixgeelhaar/tasksync/internal/identity/application/session"
	"github.com/felixgeelhaar/tasksync/internal/identity/domain"
	"github.com/felixgeelhaar/tasksync/internal/shared/infrastructure/backend"
	"github.com/felixgeelhaar/tasksync/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/tasksync/pkg/observability"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrValidation         = errors.New("validation error")
	ErrNotFound           = errors.New("not found")
	ErrServer             = errors.New("server error")
	ErrNetwork            = errors.New("network error")
	// ErrRequestFailed carries the server's own message for statuses without a dedicated error.
	ErrRequestFailed = errors.New("request failed")
)

const maxMessageLen = 100

// Remote is the part of the backend the auth service talks to.
type Remote interface {
	Login(ctx context.Context, req backend.LoginRequest) (*backend.LoginResponse, error)
	Register(ctx context.Context, req backend.RegisterRequest) (*backend.MessageResponse, error)
	Profile(ctx context.Context) (*backend.UserDTO, error)
	UpdateProfile(ctx context.Context, req backend.UpdateProfileRequest) (*backend.MessageResponse, error)
	Logout(ctx context.Context) (*backend.MessageResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
}

type Service struct {
	remote   Remote
	users    domain.UserRepository
	sessions *session.Manager
	bus      *eventbus.Bus
	logger   *slog.Logger
}

// NewService wires a Service. bus is only needed by WatchUser.
func NewService(remote Remote, users domain.UserRepository, sessions *session.Manager, bus *eventbus.Bus, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{remote: remote, users: users, sessions: sessions, bus: bus, logger: logger}
}

// Login authenticates against the backend and starts a local session.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, error) {
	in := loginInput{Email: strings.TrimSpace(email), Password: password}
	if err := check(in); err != nil {
		return nil, err
	}

	resp, err := s.remote.Login(ctx, backend.LoginRequest{Email: in.Email, Password: in.Password})
	if err != nil {
		return nil, mapRemoteError(err)
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("%w: login response carried no token", ErrServer)
	}

	if err := s.sessions.SaveToken(ctx, resp.Token); err != nil {
		return nil, err
	}
	if resp.RefreshToken != "" {
		if err := s.sessions.SaveRefreshToken(ctx, resp.RefreshToken); err != nil {
			return nil, err
		}
	}
	info := session.UserInfo{ID: resp.User.ID, Name: resp.User.Name, Email: resp.User.Email}
	if err := s.sessions.SaveUserInfo(ctx, info); err != nil {
		return nil, err
	}

	user := domain.NewUser(resp.User.ID, resp.User.Name, resp.User.Email)
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "signed in", "user_id", user.ID())
	return user, nil
}

// Register creates an account. Nothing is stored locally; the caller logs in afterwards.
func (s *Service) Register(ctx context.Context, name, email, password string) (string, error) {
	in := registerInput{Name: strings.TrimSpace(name), Email: strings.TrimSpace(email), Password: password}
	if err := check(in); err != nil {
		return "", err
	}
	resp, err := s.remote.Register(ctx, backend.RegisterRequest{Name: in.Name, Email: in.Email, Password: in.Password})
	if err != nil {
		return "", mapRemoteError(err)
	}
	return resp.Message, nil
}

// Logout tells the backend, ignoring any failure, then drops the session and cached user.
func (s *Service) Logout(ctx context.Context) error {
	if _, err := s.remote.Logout(ctx); err != nil {
		s.logger.DebugContext(ctx, "remote logout failed", observability.ErrorKey, err)
	}
	if err := s.sessions.ClearAll(ctx); err != nil {
		return err
	}
	return s.users.Clear(ctx)
}

// Profile returns the server profile and caches it, or the cached user when the backend fails.
func (s *Service) Profile(ctx context.Context) (*domain.User, error) {
	dto, remoteErr := s.remote.Profile(ctx)
	if remoteErr == nil {
		user := domain.NewUser(dto.ID, dto.Name, dto.Email)
		if err := s.users.Save(ctx, user); err != nil {
			s.logger.WarnContext(ctx, "failed to cache profile", observability.ErrorKey, err)
		}
		return user, nil
	}

	cached, err := s.users.Current(ctx)
	if err == nil {
		s.logger.DebugContext(ctx, "serving cached profile", observability.ErrorKey, remoteErr)
		return cached, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	return nil, mapRemoteError(remoteErr)
}

// UpdateProfile changes name and email on the backend and patches the cached user.
func (s *Service) UpdateProfile(ctx context.Context, name, email string) (string, error) {
	in := profileInput{Name: strings.TrimSpace(name), Email: strings.TrimSpace(email)}
	if err := check(in); err != nil {
		return "", err
	}
	resp, err := s.remote.UpdateProfile(ctx, backend.UpdateProfileRequest{Name: in.Name, Email: in.Email})
	if err != nil {
		return "", mapRemoteError(err)
	}

	cached, err := s.users.Current(ctx)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
	case err != nil:
		return "", err
	default:
		cached.UpdateProfile(in.Name, in.Email)
		if err := s.users.Save(ctx, cached); err != nil {
			return "", err
		}
	}
	return resp.Message, nil
}

// RefreshSession swaps the stored refresh token for a fresh access token.
func (s *Service) RefreshSession(ctx context.Context) (string, error) {
	tok, err := s.sessions.Refresh(ctx, s.remote)
	if err != nil {
		if errors.Is(err, session.ErrNoRefreshToken) || errors.Is(err, session.ErrNoSession) {
			return "", err
		}
		return "", mapRemoteError(err)
	}
	return tok, nil
}

// IsLoggedIn reports whether a session token is stored.
func (s *Service) IsLoggedIn(ctx context.Context) (bool, error) {
	return s.sessions.IsLoggedIn(ctx)
}

// WatchUser emits the cached user now and after every change; nil means signed out.
func (s *Service) WatchUser(ctx context.Context) <-chan *domain.User {
	return eventbus.Watch(ctx, s.bus, eventbus.TopicUser, s.logger, s.currentOrNil)
}

func (s *Service) currentOrNil(ctx context.Context) (*domain.User, error) {
	u, err := s.users.Current(ctx)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, nil
	}
	return u, err
}

func mapRemoteError(err error) error {
	if errors.Is(err, backend.ErrUnauthenticated) {
		return fmt.Errorf("%w: %w", session.ErrNoSession, err)
	}
	if backend.IsUnavailable(err) {
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	se, ok := backend.AsStatus(err)
	if !ok {
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	switch se.Code {
	case http.StatusUnauthorized:
		return ErrInvalidCredentials
	case http.StatusUnprocessableEntity:
		return ErrValidation
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusInternalServerError:
		return ErrServer
	}
	msg := strings.TrimSpace(se.Body)
	if msg == "" {
		msg = "something went wrong"
	}
	if r := []rune(msg); len(r) > maxMessageLen {
		msg = string(r[:maxMessageLen])
	}
	return fmt.Errorf("%w: %s", ErrRequestFailed, msg)
}
