// Package backend is the HTTP client for the task manager REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2"

	"github.com/felixgeelhaar/tasksync/pkg/observability"
)

const (
	routeLogin    = "api/auth/login"
	routeRegister = "api/auth/register"
	routeProfile  = "api/auth/profile"
	routeLogout   = "api/auth/logout"
	routeRefresh  = "api/auth/refresh-token"
	routeTasks    = "api/todos"
	routeDash     = "api/dashboard"
)

// Config configures a Client.
type Config struct {
	BaseURL string
	Timeout time.Duration

	// FailureThreshold consecutive transport or 5xx failures open the breaker.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration

	// Transport defaults to http.DefaultTransport.
	Transport http.RoundTripper
	Logger    *slog.Logger
	Metrics   observability.Metrics
}

// reply is a response that made it back from the server.
type reply struct {
	code int
	body []byte
}

// Client talks to the backend. Login, register and refresh go out without
// credentials; every other route carries the bearer token from the TokenSource.
type Client struct {
	base    *url.URL
	public  *http.Client
	authed  *http.Client
	breaker *gobreaker.CircuitBreaker[reply]
	logger  *slog.Logger
	metrics observability.Metrics

	mu     sync.RWMutex
	source oauth2.TokenSource
}

// NewClient builds a Client for cfg.BaseURL.
func NewClient(cfg Config) (*Client, error) {
	raw := cfg.BaseURL
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", cfg.BaseURL)
	}

	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NoopMetrics{}
	}

	c := &Client{
		base:    base,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
	}
	c.public = &http.Client{Timeout: cfg.Timeout, Transport: transport}
	c.authed = &http.Client{
		Timeout:   cfg.Timeout,
		Transport: &oauth2.Transport{Source: tokenSourceFunc(c.token), Base: transport},
	}

	threshold := cfg.FailureThreshold
	c.breaker = gobreaker.NewCircuitBreaker[reply](gobreaker.Settings{
		Name:    "backend",
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return !countsAsFailure(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return c, nil
}

// SetTokenSource installs the source of bearer tokens for authenticated routes.
func (c *Client) SetTokenSource(src oauth2.TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.source = src
}

// BreakerState reports the breaker state: closed, half-open or open.
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}

func (c *Client) token() (*oauth2.Token, error) {
	c.mu.RLock()
	src := c.source
	c.mu.RUnlock()
	if src == nil {
		return nil, ErrUnauthenticated
	}
	tok, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	if tok == nil || tok.AccessToken == "" {
		return nil, ErrUnauthenticated
	}
	return tok, nil
}

type tokenSourceFunc func() (*oauth2.Token, error)

func (f tokenSourceFunc) Token() (*oauth2.Token, error) { return f() }

// countsAsFailure decides what trips the breaker: the server being
// unreachable or broken, not the caller being wrong or going away.
func countsAsFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnauthenticated) || errors.Is(err, context.Canceled) {
		return false
	}
	if se, ok := AsStatus(err); ok {
		return se.Code >= http.StatusInternalServerError
	}
	return true
}

// call describes one request.
type call struct {
	client *http.Client
	method string
	route  string
	in     any
	out    any
	// emptyOK accepts a 2xx reply without a body, such as 204 No Content.
	emptyOK bool
	// direct skips the breaker. Used for requests made while another one
	// holds a half-open slot.
	direct bool
}

// do sends one request and decodes a 2xx JSON body into out. A 2xx reply
// without a body is a *StatusError.
func (c *Client) do(ctx context.Context, client *http.Client, method, route string, in, out any) error {
	return c.send(ctx, call{client: client, method: method, route: route, in: in, out: out})
}

func (c *Client) send(ctx context.Context, cl call) error {
	ctx = observability.EnsureRequestID(ctx)
	target := c.base.ResolveReference(&url.URL{Path: cl.route})
	start := time.Now()

	var payload []byte
	if cl.in != nil {
		var err error
		if payload, err = json.Marshal(cl.in); err != nil {
			return fmt.Errorf("encode %s request: %w", cl.route, err)
		}
	}

	roundTrip := func() (reply, error) {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, cl.method, target.String(), body)
		if err != nil {
			return reply{}, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set(observability.RequestIDHeader, observability.RequestIDFromContext(ctx))
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := cl.client.Do(req)
		if err != nil {
			if errors.Is(err, ErrUnauthenticated) || ctx.Err() != nil {
				return reply{}, err
			}
			return reply{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return reply{}, fmt.Errorf("%w: read body: %w", ErrUnavailable, err)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return reply{code: resp.StatusCode}, &StatusError{Code: resp.StatusCode, Body: string(data)}
		}
		data = bytes.TrimSpace(data)
		if len(data) == 0 && !cl.emptyOK {
			return reply{code: resp.StatusCode}, &StatusError{Code: resp.StatusCode}
		}
		return reply{code: resp.StatusCode, body: data}, nil
	}

	var (
		res reply
		err error
	)
	if cl.direct {
		res, err = roundTrip()
	} else {
		res, err = c.breaker.Execute(roundTrip)
	}

	log := observability.LogOperation(c.logger, cl.method+" "+cl.route,
		observability.DurationKey, time.Since(start).Milliseconds(),
	)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		if countsAsFailure(err) {
			c.metrics.Counter(observability.MetricRemoteErrors, 1, observability.T("route", cl.route))
		}
		log.DebugContext(ctx, "backend request failed", observability.ErrorKey, err)
		return err
	}
	log.DebugContext(ctx, "backend request", observability.StatusKey, res.code)

	if cl.out == nil || len(res.body) == 0 {
		return nil
	}
	if err := json.Unmarshal(res.body, cl.out); err != nil {
		return fmt.Errorf("decode %s response: %w", cl.route, err)
	}
	return nil
}

// acknowledge sends a request whose reply body is informational only.
func (c *Client) acknowledge(ctx context.Context, method, route string, in any) (*MessageResponse, error) {
	out := MessageResponse{Success: true}
	err := c.send(ctx, call{client: c.authed, method: method, route: route, in: in, out: &out, emptyOK: true})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func taskRoute(id int) string {
	return routeTasks + "/" + strconv.Itoa(id)
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.do(ctx, c.public, http.MethodPost, routeLogin, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.do(ctx, c.public, http.MethodPost, routeRegister, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Profile(ctx context.Context) (*UserDTO, error) {
	var out UserDTO
	if err := c.do(ctx, c.authed, http.MethodGet, routeProfile, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.do(ctx, c.authed, http.MethodPut, routeProfile, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context) (*MessageResponse, error) {
	return c.acknowledge(ctx, http.MethodPost, routeLogout, nil)
}

// RefreshToken exchanges a refresh token for a new access token. It does
// not go through the breaker: the token source calls it from inside an
// authenticated request, which may hold the only half-open slot.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	var out refreshTokenResponse
	err := c.send(ctx, call{
		client: c.public,
		method: http.MethodPost,
		route:  routeRefresh,
		in:     refreshTokenRequest{RefreshToken: refreshToken},
		out:    &out,
		direct: true,
	})
	if err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", errors.New("refresh response carried no token")
	}
	return out.Token, nil
}

func (c *Client) Tasks(ctx context.Context) ([]TaskDTO, error) {
	var out taskListResponse
	if err := c.do(ctx, c.authed, http.MethodGet, routeTasks, nil, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

func (c *Client) Task(ctx context.Context, id int) (*TaskDTO, error) {
	var out TaskDTO
	if err := c.do(ctx, c.authed, http.MethodGet, taskRoute(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateTask(ctx context.Context, req CreateTaskRequest) (*TaskDTO, error) {
	var out TaskDTO
	if err := c.do(ctx, c.authed, http.MethodPost, routeTasks, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTask(ctx context.Context, id int, req UpdateTaskRequest) (*MessageResponse, error) {
	return c.acknowledge(ctx, http.MethodPut, taskRoute(id), req)
}

func (c *Client) DeleteTask(ctx context.Context, id int) (*MessageResponse, error) {
	return c.acknowledge(ctx, http.MethodDelete, taskRoute(id), nil)
}

func (c *Client) Dashboard(ctx context.Context) (*DashboardDTO, error) {
	var out DashboardDTO
	if err := c.do(ctx, c.authed, http.MethodGet, routeDash, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
