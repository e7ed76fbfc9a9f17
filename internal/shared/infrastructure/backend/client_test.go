package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/felixgeelhaar/tasksync/pkg/observability"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *observability.InMemoryMetrics) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	metrics := observability.NewInMemoryMetrics()
	c, err := NewClient(Config{
		BaseURL:          srv.URL,
		Timeout:          2 * time.Second,
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
		Logger:           observability.Discard(),
		Metrics:          metrics,
	})
	require.NoError(t, err)
	c.SetTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "jwt-abc", TokenType: "Bearer"}))
	return c, metrics
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewClient_RejectsBadBaseURL(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "ftp://example.com"})
	assert.Error(t, err)
}

func TestClient_LoginIsUnauthenticated(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get(observability.RequestIDHeader))

		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ada@example.com", req.Email)

		writeJSON(w, http.StatusOK, LoginResponse{Success: true, Token: "jwt-abc", User: UserDTO{ID: 7, Name: "Ada", Email: "ada@example.com"}})
	})

	resp, err := c.Login(context.Background(), LoginRequest{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "jwt-abc", resp.Token)
	assert.Equal(t, 7, resp.User.ID)
}

func TestClient_AuthenticatedRoutesCarryBearer(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer jwt-abc", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/api/todos":
			writeJSON(w, http.StatusOK, map[string]any{"tasks": []map[string]any{
				{"id": 1, "title": "Buy milk", "status": "pending"},
				{"id": 2, "title": "Call mom", "status": "completed", "dueDate": "2026-10-20"},
			}})
		case "/api/todos/2":
			writeJSON(w, http.StatusOK, map[string]any{"id": 2, "title": "Call mom", "status": "completed"})
		case "/api/dashboard":
			writeJSON(w, http.StatusOK, DashboardDTO{TotalTasks: 2, CompletedTasks: 1, PendingTasks: 1})
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	tasks, err := c.Tasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Nil(t, tasks[0].DueDate)
	require.NotNil(t, tasks[1].DueDate)
	assert.Equal(t, "2026-10-20", *tasks[1].DueDate)

	task, err := c.Task(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Call mom", task.Title)

	dash, err := c.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, dash.TotalTasks)
}

func TestClient_UpdateTaskSendsOnlySetFields(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/todos/5", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"status": "completed"}, body)

		writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "updated"})
	})

	status := "completed"
	resp, err := c.UpdateTask(context.Background(), 5, UpdateTaskRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "updated", resp.Message)
}

func TestClient_StatusErrors(t *testing.T) {
	t.Run("non-2xx", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "bad credentials"})
		})

		_, err := c.Login(context.Background(), LoginRequest{Email: "a@b.c", Password: "x"})
		se, ok := AsStatus(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, se.Code)
		assert.Contains(t, se.Body, "bad credentials")
		assert.False(t, IsUnavailable(err))
	})

	t.Run("2xx with empty body where one is required", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		_, err := c.Tasks(context.Background())
		se, ok := AsStatus(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusOK, se.Code)
		assert.Equal(t, "closed", c.BreakerState())
	})
}

func TestClient_NoContentAcknowledges(t *testing.T) {
	var (
		mu      sync.Mutex
		methods []string
	)
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		methods = append(methods, r.Method+" "+r.URL.Path)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	ctx := context.Background()

	title := "Buy oat milk"
	resp, err := c.UpdateTask(ctx, 3, UpdateTaskRequest{Title: &title})
	require.NoError(t, err)
	assert.True(t, resp.Success)

	resp, err = c.DeleteTask(ctx, 3)
	require.NoError(t, err)
	assert.True(t, resp.Success)

	resp, err = c.Logout(ctx)
	require.NoError(t, err)
	assert.True(t, resp.Success)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"PUT /api/todos/3", "DELETE /api/todos/3", "POST /api/auth/logout"}, methods)
}

func TestClient_MissingTokenSource(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	})
	c.SetTokenSource(nil)

	_, err := c.Profile(context.Background())
	assert.True(t, errors.Is(err, ErrUnauthenticated))
	assert.Equal(t, int32(0), hits.Load())
	assert.Equal(t, "closed", c.BreakerState())
}

func TestClient_BreakerOpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	c, metrics := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := c.Tasks(ctx)
		se, ok := AsStatus(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusInternalServerError, se.Code)
	}
	assert.Equal(t, "open", c.BreakerState())

	_, err := c.Tasks(ctx)
	assert.True(t, IsUnavailable(err))
	assert.Equal(t, int32(2), hits.Load(), "open breaker must not reach the server")
	assert.Equal(t, int64(3), metrics.GetCounter(observability.MetricRemoteErrors, observability.T("route", "api/todos")))
}

func TestClient_ClientErrorsDoNotTripBreaker(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for i := 0; i < 5; i++ {
		_, err := c.Task(context.Background(), 404)
		require.Error(t, err)
	}
	assert.Equal(t, "closed", c.BreakerState())
}

func TestClient_TransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := NewClient(Config{BaseURL: base, Timeout: time.Second, Logger: observability.Discard()})
	require.NoError(t, err)

	_, err = c.RefreshToken(context.Background(), "refresh-1")
	assert.True(t, IsUnavailable(err))
}

func TestClient_RefreshToken(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/refresh-token", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "refresh-1", body["refreshToken"])
		writeJSON(w, http.StatusOK, map[string]string{"token": "jwt-new"})
	})

	tok, err := c.RefreshToken(context.Background(), "refresh-1")
	require.NoError(t, err)
	assert.Equal(t, "jwt-new", tok)
}

func TestClient_RefreshInsideHalfOpenRequest(t *testing.T) {
	var taskHits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/refresh-token":
			writeJSON(w, http.StatusOK, map[string]string{"token": "jwt-new"})
		case "/api/todos":
			if taskHits.Add(1) <= 2 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			assert.Equal(t, "Bearer jwt-new", r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, map[string]any{"tasks": []TaskDTO{}})
		}
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{
		BaseURL:          srv.URL,
		Timeout:          2 * time.Second,
		FailureThreshold: 2,
		OpenTimeout:      50 * time.Millisecond,
		Logger:           observability.Discard(),
	})
	require.NoError(t, err)
	c.SetTokenSource(tokenSourceFunc(func() (*oauth2.Token, error) {
		tok, err := c.RefreshToken(context.Background(), "refresh-1")
		if err != nil {
			return nil, err
		}
		return &oauth2.Token{AccessToken: tok, TokenType: "Bearer"}, nil
	}))

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := c.Tasks(ctx)
		require.Error(t, err)
	}
	require.Equal(t, "open", c.BreakerState())

	time.Sleep(80 * time.Millisecond)
	require.Equal(t, "half-open", c.BreakerState())

	tasks, err := c.Tasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.Equal(t, "closed", c.BreakerState())
}
