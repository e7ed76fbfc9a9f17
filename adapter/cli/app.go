package cli

import (
	"errors"
	"time"

	dashboardApp "github.com/felixgeelhaar/tasksync/internal/dashboard/application"
	"github.com/felixgeelhaar/tasksync/internal/identity/application/auth"
	"github.com/felixgeelhaar/tasksync/internal/identity/application/session"
	"github.com/felixgeelhaar/tasksync/internal/productivity/application/services"
)

// ErrNotInitialized is returned by commands run without a wired App.
var ErrNotInitialized = errors.New("application not initialized - local store required")

// App holds the CLI application dependencies.
type App struct {
	TaskService      *services.TaskService
	AuthService      *auth.Service
	DashboardService *dashboardApp.Service
	Sessions         *session.Manager

	// SyncInterval is the default period of "task sync --every".
	SyncInterval time.Duration
}

// NewApp creates a new CLI application with the provided services.
func NewApp(
	taskService *services.TaskService,
	authService *auth.Service,
	dashboardService *dashboardApp.Service,
	sessions *session.Manager,
) *App {
	return &App{
		TaskService:      taskService,
		AuthService:      authService,
		DashboardService: dashboardService,
		Sessions:         sessions,
		SyncInterval:     5 * time.Minute,
	}
}

// SetSyncInterval updates the default sync period.
func (a *App) SetSyncInterval(d time.Duration) {
	if d > 0 {
		a.SyncInterval = d
	}
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}
