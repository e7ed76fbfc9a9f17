package app

import (
	"fmt"

	dashboardDomain "github.com/felixgeelhaar/tasksync/internal/dashboard/domain"
	dashboardPersistence "github.com/felixgeelhaar/tasksync/internal/dashboard/infrastructure/persistence"
	identityDomain "github.com/felixgeelhaar/tasksync/internal/identity/domain"
	identityPersistence "github.com/felixgeelhaar/tasksync/internal/identity/infrastructure/persistence"
	"github.com/felixgeelhaar/tasksync/internal/productivity/domain/task"
	productivityPersistence "github.com/felixgeelhaar/tasksync/internal/productivity/infrastructure/persistence"
	"github.com/felixgeelhaar/tasksync/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/tasksync/internal/shared/infrastructure/eventbus"
)

// RepositoryFactory creates repositories based on the database driver.
// With a bus, every repository publishes its topic after committed writes.
type RepositoryFactory struct {
	conn   database.Connection
	driver database.Driver
	bus    *eventbus.Bus
}

// NewRepositoryFactory creates a new repository factory. bus may be nil.
func NewRepositoryFactory(conn database.Connection, bus *eventbus.Bus) *RepositoryFactory {
	return &RepositoryFactory{
		conn:   conn,
		driver: conn.Driver(),
		bus:    bus,
	}
}

// TaskRepository creates a task repository for the configured driver.
func (f *RepositoryFactory) TaskRepository() (task.Repository, error) {
	var repo task.Repository
	switch f.driver {
	case database.DriverPostgres:
		repo = productivityPersistence.NewPostgresTaskRepository(f.conn)
	case database.DriverSQLite:
		repo = productivityPersistence.NewSQLiteTaskRepository(f.conn)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
	if f.bus != nil {
		repo = productivityPersistence.NewObservableTaskRepository(repo, f.bus)
	}
	return repo, nil
}

// UserRepository creates the signed-in user store for the configured driver.
func (f *RepositoryFactory) UserRepository() (identityDomain.UserRepository, error) {
	var repo identityDomain.UserRepository
	switch f.driver {
	case database.DriverPostgres:
		repo = identityPersistence.NewPostgresUserRepository(f.conn)
	case database.DriverSQLite:
		repo = identityPersistence.NewSQLiteUserRepository(f.conn)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
	if f.bus != nil {
		repo = identityPersistence.NewObservableUserRepository(repo, f.bus)
	}
	return repo, nil
}

// SnapshotRepository creates the dashboard snapshot store for the configured driver.
func (f *RepositoryFactory) SnapshotRepository() (dashboardDomain.Repository, error) {
	var repo dashboardDomain.Repository
	switch f.driver {
	case database.DriverPostgres:
		repo = dashboardPersistence.NewPostgresSnapshotRepository(f.conn)
	case database.DriverSQLite:
		repo = dashboardPersistence.NewSQLiteSnapshotRepository(f.conn)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
	if f.bus != nil {
		repo = dashboardPersistence.NewObservableSnapshotRepository(repo, f.bus)
	}
	return repo, nil
}

// SessionStore creates the database-backed session value store.
func (f *RepositoryFactory) SessionStore() (identityDomain.SessionStore, error) {
	if !f.driver.IsValid() {
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
	return identityPersistence.NewSQLSessionStore(f.conn), nil
}
