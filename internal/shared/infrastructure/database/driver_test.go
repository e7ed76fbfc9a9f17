package database

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectDriver(t *testing.T) {
	tests := []struct {
		url  string
		want Driver
	}{
		{"", DriverSQLite},
		{"postgres://u:p@localhost:5432/tasks", DriverPostgres},
		{"postgresql://localhost/tasks", DriverPostgres},
		{"/tmp/tasks.db", DriverSQLite},
		{"file:tasks.db", DriverSQLite},
		{":memory:", DriverSQLite},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectDriver(tt.url))
		})
	}
}

func TestDriver_IsValid(t *testing.T) {
	assert.True(t, DriverSQLite.IsValid())
	assert.True(t, DriverPostgres.IsValid())
	assert.False(t, Driver("mysql").IsValid())
}

func TestNewConnection_UnsupportedDriver(t *testing.T) {
	_, err := NewConnection(context.Background(), Config{Driver: "mysql"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestDefaultSQLitePath(t *testing.T) {
	assert.True(t, strings.HasSuffix(DefaultSQLitePath(), "tasks.db"))
}

func TestIsNoRows(t *testing.T) {
	assert.False(t, IsNoRows(nil))
	assert.True(t, IsNoRows(ErrNoRows))
	assert.False(t, IsNoRows(ErrNoTransaction))
}
