// Package domain holds the cached dashboard statistics.
package domain

import (
	"context"
	"errors"
	"time"
)

var ErrSnapshotNotFound = errors.New("no cached dashboard")

// Snapshot is the last task statistics the backend reported.
type Snapshot struct {
	TotalTasks     int
	CompletedTasks int
	PendingTasks   int
	CachedAt       time.Time
}

// CompletionPercent returns completed over total as 0..100, or 0 for an empty list.
func (s Snapshot) CompletionPercent() float64 {
	if s.TotalTasks <= 0 {
		return 0
	}
	return float64(s.CompletedTasks) * 100 / float64(s.TotalTasks)
}

// Repository stores a single snapshot; Save overwrites it.
type Repository interface {
	Get(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, s Snapshot) error
}
