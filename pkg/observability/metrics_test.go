package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInMemoryMetrics(t *testing.T) {
	m := NewInMemoryMetrics()

	m.Counter(MetricTasksCreated, 1, T("mode", "offline"))
	m.Counter(MetricTasksCreated, 2, T("mode", "offline"))
	m.Counter(MetricTasksCreated, 1, T("mode", "remote"))
	m.Timing(MetricSyncDuration, 15*time.Millisecond)

	assert.Equal(t, int64(3), m.GetCounter(MetricTasksCreated, T("mode", "offline")))
	assert.Equal(t, int64(1), m.GetCounter(MetricTasksCreated, T("mode", "remote")))
	assert.Equal(t, int64(0), m.GetCounter(MetricTasksCreated))
	assert.Len(t, m.GetTimings(MetricSyncDuration), 1)

	m.Reset()
	assert.Equal(t, int64(0), m.GetCounter(MetricTasksCreated, T("mode", "offline")))
}

func TestNoopMetrics(t *testing.T) {
	var m Metrics = NoopMetrics{}
	assert.NotPanics(t, func() {
		m.Counter("x", 1)
		m.Timing("x", time.Second)
	})
}
