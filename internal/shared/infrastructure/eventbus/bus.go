// Package eventbus carries local store change notifications to watchers in the same process.
package eventbus

import (
	"log/slog"
	"sync"
)

// Topics published by the local store.
const (
	TopicTasks     = "tasks"
	TopicUser      = "user"
	TopicDashboard = "dashboard"
)

// Bus is an in-process change notification bus.
// Notifications carry no payload; subscribers re-read the store.
type Bus struct {
	mu     sync.Mutex
	subs   map[string]map[int]chan struct{}
	nextID int
	logger *slog.Logger
}

// New creates an empty Bus.
func New(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		subs:   make(map[string]map[int]chan struct{}),
		logger: logger,
	}
}

// Publish notifies every subscriber of topic. It never blocks: a subscriber
// that has not consumed the previous notification keeps just that one.
func (b *Bus) Publish(topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs[topic] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	b.logger.Debug("store changed", "topic", topic, "subscribers", len(b.subs[topic]))
}

// Subscribe returns a notification channel for topic and a func that
// unsubscribes and closes it. The cancel func is safe to call more than once.
func (b *Bus) Subscribe(topic string) (<-chan struct{}, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan struct{}, 1)
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]chan struct{})
	}
	b.subs[topic][id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[topic], id)
			close(ch)
		})
	}
}

// Subscribers returns the number of live subscriptions on topic.
func (b *Bus) Subscribers(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[topic])
}
