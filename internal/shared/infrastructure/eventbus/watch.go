package eventbus

import (
	"context"
	"log/slog"
)

// Watch emits query's result now and again after every notification on topic,
// until ctx is done, then closes the returned channel.
// A failed query is logged and skipped; the stream stays open.
func Watch[T any](ctx context.Context, bus *Bus, topic string, logger *slog.Logger, query func(context.Context) (T, error)) <-chan T {
	if logger == nil {
		logger = slog.Default()
	}
	notify, cancel := bus.Subscribe(topic)
	out := make(chan T)

	go func() {
		defer close(out)
		defer cancel()

		for {
			value, err := query(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.WarnContext(ctx, "watch query failed", "topic", topic, "error", err)
			} else {
				select {
				case out <- value:
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-notify:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
