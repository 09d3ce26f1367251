package watch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Feed delivers query snapshots on C until Close is called, the context ends
// or a query fails. Err reports the failure after C is closed.
type Feed[T any] struct {
	C <-chan T

	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

// Watch subscribes to topic and runs load once immediately and once per
// notification. The initial load runs before Watch returns so its error is
// reported to the caller.
func Watch[T any](ctx context.Context, h *Hub, topic string, load func(context.Context) (T, error)) (*Feed[T], error) {
	ctx, cancel := context.WithCancel(ctx)
	sub := h.subscribe(topic)

	initial, err := load(ctx)
	if err != nil {
		h.unsubscribe(topic, sub)
		cancel()
		return nil, fmt.Errorf("load initial %s snapshot: %w", topic, err)
	}

	out := make(chan T)
	f := &Feed[T]{C: out, cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(f.done)
		defer close(out)
		defer h.unsubscribe(topic, sub)

		select {
		case out <- initial:
		case <-ctx.Done():
			return
		}

		for {
			for sub.take() {
				snapshot, err := load(ctx)
				if err != nil {
					if ctx.Err() == nil {
						slog.ErrorContext(ctx, "Live query failed, closing feed", "topic", topic, "error", err)
						f.setErr(err)
					}
					return
				}
				select {
				case out <- snapshot:
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-sub.wake:
			case <-ctx.Done():
				return
			}
		}
	}()

	return f, nil
}

// Close stops the feed and waits for its goroutine to exit.
func (f *Feed[T]) Close() {
	f.cancel()
	<-f.done
}

func (f *Feed[T]) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *Feed[T]) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}
