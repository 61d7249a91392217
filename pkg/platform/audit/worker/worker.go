package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	audit "presence/pkg/platform/audit"
)

// OutboxStore is the subset of the outbox the relay needs.
type OutboxStore interface {
	FetchUnpublished(ctx context.Context, limit int) ([]audit.OutboxEntry, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

// Publisher delivers a batch of entries to the broker. A nil error means
// every entry in the batch was acknowledged.
type Publisher interface {
	Publish(ctx context.Context, entries []audit.OutboxEntry) error
}

const (
	defaultInterval  = 2 * time.Second
	defaultBatchSize = 100
)

// Worker relays outbox entries to the publisher on a fixed interval. Delivery
// is at-least-once: entries are marked published only after the broker acks.
type Worker struct {
	store     OutboxStore
	publisher Publisher
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

type Option func(*Worker)

func WithInterval(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.interval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		w.logger = logger
	}
}

func NewWorker(store OutboxStore, publisher Publisher, opts ...Option) *Worker {
	w := &Worker{
		store:     store,
		publisher: publisher,
		logger:    slog.Default(),
		interval:  defaultInterval,
		batchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run relays until ctx is cancelled. Transient failures are logged and retried
// on the next tick.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if _, err := w.RelayOnce(ctx); err != nil && ctx.Err() == nil {
			w.logger.WarnContext(ctx, "outbox relay failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RelayOnce publishes one batch and returns how many entries were relayed.
func (w *Worker) RelayOnce(ctx context.Context) (int, error) {
	entries, err := w.store.FetchUnpublished(ctx, w.batchSize)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}
	if err := w.publisher.Publish(ctx, entries); err != nil {
		return 0, err
	}

	ids := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	if err := w.store.MarkPublished(ctx, ids, time.Now()); err != nil {
		return 0, err
	}
	w.logger.DebugContext(ctx, "outbox entries relayed", "count", len(entries))
	return len(entries), nil
}
