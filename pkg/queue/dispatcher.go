package queue

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Dispatcher drains batches concurrently: one goroutine per batch with a
// concurrency bound, strict ordering preserved inside each batch.
type Dispatcher struct {
	queue       *Queue
	concurrency int
	logger      *slog.Logger
}

// NewDispatcher builds a dispatcher over the queue. Concurrency below 1
// defaults to 4.
func NewDispatcher(queue *Queue, concurrency int, logger *slog.Logger) *Dispatcher {
	if concurrency < 1 {
		concurrency = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{queue: queue, concurrency: concurrency, logger: logger}
}

// Run drains the given batches, bounded-concurrent across batches.
func (d *Dispatcher) Run(ctx context.Context, batches []Batch) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	for _, batch := range batches {
		if batch.Empty() {
			continue
		}
		g.Go(func() error {
			d.logger.Debug("draining batch",
				slog.String("batch", batch.ID),
				slog.Int("tasks", len(batch.Tasks)),
			)
			return d.queue.Drain(ctx, batch)
		})
	}
	return g.Wait()
}

// DrainStored loads every persisted batch and drains it. Used at startup to
// finish work interrupted by a shutdown.
func (d *Dispatcher) DrainStored(ctx context.Context) error {
	if d.queue.store == nil {
		return nil
	}
	batches, err := d.queue.store.LoadBatches(ctx)
	if err != nil {
		return fmt.Errorf("queue: load stored batches: %w", err)
	}
	return d.Run(ctx, batches)
}
