package telemetry

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/relabs-tech/aequus_trainer/internal/xslog"
)

// DefaultQueueSize is enough for a whole sweep (~110 events) plus screen
// changes.
const DefaultQueueSize = 256

// Queue decouples producers from a slow Sink. Publish never blocks; events
// are dropped when the buffer is full.
type Queue struct {
	ch      chan Event
	sink    Sink
	logger  *slog.Logger
	dropped atomic.Uint64
}

func NewQueue(size int, sink Sink, logger *slog.Logger) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if logger == nil {
		logger = xslog.Discard()
	}
	return &Queue{
		ch:     make(chan Event, size),
		sink:   sink,
		logger: logger.With(xslog.Component("telemetry")),
	}
}

func (q *Queue) Publish(ev Event) {
	select {
	case q.ch <- ev:
	default:
		if n := q.dropped.Add(1); n == 1 || n%100 == 0 {
			q.logger.Warn("telemetry queue full, dropping events", slog.Uint64("dropped", n))
		}
	}
}

// Dropped reports how many events were discarded so far.
func (q *Queue) Dropped() uint64 { return q.dropped.Load() }

// Run delivers queued events until ctx is done, then flushes what is left
// and logs the total number of dropped events.
func (q *Queue) Run(ctx context.Context) error {
	defer func() {
		if n := q.Dropped(); n > 0 {
			q.logger.Warn("telemetry queue stopped with dropped events", slog.Uint64("dropped", n))
		}
	}()
	for {
		select {
		case ev := <-q.ch:
			q.sink.Publish(ev)
		case <-ctx.Done():
			for {
				select {
				case ev := <-q.ch:
					q.sink.Publish(ev)
				default:
					return nil
				}
			}
		}
	}
}
