package db

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/udisondev/overworld/internal/journal"
)

const (
	defaultWriterBuffer = 1024
	defaultBatchSize    = 256
	defaultFlushEvery   = time.Second
	finalFlushTimeout   = 5 * time.Second
)

// BatchInserter persists journal entries.
type BatchInserter interface {
	InsertBatch(ctx context.Context, entries []journal.Entry) error
}

// Writer is an asynchronous journal.Recorder. Record never blocks: when the
// buffer is full the entry is dropped and counted.
type Writer struct {
	store      BatchInserter
	ch         chan journal.Entry
	batchSize  int
	flushEvery time.Duration

	dropped atomic.Int64
	written atomic.Int64
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithBuffer sets the channel capacity.
func WithBuffer(n int) WriterOption {
	return func(w *Writer) { w.ch = make(chan journal.Entry, n) }
}

// WithBatch sets the batch size and flush interval.
func WithBatch(size int, every time.Duration) WriterOption {
	return func(w *Writer) {
		w.batchSize = size
		w.flushEvery = every
	}
}

// NewWriter creates a writer on top of store. Call Run to start flushing.
func NewWriter(store BatchInserter, opts ...WriterOption) *Writer {
	w := &Writer{
		store:      store,
		ch:         make(chan journal.Entry, defaultWriterBuffer),
		batchSize:  defaultBatchSize,
		flushEvery: defaultFlushEvery,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Record implements journal.Recorder.
func (w *Writer) Record(e journal.Entry) {
	select {
	case w.ch <- e:
	default:
		if w.dropped.Add(1)%100 == 1 {
			slog.Warn("journal buffer full, dropping entries",
				"kind", e.Kind,
				"dropped", w.dropped.Load())
		}
	}
}

// Dropped returns how many entries were discarded.
func (w *Writer) Dropped() int64 {
	return w.dropped.Load()
}

// Written returns how many entries were persisted.
func (w *Writer) Written() int64 {
	return w.written.Load()
}

// Run flushes batches until ctx is cancelled, then drains what is buffered.
func (w *Writer) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.flushEvery)
	defer ticker.Stop()

	slog.Info("journal writer started", "batch", w.batchSize, "interval", w.flushEvery)

	batch := make([]journal.Entry, 0, w.batchSize)
	for {
		select {
		case <-ctx.Done():
			batch = w.drain(batch)
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalFlushTimeout)
			w.flush(flushCtx, batch)
			cancel()
			slog.Info("journal writer stopped",
				"written", w.written.Load(),
				"dropped", w.dropped.Load())
			return nil

		case e := <-w.ch:
			batch = append(batch, e)
			if len(batch) >= w.batchSize {
				batch = w.flush(ctx, batch)
			}

		case <-ticker.C:
			batch = w.flush(ctx, batch)
		}
	}
}

func (w *Writer) drain(batch []journal.Entry) []journal.Entry {
	for {
		select {
		case e := <-w.ch:
			batch = append(batch, e)
		default:
			return batch
		}
	}
}

// flush writes batch and returns it emptied. A failed batch is logged and
// discarded; the journal is best-effort.
func (w *Writer) flush(ctx context.Context, batch []journal.Entry) []journal.Entry {
	if len(batch) == 0 {
		return batch
	}
	if err := w.store.InsertBatch(ctx, batch); err != nil {
		slog.Warn("journal flush failed", "entries", len(batch), "error", err)
	} else {
		w.written.Add(int64(len(batch)))
	}
	return batch[:0]
}
