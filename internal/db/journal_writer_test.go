package db

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/overworld/internal/journal"
	"github.com/udisondev/overworld/internal/testutil"
)

type mockInserter struct {
	mu      sync.Mutex
	batches [][]journal.Entry
	fail    bool
}

func (m *mockInserter) InsertBatch(_ context.Context, entries []journal.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("connection refused")
	}
	m.batches = append(m.batches, append([]journal.Entry(nil), entries...))
	return nil
}

func (m *mockInserter) total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.batches {
		n += len(b)
	}
	return n
}

func (m *mockInserter) largestBatch() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.batches {
		n = max(n, len(b))
	}
	return n
}

func entry(kind journal.Kind) journal.Entry {
	return journal.Entry{At: time.Now(), Kind: kind, MapID: 10}
}

func TestWriter_FlushesOnBatchSize(t *testing.T) {
	store := &mockInserter{}
	w := NewWriter(store, WithBatch(3, time.Hour))
	ctx, cancel := testutil.ContextWithCancel(t)

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	for range 6 {
		w.Record(entry(journal.KindSpawned))
	}
	assert.Eventually(t, func() bool { return store.total() == 6 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 3, store.largestBatch())

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, int64(6), w.Written())
}

func TestWriter_FlushesOnInterval(t *testing.T) {
	store := &mockInserter{}
	w := NewWriter(store, WithBatch(100, 20*time.Millisecond))
	ctx, cancel := testutil.ContextWithCancel(t)

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	w.Record(entry(journal.KindOutbreakStarted))
	assert.Eventually(t, func() bool { return store.total() == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestWriter_DrainsOnShutdown(t *testing.T) {
	store := &mockInserter{}
	w := NewWriter(store, WithBatch(100, time.Hour))

	for range 5 {
		w.Record(entry(journal.KindDespawned))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, w.Run(ctx))
	assert.Equal(t, 5, store.total())
}

func TestWriter_DropsWhenFull(t *testing.T) {
	store := &mockInserter{}
	w := NewWriter(store, WithBuffer(2))

	for range 5 {
		w.Record(entry(journal.KindSpawned))
	}
	assert.Equal(t, int64(3), w.Dropped())
}

func TestWriter_FailedFlushIsDiscarded(t *testing.T) {
	store := &mockInserter{fail: true}
	w := NewWriter(store, WithBatch(1, time.Hour))

	w.Record(entry(journal.KindSpawned))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, w.Run(ctx))
	assert.Zero(t, w.Written())
}
