package storage

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mmuslimabdulj/goat-rooms/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	calls atomic.Int32
	err   error
}

func (f *fakeSource) Snapshot(context.Context) (*domain.Snapshot, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return sampleSnapshot(), nil
}

func TestScheduler_Flush(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir)
	require.NoError(t, err)
	store := New("file", backend)

	s := NewScheduler(&fakeSource{}, store, time.Hour)
	require.NoError(t, s.Flush(context.Background()))

	snap, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Rooms, 2)
}

func TestScheduler_FlushReportsSourceError(t *testing.T) {
	source := &fakeSource{err: errors.New("stopped")}
	s := NewScheduler(source, New("memory", newMemoryBackend()), time.Hour)
	assert.Error(t, s.Flush(context.Background()))
}

func TestScheduler_RunTicksUntilCancelled(t *testing.T) {
	source := &fakeSource{}
	s := NewScheduler(source, New("memory", newMemoryBackend()), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return source.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestScheduler_DefaultInterval(t *testing.T) {
	s := NewScheduler(&fakeSource{}, nil, 0)
	assert.Equal(t, domain.PersistInterval, s.interval)
}
