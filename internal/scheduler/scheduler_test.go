package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kaamkhojo-engine/internal/domain"
	"kaamkhojo-engine/internal/store"
)

func TestScheduler_AddRejectsBadSpec(t *testing.T) {
	s := New()
	err := s.Add("every other tuesday", "bad", func(context.Context) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
	assert.Zero(t, s.Len())
}

func TestScheduler_RunAll(t *testing.T) {
	s := New()
	var order []string
	require.NoError(t, s.Add("@daily", "a", func(context.Context) error {
		order = append(order, "a")
		return errors.New("logged, not fatal")
	}))
	require.NoError(t, s.Add("@hourly", "b", func(context.Context) error {
		order = append(order, "b")
		return nil
	}))

	s.RunAll(context.Background())
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, 2, s.Len())
}

func TestScheduler_StartStop(t *testing.T) {
	s := New()
	var runs atomic.Int32
	require.NoError(t, s.Add("@every 1s", "tick", func(context.Context) error {
		runs.Add(1)
		return nil
	}))

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	s.Stop()
}

func TestEvery_RunsImmediatelyAndStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var runs atomic.Int32
	done := make(chan struct{})
	go func() {
		Every(ctx, time.Hour, "test", func(context.Context) error {
			runs.Add(1)
			return nil
		})
		close(done)
	}()

	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 10*time.Millisecond)
	cancel()
	<-done
}

func TestCleanup_Run(t *testing.T) {
	ctx := context.Background()
	db, err := store.Open(filepath.Join(t.TempDir(), "kk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	for _, age := range []time.Duration{time.Hour, 45 * 24 * time.Hour} {
		_, err := store.InsertRecord(ctx, db.Pool, domain.Record{
			Kind: domain.KindJob, Title: "t", Company: "c", PostedAt: time.Now().UTC().Add(-age),
		})
		require.NoError(t, err)
	}

	var got int64
	c := Cleanup{DB: db.Pool, Retention: 30 * 24 * time.Hour, OnExpired: func(_ context.Context, n int64) { got = n }}
	require.NoError(t, c.Run(ctx))
	assert.EqualValues(t, 1, got)

	got = 0
	require.NoError(t, c.Run(ctx))
	assert.Zero(t, got)

	n, err := store.CountRecords(ctx, db.Pool)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCleanup_DisabledWithoutRetention(t *testing.T) {
	assert.NoError(t, Cleanup{}.Run(context.Background()))
}
