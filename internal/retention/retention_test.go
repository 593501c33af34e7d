package retention

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePurger struct {
	mu      sync.Mutex
	calls   []time.Time
	removed int64
	err     error
}

func (f *fakePurger) PurgeExpiredTodos(ctx context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, before)
	return f.removed, f.err
}

func (f *fakePurger) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestPolicyExpireAt(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.FixedZone("EST", -5*3600))
	got := Policy{TTL: 48 * time.Hour}.ExpireAt(now)

	assert.True(t, got.Equal(now.Add(48*time.Hour)))
	assert.Equal(t, time.UTC, got.Location())
}

func TestSweepUsesCurrentTime(t *testing.T) {
	fixed := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	purger := &fakePurger{removed: 3}
	s := NewSweeper(purger, time.Minute)
	s.now = func() time.Time { return fixed }

	n, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, []time.Time{fixed}, purger.calls)
}

func TestSweepError(t *testing.T) {
	s := NewSweeper(&fakePurger{err: errors.New("db down")}, time.Minute)

	_, err := s.Sweep(context.Background())
	assert.EqualError(t, err, "db down")
}

func TestRunStopsOnCancel(t *testing.T) {
	purger := &fakePurger{}
	s := NewSweeper(purger, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return purger.count() >= 2 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestRunDisabled(t *testing.T) {
	purger := &fakePurger{}
	NewSweeper(purger, 0).Run(context.Background())
	assert.Equal(t, 0, purger.count())
}
