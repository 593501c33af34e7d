// Package retention expires data created by anonymous users.
package retention

import (
	"context"
	"time"

	"github.com/existflow/todoserver/internal/logger"
)

// Policy stamps expiration times on anonymous data
type Policy struct {
	TTL time.Duration
}

// ExpireAt returns the expiration for a record created at now
func (p Policy) ExpireAt(now time.Time) time.Time {
	return now.Add(p.TTL).UTC()
}

// Purger deletes records whose expiration is at or before a time
type Purger interface {
	PurgeExpiredTodos(ctx context.Context, before time.Time) (int64, error)
}

// Sweeper periodically purges expired records
type Sweeper struct {
	purger   Purger
	interval time.Duration
	now      func() time.Time
}

// NewSweeper creates a sweeper running every interval
func NewSweeper(purger Purger, interval time.Duration) *Sweeper {
	return &Sweeper{purger: purger, interval: interval, now: time.Now}
}

// Sweep runs one purge pass
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	n, err := s.purger.PurgeExpiredTodos(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.Info("Purged expired todos", logger.F("count", n))
	}
	return n, nil
}

// Run sweeps immediately and then on every tick until ctx is done.
// A non-positive interval disables the loop.
func (s *Sweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		logger.Warn("Retention sweeper disabled")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
			logger.Error("Retention sweep failed", logger.F("error", err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
