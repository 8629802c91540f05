package session

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripwise/travel-agent/internal/pkg/logging"
)

// DefaultSweepInterval is how often idle sessions are collected.
const DefaultSweepInterval = time.Minute

// Sweeper periodically removes idle sessions off the request path.
type Sweeper struct {
	store    Store
	interval time.Duration
	now      func() time.Time
	logger   zerolog.Logger
}

// NewSweeper creates a sweeper for store.
func NewSweeper(store Store, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{
		store:    store,
		interval: interval,
		now:      time.Now,
		logger:   logging.WithComponent("session-sweeper"),
	}
}

// Run sweeps until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.interval).Msg("session sweeper started")
	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("session sweeper stopped")
			return nil
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs a single expiry pass.
func (s *Sweeper) Sweep(ctx context.Context) int {
	removed, err := s.store.ExpireStale(ctx, s.now())
	if err != nil {
		s.logger.Error().Err(err).Msg("session sweep failed")
		return removed
	}
	if removed > 0 {
		s.logger.Info().Int("removed", removed).Msg("expired idle sessions")
	}
	return removed
}
