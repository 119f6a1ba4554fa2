package service

import (
	"context"
	"time"

	"todo_api/internal/logger"
	"todo_api/internal/metrics"
	"todo_api/internal/repository"
)

// TokenSweeper deletes expired session tokens on a fixed interval.
type TokenSweeper struct {
	purger  repository.TokenPurger
	log     *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewTokenSweeper(purger repository.TokenPurger, log *logger.Logger, m *metrics.Metrics) *TokenSweeper {
	return &TokenSweeper{
		purger:  purger,
		log:     logger.OrNop(log),
		metrics: m,
		now:     time.Now,
	}
}

// Run ticks at the given interval until ctx is canceled.
func (s *TokenSweeper) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			// errors are logged by SweepOnce; the next tick retries
			_, _ = s.SweepOnce(ctx)
		}
	}
}

// SweepOnce removes every token that expired before now in one statement.
func (s *TokenSweeper) SweepOnce(ctx context.Context) (int64, error) {
	n, err := s.purger.DeleteExpiredTokens(ctx, s.now().UTC())
	if err != nil {
		if ctx.Err() == nil {
			s.log.Errorw("token_sweep_failed", "err", err)
		}
		return 0, err
	}
	if n > 0 {
		s.metrics.TokensSwept(n)
		s.log.Infow("token_sweep", "removed", n)
	}
	return n, nil
}
