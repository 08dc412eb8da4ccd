package worker

import (
	"context"
	"log/slog"
	"time"

	"cart-reservation-service/internal/pkg/config"
	"cart-reservation-service/internal/usecase/commands"
)

// Sweeper periodically returns the stock of abandoned carts. It is the only
// place expired carts of other sessions are cleaned up; reservation commands
// never sweep as a side effect.
type Sweeper struct {
	sweep    commands.SweepCommands
	interval time.Duration
	logger   *slog.Logger
}

func NewSweeper(sweep commands.SweepCommands, cfg config.Config, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		sweep:    sweep,
		interval: cfg.Cart.SweepInterval,
		logger:   logger,
	}
}

func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("cart sweeper started", "interval", s.interval.String())

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("cart sweeper stopped")
			return
		case <-ticker.C:
			swept, err := s.sweep.SweepExpired(ctx)
			if err != nil {
				// The next tick retries; SKIP LOCKED claiming makes a partial
				// sweep safe to rerun.
				s.logger.Error("cart sweep failed", "swept", swept, "error", err.Error())
				continue
			}
			if swept > 0 {
				s.logger.Info("expired carts swept", "count", swept)
			}
		}
	}
}
