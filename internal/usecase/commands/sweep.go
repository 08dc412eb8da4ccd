package commands

import (
	"context"

	"cart-reservation-service/internal/pkg/clock"
	"cart-reservation-service/internal/pkg/config"
	"cart-reservation-service/internal/pkg/errs"
	"cart-reservation-service/internal/usecase/shared"
)

type SweepCommands interface {
	// SweepExpired returns the number of expired carts whose stock was
	// returned to their SKUs.
	SweepExpired(ctx context.Context) (int, error)
}

// Each batch claims its carts with FOR UPDATE SKIP LOCKED and releases and
// deletes them in the same transaction, so an interrupted sweep leaves no
// half-released cart and the next run simply picks up the remainder.
type sweepCommandsImpl struct {
	uow       shared.UnitOfWork
	clock     clock.Clock
	batchSize int
}

func NewSweepCommands(uow shared.UnitOfWork, clock clock.Clock, cfg config.Config) SweepCommands {
	return &sweepCommandsImpl{
		uow:       uow,
		clock:     clock,
		batchSize: cfg.Cart.SweepBatchSize,
	}
}

func (s *sweepCommandsImpl) SweepExpired(ctx context.Context) (int, error) {
	total := 0
	for {
		swept, err := s.sweepBatch(ctx)
		if err != nil {
			return total, err
		}
		total += swept
		if swept < s.batchSize {
			return total, nil
		}
	}
}

func (s *sweepCommandsImpl) sweepBatch(ctx context.Context) (int, error) {
	swept := 0
	err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		swept = 0
		ids, err := tx.Carts().FindExpired(ctx, s.clock.Now(), s.batchSize)
		if err != nil {
			return errs.Mark(err, ErrStorageFailure)
		}

		for _, cartID := range ids {
			lines, err := tx.Carts().Lines(ctx, cartID)
			if err != nil {
				return errs.Mark(err, ErrStorageFailure)
			}
			for _, line := range lines {
				if err := tx.Stock().Release(ctx, line.SKUID, line.Quantity); err != nil {
					return errs.Mark(err, ErrStorageFailure)
				}
			}
			if err := tx.Carts().DeleteCart(ctx, cartID); err != nil {
				return errs.Mark(err, ErrStorageFailure)
			}
			swept++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return swept, nil
}
