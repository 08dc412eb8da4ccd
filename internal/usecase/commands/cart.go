package commands

import (
	"context"
	"time"

	"cart-reservation-service/internal/domain/cart"
	"cart-reservation-service/internal/infra"
	"cart-reservation-service/internal/pkg/clock"
	"cart-reservation-service/internal/pkg/config"
	"cart-reservation-service/internal/pkg/errs"
	"cart-reservation-service/internal/usecase/queries"
	"cart-reservation-service/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrInsufficientStock = errs.New("insufficient stock")
	ErrSKUNotFound       = errs.New("sku not found")
	ErrCartNotFound      = errs.New("cart not found")
	ErrLineNotFound      = errs.New("cart line not found")
	ErrInvalidQuantity   = errs.New("invalid quantity")
	ErrStorageFailure    = errs.New("storage operation failed")
)

type CartCommands interface {
	AddItem(ctx context.Context, sessionKey string, skuID uuid.UUID, qty int32) (*queries.CartView, error)
	ChangeQuantity(ctx context.Context, sessionKey string, lineID uuid.UUID, newQty int32) (*queries.CartView, error)
	RemoveLine(ctx context.Context, sessionKey string, lineID uuid.UUID) (*queries.CartView, error)
}

// cartCommandsImpl keeps the reservation invariant: the quantity on every live
// cart line has already been debited from its SKU, inside the same
// transaction. Lock order is always cart row -> line -> SKU row so concurrent
// operations on one session cannot deadlock each other.
type cartCommandsImpl struct {
	uow         shared.UnitOfWork
	cartQueries queries.CartQueries
	clock       clock.Clock
	ttl         time.Duration
}

func NewCartCommands(
	uow shared.UnitOfWork,
	cartQueries queries.CartQueries,
	clock clock.Clock,
	cfg config.Config,
) CartCommands {
	return &cartCommandsImpl{
		uow:         uow,
		cartQueries: cartQueries,
		clock:       clock,
		ttl:         cfg.Cart.TTL,
	}
}

func (c *cartCommandsImpl) AddItem(ctx context.Context, sessionKey string, skuID uuid.UUID, qty int32) (*queries.CartView, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}

	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		cartSnap, err := c.getOrCreateCart(ctx, tx, sessionKey)
		if err != nil {
			return err
		}

		sku, err := tx.Stock().LockSKU(ctx, skuID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrSKUNotFound
			}
			return errs.Mark(err, ErrStorageFailure)
		}
		if sku.AvailableQuantity < qty {
			return ErrInsufficientStock
		}

		line, err := cart.NewLine(skuID, qty)
		if err != nil {
			return ErrInvalidQuantity
		}
		if err := tx.Carts().AddLineQuantity(ctx, cartSnap.ID, line); err != nil {
			return errs.Mark(err, ErrStorageFailure)
		}

		if err := tx.Stock().Reserve(ctx, skuID, qty); err != nil {
			if infra.IsKind(err, infra.KindInsufficientStock) {
				return ErrInsufficientStock
			}
			return errs.Mark(err, ErrStorageFailure)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return c.cartQueries.GetBySession(ctx, sessionKey)
}

func (c *cartCommandsImpl) ChangeQuantity(ctx context.Context, sessionKey string, lineID uuid.UUID, newQty int32) (*queries.CartView, error) {
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		cartSnap, err := c.lockLiveCart(ctx, tx, sessionKey)
		if err != nil {
			return err
		}

		line, err := tx.Carts().FindLineForUpdate(ctx, lineID, cartSnap.ID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrLineNotFound
			}
			return errs.Mark(err, ErrStorageFailure)
		}

		sku, err := tx.Stock().LockSKU(ctx, line.SKUID)
		if err != nil {
			return errs.Mark(err, ErrStorageFailure)
		}

		target := newQty
		if target < 0 {
			target = 0
		}
		domainLine := cart.ReconstructLine(line.ID, line.SKUID, line.Quantity)
		delta := domainLine.QuantityDelta(target)

		switch {
		case delta > 0:
			if sku.AvailableQuantity < delta {
				return ErrInsufficientStock
			}
			if err := tx.Stock().Reserve(ctx, line.SKUID, delta); err != nil {
				return errs.Mark(err, ErrStorageFailure)
			}
		case delta < 0:
			if err := tx.Stock().Release(ctx, line.SKUID, -delta); err != nil {
				return errs.Mark(err, ErrStorageFailure)
			}
		}

		if target == 0 {
			if err := tx.Carts().DeleteLine(ctx, line.ID); err != nil {
				return errs.Mark(err, ErrStorageFailure)
			}
		} else if err := tx.Carts().SetLineQuantity(ctx, line.ID, target); err != nil {
			return errs.Mark(err, ErrStorageFailure)
		}

		return c.extendLease(ctx, tx, cartSnap.ID)
	})
	if err != nil {
		return nil, err
	}

	return c.cartQueries.GetBySession(ctx, sessionKey)
}

// RemoveLine is a successful no-op when the line (or the whole cart) is
// already gone: a double-click or retry must not surface an error.
func (c *cartCommandsImpl) RemoveLine(ctx context.Context, sessionKey string, lineID uuid.UUID) (*queries.CartView, error) {
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		cartSnap, err := c.lockLiveCart(ctx, tx, sessionKey)
		if err != nil {
			if errs.Is(err, ErrCartNotFound) {
				return nil
			}
			return err
		}

		line, err := tx.Carts().FindLineForUpdate(ctx, lineID, cartSnap.ID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return c.extendLease(ctx, tx, cartSnap.ID)
			}
			return errs.Mark(err, ErrStorageFailure)
		}

		if err := tx.Stock().Release(ctx, line.SKUID, line.Quantity); err != nil {
			return errs.Mark(err, ErrStorageFailure)
		}
		if err := tx.Carts().DeleteLine(ctx, line.ID); err != nil {
			return errs.Mark(err, ErrStorageFailure)
		}
		return c.extendLease(ctx, tx, cartSnap.ID)
	})
	if err != nil {
		return nil, err
	}

	view, err := c.cartQueries.GetBySession(ctx, sessionKey)
	if errs.Is(err, queries.ErrCartNotFound) {
		return &queries.CartView{SessionKey: sessionKey}, nil
	}
	return view, err
}

// getOrCreateCart locks or creates the session's cart and slides its lease.
// Finding the session's own cart expired here recycles it in place: its stale
// reservations are released before the new one is taken, all in this
// transaction. Other sessions' expired carts are the sweeper's job.
func (c *cartCommandsImpl) getOrCreateCart(ctx context.Context, tx shared.Tx, sessionKey string) (*shared.CartSnapshot, error) {
	now := c.clock.Now()

	snap, err := tx.Carts().FindBySessionForUpdate(ctx, sessionKey)
	if err != nil {
		if !infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrStorageFailure)
		}
		fresh, err := cart.NewCart(sessionKey, now, c.ttl)
		if err != nil {
			return nil, err
		}
		if err := tx.Carts().Create(ctx, fresh); err != nil {
			return nil, errs.Mark(err, ErrStorageFailure)
		}
		return &shared.CartSnapshot{ID: fresh.ID(), SessionKey: sessionKey, ExpiresAt: fresh.ExpiresAt()}, nil
	}

	entity := cart.Reconstruct(snap.ID, snap.SessionKey, snap.ExpiresAt)
	if entity.Expired(now) {
		if err := c.releaseCartLines(ctx, tx, snap.ID); err != nil {
			return nil, err
		}
		if err := tx.Carts().DeleteLines(ctx, snap.ID); err != nil {
			return nil, errs.Mark(err, ErrStorageFailure)
		}
	}

	if err := c.extendLease(ctx, tx, snap.ID); err != nil {
		return nil, err
	}
	entity.ExtendLease(now, c.ttl)
	snap.ExpiresAt = entity.ExpiresAt()
	return snap, nil
}

// lockLiveCart is getOrCreateCart's read-mostly sibling for operations that
// require an existing, non-expired cart.
func (c *cartCommandsImpl) lockLiveCart(ctx context.Context, tx shared.Tx, sessionKey string) (*shared.CartSnapshot, error) {
	snap, err := tx.Carts().FindBySessionForUpdate(ctx, sessionKey)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, errs.Mark(err, ErrStorageFailure)
	}
	if cart.Reconstruct(snap.ID, snap.SessionKey, snap.ExpiresAt).Expired(c.clock.Now()) {
		return nil, ErrCartNotFound
	}
	return snap, nil
}

func (c *cartCommandsImpl) extendLease(ctx context.Context, tx shared.Tx, cartID uuid.UUID) error {
	if err := tx.Carts().ExtendLease(ctx, cartID, c.clock.Now().Add(c.ttl)); err != nil {
		return errs.Mark(err, ErrStorageFailure)
	}
	return nil
}

func (c *cartCommandsImpl) releaseCartLines(ctx context.Context, tx shared.Tx, cartID uuid.UUID) error {
	lines, err := tx.Carts().Lines(ctx, cartID)
	if err != nil {
		return errs.Mark(err, ErrStorageFailure)
	}
	for _, line := range lines {
		if err := tx.Stock().Release(ctx, line.SKUID, line.Quantity); err != nil {
			return errs.Mark(err, ErrStorageFailure)
		}
	}
	return nil
}
