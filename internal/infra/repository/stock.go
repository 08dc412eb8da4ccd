package repository

import (
	"context"

	"cart-reservation-service/internal/infra"
	"cart-reservation-service/internal/infra/db"
	"cart-reservation-service/internal/usecase/shared"

	"github.com/google/uuid"
)

// StockRepository owns available_quantity. Both mutators assume the caller
// runs them inside an open transaction; LockSKU must be called first so two
// shoppers racing for the same SKU serialize on the row lock instead of both
// reading the same quantity.
type StockRepository struct {
	db db.DBTX
}

func NewStockRepository(dbtx db.DBTX) *StockRepository {
	return &StockRepository{db: dbtx}
}

func (r *StockRepository) LockSKU(ctx context.Context, skuID uuid.UUID) (*shared.SKUSnapshot, error) {
	var s shared.SKUSnapshot
	err := r.db.QueryRow(ctx, `
		SELECT id, product_name, variant, size, price_cents, available_quantity
		FROM skus
		WHERE id = $1
		FOR UPDATE`, skuID).
		Scan(&s.ID, &s.ProductName, &s.Variant, &s.Size, &s.PriceCents, &s.AvailableQuantity)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, infra.WrapRepoErr("sku not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to lock sku row", err)
	}
	return &s, nil
}

func (r *StockRepository) Reserve(ctx context.Context, skuID uuid.UUID, qty int32) error {
	// Callers check the locked read first; the WHERE guard is the backstop.
	tag, err := r.db.Exec(ctx, `
		UPDATE skus
		SET available_quantity = available_quantity - $2, updated_at = now()
		WHERE id = $1 AND available_quantity >= $2`, skuID, qty)
	if err != nil {
		return infra.WrapRepoErr("failed to reserve stock", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("stock underflow prevented", nil, infra.KindInsufficientStock)
	}
	return nil
}

func (r *StockRepository) Release(ctx context.Context, skuID uuid.UUID, qty int32) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE skus
		SET available_quantity = available_quantity + $2, updated_at = now()
		WHERE id = $1`, skuID, qty)
	if err != nil {
		return infra.WrapRepoErr("failed to release stock", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("sku not found", nil, infra.KindNotFound)
	}
	return nil
}
