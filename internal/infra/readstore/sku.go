package readstore

import (
	"context"

	"cart-reservation-service/internal/infra"
	"cart-reservation-service/internal/infra/db"
	"cart-reservation-service/internal/usecase/queries"

	"github.com/google/uuid"
)

type SKUReadStore struct {
	db db.DBTX
}

func NewSKUReadStore(dbtx db.DBTX) *SKUReadStore {
	return &SKUReadStore{db: dbtx}
}

func (r *SKUReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.SKUView, error) {
	var view queries.SKUView
	err := r.db.QueryRow(ctx, `
		SELECT id, product_name, variant, size, price_cents, available_quantity, updated_at
		FROM skus
		WHERE id = $1`, id).
		Scan(&view.ID, &view.ProductName, &view.Variant, &view.Size,
			&view.PriceCents, &view.AvailableQuantity, &view.UpdatedAt)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, infra.WrapRepoErr("sku not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find sku by id", err)
	}
	return &view, nil
}
