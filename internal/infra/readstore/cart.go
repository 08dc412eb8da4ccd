package readstore

import (
	"context"
	"time"

	"cart-reservation-service/internal/infra"
	"cart-reservation-service/internal/infra/db"
	"cart-reservation-service/internal/usecase/queries"
)

type CartReadStore struct {
	db db.DBTX
}

func NewCartReadStore(dbtx db.DBTX) *CartReadStore {
	return &CartReadStore{db: dbtx}
}

func (r *CartReadStore) FindViewBySession(ctx context.Context, sessionKey string, now time.Time) (*queries.CartView, error) {
	var view queries.CartView
	err := r.db.QueryRow(ctx, `
		SELECT id, session_key, expires_at
		FROM carts
		WHERE session_key = $1 AND expires_at > $2`, sessionKey, now).
		Scan(&view.ID, &view.SessionKey, &view.ExpiresAt)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, infra.WrapRepoErr("cart not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find cart by session", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT cl.id, cl.sku_id, s.product_name, s.variant, s.size, s.price_cents, cl.quantity
		FROM cart_lines cl
		JOIN skus s ON s.id = cl.sku_id
		WHERE cl.cart_id = $1
		ORDER BY cl.created_at`, view.ID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list cart lines", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l queries.CartLineView
		if err := rows.Scan(&l.ID, &l.SKUID, &l.ProductName, &l.Variant, &l.Size, &l.PriceCents, &l.Quantity); err != nil {
			return nil, infra.WrapRepoErr("failed to scan cart line", err)
		}
		l.LineTotalCents = int64(l.PriceCents) * int64(l.Quantity)
		view.SubtotalCents += l.LineTotalCents
		view.Lines = append(view.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read cart lines", err)
	}

	return &view, nil
}
