package readstore

import (
	"context"

	"cart-reservation-service/internal/infra"
	"cart-reservation-service/internal/infra/db"
	"cart-reservation-service/internal/usecase/queries"

	"github.com/google/uuid"
)

type OrderReadStore struct {
	db db.DBTX
}

func NewOrderReadStore(dbtx db.DBTX) *OrderReadStore {
	return &OrderReadStore{db: dbtx}
}

func (r *OrderReadStore) FindViewByID(ctx context.Context, id uuid.UUID) (*queries.OrderView, error) {
	return r.findView(ctx, `WHERE id = $1`, id)
}

func (r *OrderReadStore) FindViewByPaymentReference(ctx context.Context, paymentReference string) (*queries.OrderView, error) {
	return r.findView(ctx, `WHERE payment_reference = $1`, paymentReference)
}

func (r *OrderReadStore) findView(ctx context.Context, where string, arg any) (*queries.OrderView, error) {
	var view queries.OrderView
	err := r.db.QueryRow(ctx, `
		SELECT id, payment_reference, status,
		       email, shipping_name, shipping_line1, shipping_line2,
		       shipping_city, shipping_postal_code, shipping_country,
		       subtotal_cents, total_cents, created_at
		FROM orders `+where, arg).
		Scan(&view.ID, &view.PaymentReference, &view.Status,
			&view.Email, &view.ShippingName, &view.ShippingLine1, &view.ShippingLine2,
			&view.ShippingCity, &view.ShippingPostal, &view.ShippingCountry,
			&view.SubtotalCents, &view.TotalCents, &view.CreatedAt)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find order", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, sku_id, product_name, variant, size, price_cents, quantity
		FROM order_items
		WHERE order_id = $1`, view.ID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list order items", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it queries.OrderItemView
		if err := rows.Scan(&it.ID, &it.SKUID, &it.ProductName, &it.Variant, &it.Size, &it.PriceCents, &it.Quantity); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order item", err)
		}
		view.Items = append(view.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read order items", err)
	}

	return &view, nil
}
