package repository

import (
	"context"

	"cart-reservation-service/internal/domain/order"
	"cart-reservation-service/internal/infra"
	"cart-reservation-service/internal/infra/db"

	"github.com/google/uuid"
)

type OrderRepository struct {
	db db.DBTX
}

func NewOrderRepository(dbtx db.DBTX) *OrderRepository {
	return &OrderRepository{db: dbtx}
}

func (r *OrderRepository) FindIDByPaymentReference(ctx context.Context, paymentReference string) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.QueryRow(ctx,
		`SELECT id FROM orders WHERE payment_reference = $1`, paymentReference).Scan(&id)
	if err != nil {
		if infra.IsNoRows(err) {
			return uuid.Nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return uuid.Nil, infra.WrapRepoErr("failed to find order by payment reference", err)
	}
	return id, nil
}

// Create inserts the order and its item snapshot. The unique constraint on
// payment_reference surfaces as KindDuplicateKey, which the finalizer treats
// as "another call already committed this payment".
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	contact := o.Contact()
	shipping := o.Shipping()

	_, err := r.db.Exec(ctx, `
		INSERT INTO orders (
			id, payment_reference, status,
			email, shipping_name, shipping_line1, shipping_line2,
			shipping_city, shipping_postal_code, shipping_country,
			subtotal_cents, total_cents, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		o.ID(), o.PaymentReference(), string(o.Status()),
		contact.Email, contact.Name, shipping.Line1, shipping.Line2,
		shipping.City, shipping.PostalCode, shipping.Country,
		o.SubtotalCents(), o.TotalCents(), o.CreatedAt())
	if err != nil {
		return infra.WrapRepoErr("failed to create order", err)
	}

	for _, it := range o.Items() {
		_, err := r.db.Exec(ctx, `
			INSERT INTO order_items (
				id, order_id, sku_id, product_name, variant, size, price_cents, quantity
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			it.ID(), o.ID(), it.SKUID(), it.ProductName(), it.Variant(), it.Size(),
			it.PriceCents(), it.Quantity())
		if err != nil {
			return infra.WrapRepoErr("failed to create order item", err)
		}
	}
	return nil
}
