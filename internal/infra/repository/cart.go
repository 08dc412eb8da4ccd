package repository

import (
	"context"
	"time"

	"cart-reservation-service/internal/domain/cart"
	"cart-reservation-service/internal/infra"
	"cart-reservation-service/internal/infra/db"
	"cart-reservation-service/internal/usecase/shared"

	"github.com/google/uuid"
)

type CartRepository struct {
	db db.DBTX
}

func NewCartRepository(dbtx db.DBTX) *CartRepository {
	return &CartRepository{db: dbtx}
}

// FindBySessionForUpdate locks the cart row so two requests of the same
// session (two tabs) serialize before touching lines or stock.
func (r *CartRepository) FindBySessionForUpdate(ctx context.Context, sessionKey string) (*shared.CartSnapshot, error) {
	var c shared.CartSnapshot
	err := r.db.QueryRow(ctx, `
		SELECT id, session_key, expires_at
		FROM carts
		WHERE session_key = $1
		FOR UPDATE`, sessionKey).
		Scan(&c.ID, &c.SessionKey, &c.ExpiresAt)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, infra.WrapRepoErr("cart not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to lock cart row", err)
	}
	return &c, nil
}

func (r *CartRepository) Create(ctx context.Context, c *cart.Cart) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO carts (id, session_key, expires_at)
		VALUES ($1, $2, $3)`,
		c.ID(), c.SessionKey(), c.ExpiresAt())
	if err != nil {
		return infra.WrapRepoErr("failed to create cart", err)
	}
	return nil
}

func (r *CartRepository) ExtendLease(ctx context.Context, cartID uuid.UUID, expiresAt time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE carts
		SET expires_at = $2, updated_at = now()
		WHERE id = $1`, cartID, expiresAt)
	if err != nil {
		return infra.WrapRepoErr("failed to extend cart lease", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("cart not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *CartRepository) Lines(ctx context.Context, cartID uuid.UUID) ([]shared.LineSnapshot, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, cart_id, sku_id, quantity
		FROM cart_lines
		WHERE cart_id = $1`, cartID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list cart lines", err)
	}
	defer rows.Close()

	var lines []shared.LineSnapshot
	for rows.Next() {
		var l shared.LineSnapshot
		if err := rows.Scan(&l.ID, &l.CartID, &l.SKUID, &l.Quantity); err != nil {
			return nil, infra.WrapRepoErr("failed to scan cart line", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read cart lines", err)
	}
	return lines, nil
}

// FindLineForUpdate scopes the line to cartID so a caller can never mutate a
// line belonging to another session's cart.
func (r *CartRepository) FindLineForUpdate(ctx context.Context, lineID, cartID uuid.UUID) (*shared.LineSnapshot, error) {
	var l shared.LineSnapshot
	err := r.db.QueryRow(ctx, `
		SELECT id, cart_id, sku_id, quantity
		FROM cart_lines
		WHERE id = $1 AND cart_id = $2
		FOR UPDATE`, lineID, cartID).
		Scan(&l.ID, &l.CartID, &l.SKUID, &l.Quantity)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, infra.WrapRepoErr("cart line not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to lock cart line", err)
	}
	return &l, nil
}

// AddLineQuantity upserts on (cart_id, sku_id): repeated adds merge into one
// line instead of duplicating rows.
func (r *CartRepository) AddLineQuantity(ctx context.Context, cartID uuid.UUID, line cart.Line) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO cart_lines (id, cart_id, sku_id, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cart_id, sku_id)
		DO UPDATE SET quantity = cart_lines.quantity + EXCLUDED.quantity, updated_at = now()`,
		line.ID(), cartID, line.SKUID(), line.Quantity())
	if err != nil {
		return infra.WrapRepoErr("failed to upsert cart line", err)
	}
	return nil
}

func (r *CartRepository) SetLineQuantity(ctx context.Context, lineID uuid.UUID, qty int32) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE cart_lines
		SET quantity = $2, updated_at = now()
		WHERE id = $1`, lineID, qty)
	if err != nil {
		return infra.WrapRepoErr("failed to update cart line quantity", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("cart line not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *CartRepository) DeleteLine(ctx context.Context, lineID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM cart_lines WHERE id = $1`, lineID)
	if err != nil {
		return infra.WrapRepoErr("failed to delete cart line", err)
	}
	return nil
}

func (r *CartRepository) DeleteLines(ctx context.Context, cartID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, cartID)
	if err != nil {
		return infra.WrapRepoErr("failed to delete cart lines", err)
	}
	return nil
}

func (r *CartRepository) DeleteCart(ctx context.Context, cartID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM carts WHERE id = $1`, cartID)
	if err != nil {
		return infra.WrapRepoErr("failed to delete cart", err)
	}
	return nil
}

func (r *CartRepository) CheckoutLines(ctx context.Context, cartID uuid.UUID) ([]shared.CheckoutLine, error) {
	rows, err := r.db.Query(ctx, `
		SELECT cl.sku_id, s.product_name, s.variant, s.size, s.price_cents, cl.quantity
		FROM cart_lines cl
		JOIN skus s ON s.id = cl.sku_id
		WHERE cl.cart_id = $1`, cartID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to read checkout lines", err)
	}
	defer rows.Close()

	var lines []shared.CheckoutLine
	for rows.Next() {
		var l shared.CheckoutLine
		if err := rows.Scan(&l.SKUID, &l.ProductName, &l.Variant, &l.Size, &l.PriceCents, &l.Quantity); err != nil {
			return nil, infra.WrapRepoErr("failed to scan checkout line", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read checkout lines", err)
	}
	return lines, nil
}

// FindExpired claims up to limit expired carts. SKIP LOCKED keeps overlapping
// sweeper runs (and a sweep racing a finalization) from double-releasing.
func (r *CartRepository) FindExpired(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id
		FROM carts
		WHERE expires_at <= $1
		ORDER BY expires_at
		LIMIT $2
		FOR UPDATE SKIP LOCKED`, now, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find expired carts", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, infra.WrapRepoErr("failed to scan expired cart id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read expired carts", err)
	}
	return ids, nil
}
