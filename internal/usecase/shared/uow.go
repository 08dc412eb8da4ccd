package shared

import (
	"context"
	"time"

	"cart-reservation-service/internal/domain/cart"
	"cart-reservation-service/internal/domain/order"
	"cart-reservation-service/internal/infra/db"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: read-only transaction for multi-table consistent reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error
}

// Tx hands out repositories bound to the open transaction. Every repository
// call through it participates in the same commit/rollback.
type Tx interface {
	Stock() StockRepository
	Carts() CartRepository
	Orders() OrderRepository
	DB() db.DBTX
}

type SKUSnapshot struct {
	ID                uuid.UUID
	ProductName       string
	Variant           string
	Size              string
	PriceCents        int32
	AvailableQuantity int32
}

type CartSnapshot struct {
	ID         uuid.UUID
	SessionKey string
	ExpiresAt  time.Time
}

type LineSnapshot struct {
	ID       uuid.UUID
	CartID   uuid.UUID
	SKUID    uuid.UUID
	Quantity int32
}

// CheckoutLine is a cart line joined with its SKU's catalog fields, read at
// finalization time to build the order item snapshot.
type CheckoutLine struct {
	SKUID       uuid.UUID
	ProductName string
	Variant     string
	Size        string
	PriceCents  int32
	Quantity    int32
}

// StockRepository is the only mutator of available_quantity. LockSKU takes the
// per-SKU row lock that serializes concurrent reservations.
type StockRepository interface {
	LockSKU(ctx context.Context, skuID uuid.UUID) (*SKUSnapshot, error)
	Reserve(ctx context.Context, skuID uuid.UUID, qty int32) error
	Release(ctx context.Context, skuID uuid.UUID, qty int32) error
}

type CartRepository interface {
	FindBySessionForUpdate(ctx context.Context, sessionKey string) (*CartSnapshot, error)
	Create(ctx context.Context, c *cart.Cart) error
	ExtendLease(ctx context.Context, cartID uuid.UUID, expiresAt time.Time) error
	Lines(ctx context.Context, cartID uuid.UUID) ([]LineSnapshot, error)
	FindLineForUpdate(ctx context.Context, lineID, cartID uuid.UUID) (*LineSnapshot, error)
	AddLineQuantity(ctx context.Context, cartID uuid.UUID, line cart.Line) error
	SetLineQuantity(ctx context.Context, lineID uuid.UUID, qty int32) error
	DeleteLine(ctx context.Context, lineID uuid.UUID) error
	DeleteLines(ctx context.Context, cartID uuid.UUID) error
	DeleteCart(ctx context.Context, cartID uuid.UUID) error
	CheckoutLines(ctx context.Context, cartID uuid.UUID) ([]CheckoutLine, error)
	FindExpired(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
}

type OrderRepository interface {
	FindIDByPaymentReference(ctx context.Context, paymentReference string) (uuid.UUID, error)
	Create(ctx context.Context, o *order.Order) error
}
