package cart

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptySessionKey = errors.New("session key must not be empty")
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// Cart is a sliding-window lease on reserved stock: every mutation pushes
// expiresAt forward, and an expired cart no longer counts toward any SKU.
type Cart struct {
	id         uuid.UUID
	sessionKey string
	expiresAt  time.Time
}

func NewCart(sessionKey string, now time.Time, ttl time.Duration) (*Cart, error) {
	if sessionKey == "" {
		return nil, ErrEmptySessionKey
	}
	return &Cart{
		id:         uuid.New(),
		sessionKey: sessionKey,
		expiresAt:  now.Add(ttl),
	}, nil
}

func Reconstruct(id uuid.UUID, sessionKey string, expiresAt time.Time) *Cart {
	return &Cart{
		id:         id,
		sessionKey: sessionKey,
		expiresAt:  expiresAt,
	}
}

func (c *Cart) ExtendLease(now time.Time, ttl time.Duration) {
	c.expiresAt = now.Add(ttl)
}

func (c *Cart) Expired(now time.Time) bool {
	return !now.Before(c.expiresAt)
}

func (c *Cart) ID() uuid.UUID       { return c.id }
func (c *Cart) SessionKey() string  { return c.sessionKey }
func (c *Cart) ExpiresAt() time.Time { return c.expiresAt }

// Line is one (cart, SKU) reservation. At most one line exists per pair;
// repeated adds merge into it.
type Line struct {
	id       uuid.UUID
	skuID    uuid.UUID
	quantity int32
}

func NewLine(skuID uuid.UUID, quantity int32) (Line, error) {
	if quantity <= 0 {
		return Line{}, ErrInvalidQuantity
	}
	return Line{
		id:       uuid.New(),
		skuID:    skuID,
		quantity: quantity,
	}, nil
}

func ReconstructLine(id, skuID uuid.UUID, quantity int32) Line {
	return Line{id: id, skuID: skuID, quantity: quantity}
}

// Merge returns the line after an add-to-cart of qty more units.
func (l Line) Merge(qty int32) (Line, error) {
	if qty <= 0 {
		return Line{}, ErrInvalidQuantity
	}
	l.quantity += qty
	return l, nil
}

// QuantityDelta is the stock adjustment required to move the line to newQty:
// positive means more stock must be reserved, negative released.
func (l Line) QuantityDelta(newQty int32) int32 {
	return newQty - l.quantity
}

func (l Line) ID() uuid.UUID    { return l.id }
func (l Line) SKUID() uuid.UUID { return l.skuID }
func (l Line) Quantity() int32  { return l.quantity }
