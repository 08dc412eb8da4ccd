package queries

import (
	"context"
	"time"

	"cart-reservation-service/internal/infra"
	"cart-reservation-service/internal/pkg/clock"
	"cart-reservation-service/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrCartNotFound = errs.New("cart not found")

// Read models (DTO for read side)
type CartLineView struct {
	ID             uuid.UUID `json:"id"`
	SKUID          uuid.UUID `json:"sku_id"`
	ProductName    string    `json:"product_name"`
	Variant        string    `json:"variant"`
	Size           string    `json:"size"`
	PriceCents     int32     `json:"price_cents"`
	Quantity       int32     `json:"quantity"`
	LineTotalCents int64     `json:"line_total_cents"`
}

type CartView struct {
	ID            uuid.UUID      `json:"id"`
	SessionKey    string         `json:"session_key"`
	ExpiresAt     time.Time      `json:"expires_at"`
	Lines         []CartLineView `json:"lines"`
	SubtotalCents int64          `json:"subtotal_cents"`
}

type CartReadStore interface {
	FindViewBySession(ctx context.Context, sessionKey string, now time.Time) (*CartView, error)
}

type CartQueries interface {
	GetBySession(ctx context.Context, sessionKey string) (*CartView, error)
}

type cartQueriesImpl struct {
	store CartReadStore
	clock clock.Clock
}

func NewCartQueries(store CartReadStore, clock clock.Clock) CartQueries {
	return &cartQueriesImpl{store: store, clock: clock}
}

// GetBySession treats an expired-but-unswept cart as gone: its reservation no
// longer counts, so it must not be shown either.
func (q *cartQueriesImpl) GetBySession(ctx context.Context, sessionKey string) (*CartView, error) {
	view, err := q.store.FindViewBySession(ctx, sessionKey, q.clock.Now())
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, errs.Wrap(err, "failed to find cart by session")
	}
	return view, nil
}
