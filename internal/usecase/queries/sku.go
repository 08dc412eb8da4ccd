package queries

import (
	"context"
	"time"

	"cart-reservation-service/internal/infra"
	"cart-reservation-service/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrSKUNotFound = errs.New("sku not found")

type SKUView struct {
	ID                uuid.UUID `json:"id"`
	ProductName       string    `json:"product_name"`
	Variant           string    `json:"variant"`
	Size              string    `json:"size"`
	PriceCents        int32     `json:"price_cents"`
	AvailableQuantity int32     `json:"available_quantity"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type SKUReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SKUView, error)
}

type StockQueries interface {
	GetSKU(ctx context.Context, id uuid.UUID) (*SKUView, error)
}

type stockQueriesImpl struct {
	store SKUReadStore
}

func NewStockQueries(store SKUReadStore) StockQueries {
	return &stockQueriesImpl{store: store}
}

func (q *stockQueriesImpl) GetSKU(ctx context.Context, id uuid.UUID) (*SKUView, error) {
	view, err := q.store.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrSKUNotFound
		}
		return nil, errs.Wrap(err, "failed to find sku by id")
	}
	return view, nil
}
