package queries

import (
	"context"
	"time"

	"cart-reservation-service/internal/infra"
	"cart-reservation-service/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrOrderNotFound = errs.New("order not found")

type OrderItemView struct {
	ID          uuid.UUID `json:"id"`
	SKUID       uuid.UUID `json:"sku_id"`
	ProductName string    `json:"product_name"`
	Variant     string    `json:"variant"`
	Size        string    `json:"size"`
	PriceCents  int32     `json:"price_cents"`
	Quantity    int32     `json:"quantity"`
}

type OrderView struct {
	ID               uuid.UUID       `json:"id"`
	PaymentReference string          `json:"payment_reference"`
	Status           string          `json:"status"`
	Email            string          `json:"email"`
	ShippingName     string          `json:"shipping_name"`
	ShippingLine1    string          `json:"shipping_line1"`
	ShippingLine2    string          `json:"shipping_line2"`
	ShippingCity     string          `json:"shipping_city"`
	ShippingPostal   string          `json:"shipping_postal_code"`
	ShippingCountry  string          `json:"shipping_country"`
	SubtotalCents    int64           `json:"subtotal_cents"`
	TotalCents       int64           `json:"total_cents"`
	Items            []OrderItemView `json:"items"`
	CreatedAt        time.Time       `json:"created_at"`
}

type OrderReadStore interface {
	FindViewByID(ctx context.Context, id uuid.UUID) (*OrderView, error)
	FindViewByPaymentReference(ctx context.Context, paymentReference string) (*OrderView, error)
}

type OrderQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*OrderView, error)
	GetByPaymentReference(ctx context.Context, paymentReference string) (*OrderView, error)
}

type orderQueriesImpl struct {
	store OrderReadStore
}

func NewOrderQueries(store OrderReadStore) OrderQueries {
	return &orderQueriesImpl{store: store}
}

func (q *orderQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*OrderView, error) {
	view, err := q.store.FindViewByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, errs.Wrap(err, "failed to find order by id")
	}
	return view, nil
}

func (q *orderQueriesImpl) GetByPaymentReference(ctx context.Context, paymentReference string) (*OrderView, error) {
	view, err := q.store.FindViewByPaymentReference(ctx, paymentReference)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, errs.Wrap(err, "failed to find order by payment reference")
	}
	return view, nil
}
