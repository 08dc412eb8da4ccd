package response

import (
	"time"

	"cart-reservation-service/internal/usecase/queries"

	"github.com/google/uuid"
)

type CartLineResponse struct {
	ID             uuid.UUID `json:"id"`
	SKUID          uuid.UUID `json:"skuId"`
	ProductName    string    `json:"productName"`
	Variant        string    `json:"variant"`
	Size           string    `json:"size"`
	PriceCents     int32     `json:"priceCents"`
	Quantity       int32     `json:"quantity"`
	LineTotalCents int64     `json:"lineTotalCents"`
}

type CartResponse struct {
	ID            uuid.UUID          `json:"id"`
	ExpiresAt     time.Time          `json:"expiresAt"`
	Lines         []CartLineResponse `json:"lines"`
	SubtotalCents int64              `json:"subtotalCents"`
}

func FromCartView(rm *queries.CartView) *CartResponse {
	lines := make([]CartLineResponse, len(rm.Lines))
	for i, l := range rm.Lines {
		lines[i] = CartLineResponse{
			ID:             l.ID,
			SKUID:          l.SKUID,
			ProductName:    l.ProductName,
			Variant:        l.Variant,
			Size:           l.Size,
			PriceCents:     l.PriceCents,
			Quantity:       l.Quantity,
			LineTotalCents: l.LineTotalCents,
		}
	}
	return &CartResponse{
		ID:            rm.ID,
		ExpiresAt:     rm.ExpiresAt,
		Lines:         lines,
		SubtotalCents: rm.SubtotalCents,
	}
}
