package response

import (
	"time"

	"cart-reservation-service/internal/usecase/queries"

	"github.com/google/uuid"
)

type SKUResponse struct {
	ID                uuid.UUID `json:"id"`
	ProductName       string    `json:"productName"`
	Variant           string    `json:"variant"`
	Size              string    `json:"size"`
	PriceCents        int32     `json:"priceCents"`
	AvailableQuantity int32     `json:"availableQuantity"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func FromSKUView(rm *queries.SKUView) *SKUResponse {
	return &SKUResponse{
		ID:                rm.ID,
		ProductName:       rm.ProductName,
		Variant:           rm.Variant,
		Size:              rm.Size,
		PriceCents:        rm.PriceCents,
		AvailableQuantity: rm.AvailableQuantity,
		UpdatedAt:         rm.UpdatedAt,
	}
}
