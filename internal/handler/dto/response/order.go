package response

import (
	"time"

	"cart-reservation-service/internal/usecase/queries"

	"github.com/google/uuid"
)

type OrderItemResponse struct {
	ID          uuid.UUID `json:"id"`
	SKUID       uuid.UUID `json:"skuId"`
	ProductName string    `json:"productName"`
	Variant     string    `json:"variant"`
	Size        string    `json:"size"`
	PriceCents  int32     `json:"priceCents"`
	Quantity    int32     `json:"quantity"`
}

type OrderResponse struct {
	ID               uuid.UUID           `json:"id"`
	PaymentReference string              `json:"paymentReference"`
	Status           string              `json:"status"`
	Email            string              `json:"email"`
	ShippingName     string              `json:"shippingName"`
	ShippingLine1    string              `json:"shippingLine1"`
	ShippingLine2    string              `json:"shippingLine2,omitempty"`
	ShippingCity     string              `json:"shippingCity"`
	ShippingPostal   string              `json:"shippingPostalCode"`
	ShippingCountry  string              `json:"shippingCountry"`
	SubtotalCents    int64               `json:"subtotalCents"`
	TotalCents       int64               `json:"totalCents"`
	Items            []OrderItemResponse `json:"items"`
	CreatedAt        time.Time           `json:"createdAt"`
}

func FromOrderView(rm *queries.OrderView) *OrderResponse {
	items := make([]OrderItemResponse, len(rm.Items))
	for i, it := range rm.Items {
		items[i] = OrderItemResponse{
			ID:          it.ID,
			SKUID:       it.SKUID,
			ProductName: it.ProductName,
			Variant:     it.Variant,
			Size:        it.Size,
			PriceCents:  it.PriceCents,
			Quantity:    it.Quantity,
		}
	}
	return &OrderResponse{
		ID:               rm.ID,
		PaymentReference: rm.PaymentReference,
		Status:           rm.Status,
		Email:            rm.Email,
		ShippingName:     rm.ShippingName,
		ShippingLine1:    rm.ShippingLine1,
		ShippingLine2:    rm.ShippingLine2,
		ShippingCity:     rm.ShippingCity,
		ShippingPostal:   rm.ShippingPostal,
		ShippingCountry:  rm.ShippingCountry,
		SubtotalCents:    rm.SubtotalCents,
		TotalCents:       rm.TotalCents,
		Items:            items,
		CreatedAt:        rm.CreatedAt,
	}
}
