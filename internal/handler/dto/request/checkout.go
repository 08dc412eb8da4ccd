package request

import (
	"strings"

	"cart-reservation-service/internal/usecase/commands"
)

type ShippingAddressRequest struct {
	Line1      string `json:"line1" binding:"required"`
	Line2      string `json:"line2"`
	City       string `json:"city" binding:"required"`
	PostalCode string `json:"postal_code" binding:"required"`
	Country    string `json:"country" binding:"required"`
}

// ConfirmCheckoutRequest is the payment gateway webhook payload. The session
// key travels in the body because the gateway, not the shopper, makes this
// call.
type ConfirmCheckoutRequest struct {
	PaymentReference string                 `json:"payment_reference" binding:"required"`
	SessionKey       string                 `json:"session_key" binding:"required"`
	Email            string                 `json:"email" binding:"required,email"`
	Name             string                 `json:"name" binding:"required"`
	Shipping         ShippingAddressRequest `json:"shipping" binding:"required"`
	AmountCents      int64                  `json:"amount_cents" binding:"gte=0"`
}

func (r ConfirmCheckoutRequest) ToConfirmation() commands.PaymentConfirmation {
	return commands.PaymentConfirmation{
		PaymentReference: strings.TrimSpace(r.PaymentReference),
		SessionKey:       r.SessionKey,
		Email:            strings.TrimSpace(r.Email),
		Name:             strings.TrimSpace(r.Name),
		ShippingLine1:    r.Shipping.Line1,
		ShippingLine2:    r.Shipping.Line2,
		ShippingCity:     r.Shipping.City,
		ShippingPostal:   r.Shipping.PostalCode,
		ShippingCountry:  r.Shipping.Country,
		AmountCents:      r.AmountCents,
	}
}
