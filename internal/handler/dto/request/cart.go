package request

import (
	"github.com/google/uuid"
)

type AddItemRequest struct {
	SKUID    uuid.UUID `json:"sku_id" binding:"required"`
	Quantity int32     `json:"quantity" binding:"required,gt=0"`
}

type ChangeQuantityRequest struct {
	// Zero and negative values remove the line.
	Quantity int32 `json:"quantity"`
}
