package api

import (
	"errors"
	"net/http"

	reqdto "cart-reservation-service/internal/handler/dto/request"
	resdto "cart-reservation-service/internal/handler/dto/response"
	"cart-reservation-service/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	checkoutCommands commands.CheckoutCommands
}

func NewCheckoutHandler(checkoutCommands commands.CheckoutCommands) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutCommands: checkoutCommands,
	}
}

// @Summary Confirm checkout
// @Description Payment gateway webhook; finalizes the cart into an order exactly once per payment reference
// @Tags checkout
// @Accept json
// @Produce json
// @Param request body reqdto.ConfirmCheckoutRequest true "Payment confirmation"
// @Success 200 {object} resdto.OrderResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /checkout/confirm [post]
func (h *CheckoutHandler) Confirm(c *gin.Context) {
	var req reqdto.ConfirmCheckoutRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.checkoutCommands.Finalize(c.Request.Context(), req.ToConfirmation())
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrCartNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Checkout session expired",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromOrderView(result.Order))
}
