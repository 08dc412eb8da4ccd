package api

import (
	"errors"
	"net/http"

	reqdto "cart-reservation-service/internal/handler/dto/request"
	resdto "cart-reservation-service/internal/handler/dto/response"
	"cart-reservation-service/internal/handler/middleware"
	"cart-reservation-service/internal/usecase/commands"
	"cart-reservation-service/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CartHandler struct {
	cartCommands commands.CartCommands
	cartQueries  queries.CartQueries
}

func NewCartHandler(cartCommands commands.CartCommands, cartQueries queries.CartQueries) *CartHandler {
	return &CartHandler{
		cartCommands: cartCommands,
		cartQueries:  cartQueries,
	}
}

// @Summary Add item to cart
// @Description Add a quantity of a SKU to the session's cart, reserving stock
// @Tags cart
// @Accept json
// @Produce json
// @Param X-Session-Key header string true "Session key"
// @Param request body reqdto.AddItemRequest true "Item to add"
// @Success 200 {object} resdto.CartResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	sessionKey, ok := middleware.GetSessionKey(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.AddItemRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	view, err := h.cartCommands.AddItem(c.Request.Context(), sessionKey, req.SKUID, req.Quantity)
	if err != nil {
		h.renderCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromCartView(view))
}

// @Summary Change line quantity
// @Description Set the quantity of a cart line; zero removes the line
// @Tags cart
// @Accept json
// @Produce json
// @Param X-Session-Key header string true "Session key"
// @Param id path string true "Cart line ID"
// @Param request body reqdto.ChangeQuantityRequest true "New quantity"
// @Success 200 {object} resdto.CartResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /cart/items/{id} [patch]
func (h *CartHandler) ChangeQuantity(c *gin.Context) {
	sessionKey, ok := middleware.GetSessionKey(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	lineID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid cart line ID format",
		})
		return
	}

	var req reqdto.ChangeQuantityRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	view, err := h.cartCommands.ChangeQuantity(c.Request.Context(), sessionKey, lineID, req.Quantity)
	if err != nil {
		h.renderCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromCartView(view))
}

// @Summary Remove cart line
// @Description Remove a line from the cart, releasing its reserved stock
// @Tags cart
// @Produce json
// @Param X-Session-Key header string true "Session key"
// @Param id path string true "Cart line ID"
// @Success 200 {object} resdto.CartResponse
// @Failure 400 {object} map[string]string
// @Router /cart/items/{id} [delete]
func (h *CartHandler) RemoveLine(c *gin.Context) {
	sessionKey, ok := middleware.GetSessionKey(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	lineID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid cart line ID format",
		})
		return
	}

	view, err := h.cartCommands.RemoveLine(c.Request.Context(), sessionKey, lineID)
	if err != nil {
		h.renderCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromCartView(view))
}

// @Summary Get cart
// @Description Get the session's current cart with lines and subtotal
// @Tags cart
// @Produce json
// @Param X-Session-Key header string true "Session key"
// @Success 200 {object} resdto.CartResponse
// @Failure 404 {object} map[string]string
// @Router /cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	sessionKey, ok := middleware.GetSessionKey(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	view, err := h.cartQueries.GetBySession(c.Request.Context(), sessionKey)
	if err != nil {
		if errors.Is(err, queries.ErrCartNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Cart not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromCartView(view))
}

func (h *CartHandler) renderCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Quantity must be positive",
		})
	case errors.Is(err, commands.ErrSKUNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "SKU not found",
		})
	case errors.Is(err, commands.ErrCartNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Cart not found",
		})
	case errors.Is(err, commands.ErrLineNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Cart line not found",
		})
	case errors.Is(err, commands.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Insufficient stock",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
