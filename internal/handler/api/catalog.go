package api

import (
	"errors"
	"net/http"

	resdto "cart-reservation-service/internal/handler/dto/response"
	"cart-reservation-service/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CatalogHandler struct {
	orderQueries queries.OrderQueries
	stockQueries queries.StockQueries
}

func NewCatalogHandler(orderQueries queries.OrderQueries, stockQueries queries.StockQueries) *CatalogHandler {
	return &CatalogHandler{
		orderQueries: orderQueries,
		stockQueries: stockQueries,
	}
}

// @Summary Get order
// @Description Get order by ID
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} resdto.OrderResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /orders/{id} [get]
func (h *CatalogHandler) GetOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order ID format",
		})
		return
	}

	view, err := h.orderQueries.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, queries.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Order not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromOrderView(view))
}

// @Summary Get SKU
// @Description Get SKU details with currently available quantity
// @Tags skus
// @Produce json
// @Param id path string true "SKU ID"
// @Success 200 {object} resdto.SKUResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /skus/{id} [get]
func (h *CatalogHandler) GetSKU(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid SKU ID format",
		})
		return
	}

	view, err := h.stockQueries.GetSKU(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, queries.ErrSKUNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "SKU not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromSKUView(view))
}
