package delivery

import (
	"net/http"

	"github.com/atsukitanaka0922/primeselect/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type StockHandler struct {
	useCase usecase.StockUseCase
	log     *logrus.Logger
}

func NewStockHandler(uc usecase.StockUseCase, logger *logrus.Logger) *StockHandler {
	return &StockHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *StockHandler) RegisterRoutes(admin gin.IRouter) {
	stock := admin.Group("/products/:id/stock")
	{
		stock.GET("", h.CheckStock)
		stock.POST("", h.AdjustStock)
		stock.GET("/history", h.History)
	}
}

type adjustStockRequest struct {
	VariationID *int64 `json:"variation_id"`
	Delta       int    `json:"delta"`
	Reason      string `json:"reason" binding:"required"`
}

func (h *StockHandler) CheckStock(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	info, err := h.useCase.CheckStock(c.Request.Context(), productID, queryInt64Ptr(c, "variation_id"))
	if err != nil {
		failWith(c, h.log, "Failed to check stock", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Stock retrieved successfully", info)
}

func (h *StockHandler) AdjustStock(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req adjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	entry, err := h.useCase.AdjustStock(c.Request.Context(), productID, req.VariationID, req.Delta, req.Reason)
	if err != nil {
		failWith(c, h.log, "Failed to adjust stock", err)
		return
	}
	h.log.Infof("Stock of product %d adjusted by %d by user %d", productID, req.Delta, currentUser(c))
	SuccessResponse(c, http.StatusOK, "Stock adjusted successfully", entry)
}

func (h *StockHandler) History(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	entries, err := h.useCase.History(c.Request.Context(), productID, queryInt(c, "limit", 50))
	if err != nil {
		failWith(c, h.log, "Failed to load stock history", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Stock history retrieved successfully", entries)
}
