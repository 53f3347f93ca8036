package delivery

import (
	"net/http"
	"time"

	"github.com/atsukitanaka0922/primeselect/internal/domain"
	"github.com/atsukitanaka0922/primeselect/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type PreorderHandler struct {
	useCase usecase.PreorderUseCase
	log     *logrus.Logger
}

func NewPreorderHandler(uc usecase.PreorderUseCase, logger *logrus.Logger) *PreorderHandler {
	return &PreorderHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *PreorderHandler) RegisterRoutes(user, admin gin.IRouter) {
	preorders := user.Group("/preorders")
	{
		preorders.GET("", h.ListMyPreorders)
		preorders.POST("/:id/cancel", h.CancelPreorder)
	}

	adminPreorders := admin.Group("/preorders")
	{
		adminPreorders.GET("", h.ListPreorders)
		adminPreorders.GET("/:id", h.GetPreorder)
		adminPreorders.PATCH("/:id/status", h.UpdateStatus)
		adminPreorders.PATCH("/:id/estimated-delivery", h.UpdateEstimatedDelivery)
	}
}

type updatePreorderStatusRequest struct {
	Status domain.PreorderStatus `json:"status" binding:"required"`
}

type updateDeliveryRequest struct {
	EstimatedDelivery string `json:"estimated_delivery" binding:"required"`
}

func (h *PreorderHandler) ListMyPreorders(c *gin.Context) {
	preorders, err := h.useCase.ListByUser(c.Request.Context(), currentUser(c), queryInt(c, "limit", 20), queryInt(c, "offset", 0))
	if err != nil {
		failWith(c, h.log, "Failed to list preorders", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Preorders retrieved successfully", preorders)
}

func (h *PreorderHandler) CancelPreorder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	p, err := h.useCase.Cancel(c.Request.Context(), id, currentUser(c))
	if err != nil {
		failWith(c, h.log, "Failed to cancel preorder", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Preorder cancelled successfully", p)
}

func (h *PreorderHandler) ListPreorders(c *gin.Context) {
	filter := domain.PreorderFilter{
		ProductID: queryInt64Ptr(c, "product_id"),
		UserID:    queryInt64Ptr(c, "user_id"),
		Limit:     queryInt(c, "limit", 20),
		Offset:    queryInt(c, "offset", 0),
	}
	if s := c.Query("status"); s != "" {
		status := domain.PreorderStatus(s)
		filter.Status = &status
	}
	preorders, err := h.useCase.List(c.Request.Context(), filter)
	if err != nil {
		failWith(c, h.log, "Failed to list preorders", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Preorders retrieved successfully", preorders)
}

func (h *PreorderHandler) GetPreorder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	p, err := h.useCase.Get(c.Request.Context(), id)
	if err != nil {
		failWith(c, h.log, "Failed to retrieve preorder", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Preorder retrieved successfully", p)
}

func (h *PreorderHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req updatePreorderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	p, err := h.useCase.UpdateStatus(c.Request.Context(), id, req.Status, currentUser(c))
	if err != nil {
		failWith(c, h.log, "Failed to update preorder status", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Preorder status updated successfully", p)
}

func (h *PreorderHandler) UpdateEstimatedDelivery(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req updateDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	date, err := time.Parse("2006-01-02", req.EstimatedDelivery)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "estimated_delivery must be YYYY-MM-DD")
		return
	}
	p, err := h.useCase.UpdateEstimatedDelivery(c.Request.Context(), id, date)
	if err != nil {
		failWith(c, h.log, "Failed to update estimated delivery", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Estimated delivery updated successfully", p)
}
