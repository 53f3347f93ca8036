package delivery

import (
	"errors"
	"net/http"

	"github.com/atsukitanaka0922/primeselect/internal/domain"
	"github.com/atsukitanaka0922/primeselect/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type OrderHandler struct {
	useCase usecase.OrderUseCase
	log     *logrus.Logger
}

func NewOrderHandler(uc usecase.OrderUseCase, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *OrderHandler) RegisterRoutes(user, admin gin.IRouter) {
	orders := user.Group("/orders")
	{
		orders.POST("", h.CreateOrder)
		orders.GET("", h.ListMyOrders)
		orders.GET("/:id", h.GetOrder)
		orders.POST("/:id/cancel", h.CancelOrder)
	}

	adminOrders := admin.Group("/orders")
	{
		adminOrders.GET("", h.ListOrders)
		adminOrders.GET("/:id", h.GetOrder)
		adminOrders.PATCH("/:id/status", h.UpdateStatus)
		adminOrders.POST("/:id/cancel", h.ForceCancel)
	}
}

// createOrderRequest checks out the cart unless Items is given.
type createOrderRequest struct {
	Items           []usecase.OrderLineInput `json:"items"`
	ShippingAddress string                   `json:"shipping_address" binding:"required"`
	PaymentMethod   domain.PaymentMethod     `json:"payment_method" binding:"required"`
	PaymentDetails  domain.PaymentDetails    `json:"payment_details"`
}

type updateOrderStatusRequest struct {
	Status domain.OrderStatus `json:"status" binding:"required"`
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	userID := currentUser(c)
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for create order (User: %d): %v", userID, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	var (
		order *domain.Order
		err   error
	)
	if len(req.Items) > 0 {
		order, err = h.useCase.PlaceOrder(c.Request.Context(), usecase.PlaceOrderInput{
			UserID:          userID,
			Lines:           req.Items,
			ShippingAddress: req.ShippingAddress,
			PaymentMethod:   req.PaymentMethod,
			PaymentDetails:  req.PaymentDetails,
		})
	} else {
		order, err = h.useCase.Checkout(c.Request.Context(), usecase.CheckoutInput{
			UserID:          userID,
			ShippingAddress: req.ShippingAddress,
			PaymentMethod:   req.PaymentMethod,
			PaymentDetails:  req.PaymentDetails,
			Partial:         c.Query("partial") == "true",
		})
	}
	if err != nil {
		var stockErr *domain.InsufficientStockError
		if errors.As(err, &stockErr) {
			h.log.Warnf("Order for user %d rejected: %v", userID, err)
			c.JSON(http.StatusConflict, Response{Status: "Fail", Message: "Failed to create order: " + err.Error(), Data: stockErr})
			return
		}
		failWith(c, h.log, "Failed to create order", err)
		return
	}

	h.log.Infof("Order %d created successfully for user %d", order.ID, order.UserID)
	SuccessResponse(c, http.StatusCreated, "Order created successfully", order)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.useCase.GetOrder(c.Request.Context(), id)
	if err != nil {
		failWith(c, h.log, "Failed to retrieve order", err)
		return
	}
	if !isAdmin(c) && order.UserID != currentUser(c) {
		h.log.Warnf("Authorization failed: User %d attempted to access order %d owned by user %d", currentUser(c), id, order.UserID)
		ErrorResponse(c, http.StatusForbidden, "You are not authorized to view this order")
		return
	}
	SuccessResponse(c, http.StatusOK, "Order retrieved successfully", order)
}

func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	orders, err := h.useCase.ListOrdersByUser(c.Request.Context(), currentUser(c), queryInt(c, "limit", 20), queryInt(c, "offset", 0))
	if err != nil {
		failWith(c, h.log, "Failed to list orders", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Orders retrieved successfully", orders)
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.useCase.CancelOrder(c.Request.Context(), usecase.CancelOrderInput{OrderID: id, UserID: currentUser(c)})
	if err != nil {
		failWith(c, h.log, "Failed to cancel order", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Order cancelled successfully", order)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	filter := domain.OrderFilter{
		UserID: queryInt64Ptr(c, "user_id"),
		Limit:  queryInt(c, "limit", 20),
		Offset: queryInt(c, "offset", 0),
	}
	if s := c.Query("status"); s != "" {
		status := domain.OrderStatus(s)
		filter.Status = &status
	}
	orders, err := h.useCase.ListOrders(c.Request.Context(), filter)
	if err != nil {
		failWith(c, h.log, "Failed to list orders", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Orders retrieved successfully", orders)
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	order, err := h.useCase.UpdateStatus(c.Request.Context(), id, req.Status, currentUser(c))
	if err != nil {
		failWith(c, h.log, "Failed to update order status", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Order status updated successfully", order)
}

func (h *OrderHandler) ForceCancel(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.useCase.CancelOrder(c.Request.Context(), usecase.CancelOrderInput{OrderID: id, UserID: currentUser(c), Force: true})
	if err != nil {
		failWith(c, h.log, "Failed to cancel order", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Order cancelled successfully", order)
}
