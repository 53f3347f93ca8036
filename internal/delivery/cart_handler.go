package delivery

import (
	"net/http"

	"github.com/atsukitanaka0922/primeselect/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CartHandler struct {
	useCase usecase.CartUseCase
	log     *logrus.Logger
}

func NewCartHandler(uc usecase.CartUseCase, logger *logrus.Logger) *CartHandler {
	return &CartHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *CartHandler) RegisterRoutes(user gin.IRouter) {
	cart := user.Group("/cart")
	{
		cart.GET("", h.GetCart)
		cart.POST("", h.AddItem)
		cart.DELETE("", h.Clear)
		cart.PATCH("/:itemId", h.UpdateQuantity)
		cart.DELETE("/:itemId", h.RemoveItem)
	}
}

type addCartItemRequest struct {
	ProductID   int64  `json:"product_id" binding:"required"`
	VariationID *int64 `json:"variation_id"`
	Quantity    int    `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) GetCart(c *gin.Context) {
	cart, err := h.useCase.Snapshot(c.Request.Context(), currentUser(c))
	if err != nil {
		failWith(c, h.log, "Failed to load cart", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Cart retrieved successfully", cart)
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	item, err := h.useCase.AddItem(c.Request.Context(), currentUser(c), req.ProductID, req.VariationID, req.Quantity)
	if err != nil {
		failWith(c, h.log, "Failed to add item to cart", err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Item added to cart", item)
}

func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		return
	}
	var req updateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := h.useCase.UpdateQuantity(c.Request.Context(), currentUser(c), itemID, req.Quantity); err != nil {
		failWith(c, h.log, "Failed to update cart item", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Cart updated", nil)
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		return
	}
	if err := h.useCase.RemoveItem(c.Request.Context(), currentUser(c), itemID); err != nil {
		failWith(c, h.log, "Failed to remove cart item", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Item removed from cart", nil)
}

func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.useCase.Clear(c.Request.Context(), currentUser(c)); err != nil {
		failWith(c, h.log, "Failed to clear cart", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Cart cleared", nil)
}
