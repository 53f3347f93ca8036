package delivery

import (
	"net/http"

	"github.com/atsukitanaka0922/primeselect/internal/domain"
	"github.com/atsukitanaka0922/primeselect/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ProductHandler struct {
	useCase usecase.ProductUseCase
	log     *logrus.Logger
}

func NewProductHandler(uc usecase.ProductUseCase, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *ProductHandler) RegisterRoutes(public, admin gin.IRouter) {
	products := public.Group("/products")
	{
		products.GET("", h.ListProducts)
		products.GET("/:id", h.GetProduct)
	}

	adminProducts := admin.Group("/products")
	{
		adminProducts.POST("", h.CreateProduct)
		adminProducts.PATCH("/:id", h.UpdateProduct)
		adminProducts.DELETE("/:id", h.DeleteProduct)
		adminProducts.GET("/:id/variations", h.ListVariations)
		adminProducts.POST("/:id/variations", h.AddVariation)
	}
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var product domain.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		h.log.Errorf("Failed to bind JSON for create product: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	created, err := h.useCase.CreateProduct(c.Request.Context(), &product)
	if err != nil {
		failWith(c, h.log, "Failed to create product", err)
		return
	}

	h.log.Infof("Product created successfully: ID %d, Name %s", created.ID, created.Name)
	SuccessResponse(c, http.StatusCreated, "Product created successfully", created)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	product, err := h.useCase.GetProduct(c.Request.Context(), id)
	if err != nil {
		failWith(c, h.log, "Failed to retrieve product", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Product retrieved successfully", product)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var update domain.ProductUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if update.IsEmpty() {
		ErrorResponse(c, http.StatusBadRequest, "No fields provided for update")
		return
	}

	product, err := h.useCase.UpdateProduct(c.Request.Context(), id, update)
	if err != nil {
		failWith(c, h.log, "Failed to update product", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Product updated successfully", product)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.useCase.DeleteProduct(c.Request.Context(), id); err != nil {
		failWith(c, h.log, "Failed to delete product", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Product deleted successfully", nil)
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	filter := domain.ProductFilter{
		CategoryID: queryInt64Ptr(c, "category_id"),
		Keyword:    c.Query("q"),
		Limit:      queryInt(c, "limit", 20),
		Offset:     queryInt(c, "offset", 0),
	}
	products, err := h.useCase.ListProducts(c.Request.Context(), filter)
	if err != nil {
		failWith(c, h.log, "Failed to list products", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Products retrieved successfully", products)
}

func (h *ProductHandler) AddVariation(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var variation domain.ProductVariation
	if err := c.ShouldBindJSON(&variation); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	variation.ProductID = productID

	created, err := h.useCase.AddVariation(c.Request.Context(), &variation)
	if err != nil {
		failWith(c, h.log, "Failed to add variation", err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Variation added successfully", created)
}

func (h *ProductHandler) ListVariations(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	variations, err := h.useCase.ListVariations(c.Request.Context(), productID)
	if err != nil {
		failWith(c, h.log, "Failed to list variations", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Variations retrieved successfully", variations)
}
