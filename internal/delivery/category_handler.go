package delivery

import (
	"net/http"

	"github.com/atsukitanaka0922/primeselect/internal/domain"
	"github.com/atsukitanaka0922/primeselect/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CategoryHandler struct {
	useCase usecase.CategoryUseCase
	log     *logrus.Logger
}

func NewCategoryHandler(uc usecase.CategoryUseCase, logger *logrus.Logger) *CategoryHandler {
	return &CategoryHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *CategoryHandler) RegisterRoutes(public, admin gin.IRouter) {
	public.GET("/categories", h.ListCategories)

	categories := admin.Group("/categories")
	{
		categories.POST("", h.CreateCategory)
		categories.GET("/:id", h.GetCategory)
		categories.PUT("/:id", h.UpdateCategory)
		categories.DELETE("/:id", h.DeleteCategory)
	}
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var category domain.Category
	if err := c.ShouldBindJSON(&category); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	created, err := h.useCase.CreateCategory(c.Request.Context(), &category)
	if err != nil {
		failWith(c, h.log, "Failed to create category", err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Category created successfully", created)
}

func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	category, err := h.useCase.GetCategory(c.Request.Context(), id)
	if err != nil {
		failWith(c, h.log, "Failed to retrieve category", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Category retrieved successfully", category)
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var category domain.Category
	if err := c.ShouldBindJSON(&category); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	category.ID = id
	updated, err := h.useCase.UpdateCategory(c.Request.Context(), &category)
	if err != nil {
		failWith(c, h.log, "Failed to update category", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Category updated successfully", updated)
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.useCase.DeleteCategory(c.Request.Context(), id); err != nil {
		failWith(c, h.log, "Failed to delete category", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Category deleted successfully", nil)
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.useCase.ListCategories(c.Request.Context())
	if err != nil {
		failWith(c, h.log, "Failed to list categories", err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Categories retrieved successfully", categories)
}
