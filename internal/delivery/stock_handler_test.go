package delivery

import (
	"net/http"
	"testing"

	"github.com/atsukitanaka0922/primeselect/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newStockRouter(uc *mockStockUseCase) *gin.Engine {
	logger := quietLogger()
	router := gin.New()
	NewStockHandler(uc, logger).RegisterRoutes(router.Group("/admin", Identity(logger), RequireAdmin(logger)))
	return router
}

func TestStockRoutes(t *testing.T) {
	uc := new(mockStockUseCase)
	vid := int64(4)
	uc.On("CheckStock", mock.Anything, int64(3), &vid).
		Return(&domain.StockInfo{ProductID: 3, Quantity: 2, Status: domain.StockLow}, nil)
	uc.On("AdjustStock", mock.Anything, int64(3), (*int64)(nil), -2, "damaged").
		Return(&domain.StockLogEntry{Type: domain.StockLogOut, Quantity: 2}, nil)
	uc.On("AdjustStock", mock.Anything, int64(3), (*int64)(nil), -9, "damaged").
		Return(nil, &domain.InsufficientStockError{ProductID: 3, Requested: 9, Available: 2})
	uc.On("History", mock.Anything, int64(3), 50).Return([]domain.StockLogEntry{}, nil)
	router := newStockRouter(uc)

	assert.Equal(t, http.StatusOK, doRequest(router, http.MethodGet, "/admin/products/3/stock?variation_id=4", "", administrator).Code)
	assert.Equal(t, http.StatusOK, doRequest(router, http.MethodPost, "/admin/products/3/stock", `{"delta":-2,"reason":"damaged"}`, administrator).Code)
	assert.Equal(t, http.StatusConflict, doRequest(router, http.MethodPost, "/admin/products/3/stock", `{"delta":-9,"reason":"damaged"}`, administrator).Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(router, http.MethodPost, "/admin/products/3/stock", `{"delta":-2}`, administrator).Code)
	assert.Equal(t, http.StatusOK, doRequest(router, http.MethodGet, "/admin/products/3/stock/history", "", administrator).Code)
	assert.Equal(t, http.StatusForbidden, doRequest(router, http.MethodGet, "/admin/products/3/stock", "", customer).Code)
	uc.AssertExpectations(t)
}

func TestRequestIDIsEchoed(t *testing.T) {
	logger := quietLogger()
	router := gin.New()
	router.Use(RequestLogger(logger))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := doRequest(router, http.MethodGet, "/ping", "", map[string]string{"X-Request-ID": "req-123"})
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))

	w = doRequest(router, http.MethodGet, "/ping", "", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
