package delivery

import (
	"context"
	"io"

	"github.com/atsukitanaka0922/primeselect/internal/domain"
	"github.com/atsukitanaka0922/primeselect/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type mockOrderUseCase struct{ mock.Mock }

var _ usecase.OrderUseCase = (*mockOrderUseCase)(nil)

func (m *mockOrderUseCase) Checkout(ctx context.Context, in usecase.CheckoutInput) (*domain.Order, error) {
	args := m.Called(ctx, in)
	o, _ := args.Get(0).(*domain.Order)
	return o, args.Error(1)
}

func (m *mockOrderUseCase) PlaceOrder(ctx context.Context, in usecase.PlaceOrderInput) (*domain.Order, error) {
	args := m.Called(ctx, in)
	o, _ := args.Get(0).(*domain.Order)
	return o, args.Error(1)
}

func (m *mockOrderUseCase) CancelOrder(ctx context.Context, in usecase.CancelOrderInput) (*domain.Order, error) {
	args := m.Called(ctx, in)
	o, _ := args.Get(0).(*domain.Order)
	return o, args.Error(1)
}

func (m *mockOrderUseCase) UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus, changedBy int64) (*domain.Order, error) {
	args := m.Called(ctx, orderID, status, changedBy)
	o, _ := args.Get(0).(*domain.Order)
	return o, args.Error(1)
}

func (m *mockOrderUseCase) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*domain.Order)
	return o, args.Error(1)
}

func (m *mockOrderUseCase) ListOrdersByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Order, error) {
	args := m.Called(ctx, userID, limit, offset)
	o, _ := args.Get(0).([]domain.Order)
	return o, args.Error(1)
}

func (m *mockOrderUseCase) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	args := m.Called(ctx, filter)
	o, _ := args.Get(0).([]domain.Order)
	return o, args.Error(1)
}

type mockCartUseCase struct{ mock.Mock }

var _ usecase.CartUseCase = (*mockCartUseCase)(nil)

func (m *mockCartUseCase) Lines(ctx context.Context, userID int64) ([]domain.CartLine, error) {
	args := m.Called(ctx, userID)
	l, _ := args.Get(0).([]domain.CartLine)
	return l, args.Error(1)
}

func (m *mockCartUseCase) Snapshot(ctx context.Context, userID int64) (*domain.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(*domain.Cart)
	return c, args.Error(1)
}

func (m *mockCartUseCase) AddItem(ctx context.Context, userID, productID int64, variationID *int64, quantity int) (*domain.CartItem, error) {
	args := m.Called(ctx, userID, productID, variationID, quantity)
	i, _ := args.Get(0).(*domain.CartItem)
	return i, args.Error(1)
}

func (m *mockCartUseCase) UpdateQuantity(ctx context.Context, userID, itemID int64, quantity int) error {
	return m.Called(ctx, userID, itemID, quantity).Error(0)
}

func (m *mockCartUseCase) RemoveItem(ctx context.Context, userID, itemID int64) error {
	return m.Called(ctx, userID, itemID).Error(0)
}

func (m *mockCartUseCase) RemoveItems(ctx context.Context, userID int64, itemIDs []int64) error {
	return m.Called(ctx, userID, itemIDs).Error(0)
}

func (m *mockCartUseCase) Clear(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

type mockStockUseCase struct{ mock.Mock }

var _ usecase.StockUseCase = (*mockStockUseCase)(nil)

func (m *mockStockUseCase) CheckStock(ctx context.Context, productID int64, variationID *int64) (*domain.StockInfo, error) {
	args := m.Called(ctx, productID, variationID)
	i, _ := args.Get(0).(*domain.StockInfo)
	return i, args.Error(1)
}

func (m *mockStockUseCase) ApplyDelta(ctx context.Context, productID int64, variationID *int64, delta int, reason string) (*domain.StockLogEntry, error) {
	args := m.Called(ctx, productID, variationID, delta, reason)
	e, _ := args.Get(0).(*domain.StockLogEntry)
	return e, args.Error(1)
}

func (m *mockStockUseCase) AdjustStock(ctx context.Context, productID int64, variationID *int64, delta int, reason string) (*domain.StockLogEntry, error) {
	args := m.Called(ctx, productID, variationID, delta, reason)
	e, _ := args.Get(0).(*domain.StockLogEntry)
	return e, args.Error(1)
}

func (m *mockStockUseCase) History(ctx context.Context, productID int64, limit int) ([]domain.StockLogEntry, error) {
	args := m.Called(ctx, productID, limit)
	e, _ := args.Get(0).([]domain.StockLogEntry)
	return e, args.Error(1)
}
