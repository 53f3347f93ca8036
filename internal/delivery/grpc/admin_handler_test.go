package grpc

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/atsukitanaka0922/primeselect/internal/domain"
	"github.com/atsukitanaka0922/primeselect/internal/usecase"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

type stubStock struct {
	usecase.StockUseCase
	quantity int
}

func (s *stubStock) CheckStock(_ context.Context, productID int64, variationID *int64) (*domain.StockInfo, error) {
	if productID == 404 {
		return nil, domain.ErrNotFound
	}
	return &domain.StockInfo{
		ProductID:   productID,
		VariationID: variationID,
		Quantity:    s.quantity,
		IsAvailable: s.quantity > 0,
		Status:      domain.StockStatusFor(s.quantity),
	}, nil
}

func (s *stubStock) AdjustStock(_ context.Context, productID int64, variationID *int64, delta int, reason string) (*domain.StockLogEntry, error) {
	if reason == "" {
		return nil, domain.ErrInvalidInput
	}
	if s.quantity+delta < 0 {
		return nil, &domain.InsufficientStockError{ProductID: productID, Requested: -delta, Available: s.quantity}
	}
	s.quantity += delta
	return &domain.StockLogEntry{ID: 1, ProductID: productID, VariationID: variationID, Type: domain.StockLogTypeFor(delta)}, nil
}

type stubOrders struct {
	usecase.OrderUseCase
}

func (stubOrders) UpdateStatus(_ context.Context, orderID int64, st domain.OrderStatus, _ int64) (*domain.Order, error) {
	if st == domain.OrderProcessing {
		return nil, domain.ErrInvalidState
	}
	return &domain.Order{ID: orderID, Status: st}, nil
}

type stubPreorders struct {
	usecase.PreorderUseCase
}

func (stubPreorders) UpdateStatus(_ context.Context, id int64, st domain.PreorderStatus, _ int64) (*domain.Preorder, error) {
	return &domain.Preorder{ID: id, Status: st, EstimatedDelivery: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}, nil
}

func dialAdmin(t *testing.T, stock *stubStock) *grpc.ClientConn {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	lis := bufconn.Listen(1 << 20)
	server := grpc.NewServer()
	RegisterAdminServiceServer(server, NewAdminHandler(stock, stubOrders{}, stubPreorders{}, logger))
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func call(t *testing.T, conn *grpc.ClientConn, method string, fields map[string]interface{}) (*structpb.Struct, error) {
	t.Helper()
	req, err := structpb.NewStruct(fields)
	require.NoError(t, err)
	resp := &structpb.Struct{}
	err = conn.Invoke(context.Background(), "/"+AdminServiceName+"/"+method, req, resp)
	return resp, err
}

func TestCheckStockOverGRPC(t *testing.T) {
	conn := dialAdmin(t, &stubStock{quantity: 3})

	resp, err := call(t, conn, "CheckStock", map[string]interface{}{"product_id": 9})
	require.NoError(t, err)
	assert.Equal(t, float64(3), resp.Fields["quantity"].GetNumberValue())
	assert.Equal(t, string(domain.StockLow), resp.Fields["status"].GetStringValue())

	_, err = call(t, conn, "CheckStock", map[string]interface{}{"product_id": 404})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = call(t, conn, "CheckStock", map[string]interface{}{"product_id": 1.5})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestAdjustStockOverGRPC(t *testing.T) {
	conn := dialAdmin(t, &stubStock{quantity: 3})

	resp, err := call(t, conn, "AdjustStock", map[string]interface{}{"product_id": 9, "delta": 4, "reason": "restock"})
	require.NoError(t, err)
	assert.Equal(t, float64(7), resp.Fields["quantity"].GetNumberValue())
	assert.Equal(t, "in", resp.Fields["type"].GetStringValue())

	_, err = call(t, conn, "AdjustStock", map[string]interface{}{"product_id": 9, "delta": -10, "reason": "audit"})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	_, err = call(t, conn, "AdjustStock", map[string]interface{}{"product_id": 9, "delta": 1})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestStatusUpdatesOverGRPC(t *testing.T) {
	conn := dialAdmin(t, &stubStock{})

	resp, err := call(t, conn, "UpdateOrderStatus", map[string]interface{}{"order_id": 5, "status": "shipped", "changed_by": 1})
	require.NoError(t, err)
	assert.Equal(t, "shipped", resp.Fields["status"].GetStringValue())

	_, err = call(t, conn, "UpdateOrderStatus", map[string]interface{}{"order_id": 5, "status": "processing"})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	resp, err = call(t, conn, "UpdatePreorderStatus", map[string]interface{}{"preorder_id": 8, "status": "confirmed"})
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", resp.Fields["estimated_delivery"].GetStringValue())
}
