package grpc

import (
	"context"
	"errors"

	"github.com/atsukitanaka0922/primeselect/internal/domain"
	"github.com/atsukitanaka0922/primeselect/internal/usecase"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

var _ AdminServiceServer = (*AdminHandler)(nil)

type AdminHandler struct {
	stockUseCase    usecase.StockUseCase
	orderUseCase    usecase.OrderUseCase
	preorderUseCase usecase.PreorderUseCase
	log             *logrus.Logger
}

func NewAdminHandler(suc usecase.StockUseCase, ouc usecase.OrderUseCase, puc usecase.PreorderUseCase, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{
		stockUseCase:    suc,
		orderUseCase:    ouc,
		preorderUseCase: puc,
		log:             logger,
	}
}

func (h *AdminHandler) CheckStock(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	productID, ok := intField(req, "product_id")
	if !ok || productID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "product_id is required")
	}
	variationID := optionalIntField(req, "variation_id")
	h.log.Infof("gRPC Handler: Received CheckStock request: ProductID=%d", productID)

	info, err := h.stockUseCase.CheckStock(ctx, productID, variationID)
	if err != nil {
		return nil, h.mapDomainErrorToGrpcStatus(err)
	}
	return structpb.NewStruct(map[string]interface{}{
		"product_id":   info.ProductID,
		"quantity":     info.Quantity,
		"is_available": info.IsAvailable,
		"status":       string(info.Status),
	})
}

func (h *AdminHandler) AdjustStock(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	productID, ok := intField(req, "product_id")
	if !ok || productID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "product_id is required")
	}
	delta, ok := intField(req, "delta")
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "delta is required")
	}
	reason := req.GetFields()["reason"].GetStringValue()
	h.log.Infof("gRPC Handler: Received AdjustStock request: ProductID=%d, Delta=%d", productID, delta)

	entry, err := h.stockUseCase.AdjustStock(ctx, productID, optionalIntField(req, "variation_id"), int(delta), reason)
	if err != nil {
		return nil, h.mapDomainErrorToGrpcStatus(err)
	}
	info, err := h.stockUseCase.CheckStock(ctx, productID, entry.VariationID)
	if err != nil {
		return nil, h.mapDomainErrorToGrpcStatus(err)
	}
	return structpb.NewStruct(map[string]interface{}{
		"log_id":   entry.ID,
		"type":     string(entry.Type),
		"quantity": info.Quantity,
	})
}

func (h *AdminHandler) UpdateOrderStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	orderID, ok := intField(req, "order_id")
	if !ok || orderID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "order_id is required")
	}
	newStatus := domain.OrderStatus(req.GetFields()["status"].GetStringValue())
	changedBy, _ := intField(req, "changed_by")
	h.log.Infof("gRPC Handler: Received UpdateOrderStatus request: OrderID=%d, Status=%s", orderID, newStatus)

	order, err := h.orderUseCase.UpdateStatus(ctx, orderID, newStatus, changedBy)
	if err != nil {
		return nil, h.mapDomainErrorToGrpcStatus(err)
	}
	return structpb.NewStruct(map[string]interface{}{
		"order_id": order.ID,
		"status":   string(order.Status),
	})
}

func (h *AdminHandler) UpdatePreorderStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	preorderID, ok := intField(req, "preorder_id")
	if !ok || preorderID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "preorder_id is required")
	}
	newStatus := domain.PreorderStatus(req.GetFields()["status"].GetStringValue())
	changedBy, _ := intField(req, "changed_by")
	h.log.Infof("gRPC Handler: Received UpdatePreorderStatus request: PreorderID=%d, Status=%s", preorderID, newStatus)

	p, err := h.preorderUseCase.UpdateStatus(ctx, preorderID, newStatus, changedBy)
	if err != nil {
		return nil, h.mapDomainErrorToGrpcStatus(err)
	}
	return structpb.NewStruct(map[string]interface{}{
		"preorder_id":        p.ID,
		"status":             string(p.Status),
		"estimated_delivery": p.EstimatedDelivery.Format("2006-01-02"),
	})
}

// intField reads a whole number. JSON numbers arrive as float64.
func intField(s *structpb.Struct, key string) (int64, bool) {
	v, ok := s.GetFields()[key]
	if !ok {
		return 0, false
	}
	n, isNum := v.GetKind().(*structpb.Value_NumberValue)
	if !isNum || n.NumberValue != float64(int64(n.NumberValue)) {
		return 0, false
	}
	return int64(n.NumberValue), true
}

func optionalIntField(s *structpb.Struct, key string) *int64 {
	if v, ok := intField(s, key); ok && v > 0 {
		return &v
	}
	return nil
}

func (h *AdminHandler) mapDomainErrorToGrpcStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrInsufficientStock), errors.Is(err, domain.ErrInvalidState):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, domain.ErrPaymentFailed):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		h.log.Errorf("gRPC Handler: Unexpected error: %+v", err)
		return status.Error(codes.Internal, "internal server error")
	}
}
