package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/atsukitanaka0922/primeselect/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// SystemUserID marks changes made by the service itself, such as the
// cancellation that follows a failed payment.
const SystemUserID int64 = 0

type OrderLineInput struct {
	ProductID   int64  `json:"product_id"`
	VariationID *int64 `json:"variation_id,omitempty"`
	Quantity    int    `json:"quantity"`
	CartItemID  *int64 `json:"-"`
}

type PlaceOrderInput struct {
	UserID          int64
	Lines           []OrderLineInput
	ShippingAddress string
	PaymentMethod   domain.PaymentMethod
	PaymentDetails  domain.PaymentDetails
}

type CheckoutInput struct {
	UserID          int64
	ShippingAddress string
	PaymentMethod   domain.PaymentMethod
	PaymentDetails  domain.PaymentDetails
	// Partial drops cart lines that are short on stock instead of failing.
	Partial bool
}

type CancelOrderInput struct {
	OrderID int64
	UserID  int64
	// Force skips the owner and status checks. Used by admins and by the
	// payment failure path.
	Force bool
}

type OrderUseCase interface {
	Checkout(ctx context.Context, in CheckoutInput) (*domain.Order, error)
	PlaceOrder(ctx context.Context, in PlaceOrderInput) (*domain.Order, error)
	CancelOrder(ctx context.Context, in CancelOrderInput) (*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus, changedBy int64) (*domain.Order, error)
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	ListOrdersByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Order, error)
	ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
}

var _ OrderUseCase = (*orderUseCase)(nil)

type orderUseCase struct {
	orderRepo   domain.OrderRepository
	paymentRepo domain.PaymentRepository
	productRepo domain.ProductRepository
	stock       StockUseCase
	preorders   PreorderUseCase
	cart        CartUseCase
	gateway     domain.PaymentGateway
	uow         domain.UnitOfWork
	log         *logrus.Logger
}

func NewOrderUseCase(
	orderRepo domain.OrderRepository,
	paymentRepo domain.PaymentRepository,
	productRepo domain.ProductRepository,
	stock StockUseCase,
	preorders PreorderUseCase,
	cart CartUseCase,
	gateway domain.PaymentGateway,
	uow domain.UnitOfWork,
	logger *logrus.Logger,
) OrderUseCase {
	return &orderUseCase{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		productRepo: productRepo,
		stock:       stock,
		preorders:   preorders,
		cart:        cart,
		gateway:     gateway,
		uow:         uow,
		log:         logger,
	}
}

// resolvedLine is an input line with the catalog data it was priced from.
type resolvedLine struct {
	OrderLineInput
	unitPrice  decimal.Decimal
	isPreorder bool
	leadTime   string
}

type skuKey struct {
	productID   int64
	variationID int64
}

func keyOf(productID int64, variationID *int64) skuKey {
	k := skuKey{productID: productID}
	if variationID != nil {
		k.variationID = *variationID
	}
	return k
}

func (uc *orderUseCase) Checkout(ctx context.Context, in CheckoutInput) (*domain.Order, error) {
	lines, err := uc.cart.Lines(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	inputs := make([]OrderLineInput, 0, len(lines))
	for _, l := range lines {
		if in.Partial && !l.Available {
			uc.log.Infof("Use Case: Leaving cart item %d out of checkout for user %d (stock %d < %d)",
				l.ItemID, in.UserID, l.StockQuantity, l.Quantity)
			continue
		}
		itemID := l.ItemID
		inputs = append(inputs, OrderLineInput{
			ProductID:   l.ProductID,
			VariationID: l.VariationID,
			Quantity:    l.Quantity,
			CartItemID:  &itemID,
		})
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no checkoutable items in cart: %w", domain.ErrInvalidInput)
	}

	return uc.PlaceOrder(ctx, PlaceOrderInput{
		UserID:          in.UserID,
		Lines:           inputs,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		PaymentDetails:  in.PaymentDetails,
	})
}

func (uc *orderUseCase) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*domain.Order, error) {
	if err := validatePlaceOrder(in); err != nil {
		uc.log.Warnf("Use Case: Rejected order for user %d: %v", in.UserID, err)
		return nil, err
	}

	lines, err := uc.resolveLines(ctx, in.Lines)
	if err != nil {
		return nil, err
	}
	if err := uc.preflight(ctx, lines); err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.unitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	order := &domain.Order{
		UserID:          in.UserID,
		TotalAmount:     total,
		ShippingAddress: strings.TrimSpace(in.ShippingAddress),
		PaymentMethod:   in.PaymentMethod,
		Status:          domain.OrderPending,
	}

	err = uc.uow.Do(ctx, func(ctx context.Context) error {
		if _, err := uc.orderRepo.Create(ctx, order); err != nil {
			return err
		}
		order.Lines = make([]domain.OrderLine, 0, len(lines))
		for _, l := range lines {
			line, err := uc.orderRepo.AddLine(ctx, &domain.OrderLine{
				OrderID:     order.ID,
				ProductID:   l.ProductID,
				VariationID: l.VariationID,
				Quantity:    l.Quantity,
				UnitPrice:   l.unitPrice,
			})
			if err != nil {
				return err
			}

			if l.isPreorder {
				orderID, lineID := order.ID, line.ID
				p, err := uc.preorders.Create(ctx, domain.NewPreorder{
					UserID:      in.UserID,
					OrderID:     &orderID,
					OrderItemID: &lineID,
					ProductID:   l.ProductID,
					VariationID: l.VariationID,
					Quantity:    l.Quantity,
					LeadTime:    l.leadTime,
				})
				if err != nil {
					return err
				}
				line.PreorderID = &p.ID
			} else {
				if _, err := uc.stock.ApplyDelta(ctx, l.ProductID, l.VariationID, -l.Quantity, fmt.Sprintf("order #%d", order.ID)); err != nil {
					return err
				}
			}
			order.Lines = append(order.Lines, *line)
		}
		return nil
	})
	if err != nil {
		uc.log.WithField("user_id", in.UserID).Errorf("Use Case: Order placement rolled back: %v", err)
		return nil, err
	}

	logger := uc.log.WithFields(logrus.Fields{"order_id": order.ID, "user_id": order.UserID})
	logger.Infof("Use Case: Order created with %d lines, total %s", len(order.Lines), order.TotalAmount.StringFixed(2))

	if err := uc.settlePayment(ctx, order, in.PaymentDetails); err != nil {
		return nil, err
	}

	var cartItems []int64
	for _, l := range lines {
		if l.CartItemID != nil {
			cartItems = append(cartItems, *l.CartItemID)
		}
	}
	if len(cartItems) > 0 {
		if err := uc.cart.RemoveItems(ctx, in.UserID, cartItems); err != nil {
			logger.Warnf("Use Case: Order placed but cart cleanup failed: %v", err)
		}
	}
	return order, nil
}

func validatePlaceOrder(in PlaceOrderInput) error {
	if in.UserID <= 0 {
		return fmt.Errorf("invalid user ID: %w", domain.ErrInvalidInput)
	}
	if len(in.Lines) == 0 {
		return fmt.Errorf("order must contain at least one item: %w", domain.ErrInvalidInput)
	}
	for i, l := range in.Lines {
		if l.ProductID <= 0 {
			return fmt.Errorf("item %d: invalid product ID: %w", i, domain.ErrInvalidInput)
		}
		if l.Quantity < 1 {
			return fmt.Errorf("item %d (product %d): quantity must be at least 1: %w", i, l.ProductID, domain.ErrInvalidInput)
		}
	}
	if !domain.IsValidPaymentMethod(in.PaymentMethod) {
		return fmt.Errorf("unknown payment method %q: %w", in.PaymentMethod, domain.ErrInvalidInput)
	}
	if strings.TrimSpace(in.ShippingAddress) == "" {
		return fmt.Errorf("shipping address is required: %w", domain.ErrInvalidInput)
	}
	return nil
}

// resolveLines re-reads every product so price and preorder routing reflect
// the catalog at checkout time, not when the item was put in the cart.
func (uc *orderUseCase) resolveLines(ctx context.Context, inputs []OrderLineInput) ([]resolvedLine, error) {
	lines := make([]resolvedLine, 0, len(inputs))
	for _, in := range inputs {
		product, err := uc.productRepo.GetByID(ctx, in.ProductID)
		if err != nil {
			return nil, err
		}
		price := product.Price
		if in.VariationID != nil {
			v, err := uc.productRepo.GetVariation(ctx, in.ProductID, *in.VariationID)
			if err != nil {
				return nil, err
			}
			price = price.Add(v.PriceAdjustment)
		}
		lines = append(lines, resolvedLine{
			OrderLineInput: in,
			unitPrice:      price,
			isPreorder:     product.IsPreorder,
			leadTime:       product.PreorderLeadTime,
		})
	}
	return lines, nil
}

// preflight checks the aggregated demand per SKU against current stock.
// The authoritative check is the guarded decrement inside the transaction.
func (uc *orderUseCase) preflight(ctx context.Context, lines []resolvedLine) error {
	demand := map[skuKey]int{}
	order := []resolvedLine{}
	for _, l := range lines {
		if l.isPreorder {
			continue
		}
		k := keyOf(l.ProductID, l.VariationID)
		if _, seen := demand[k]; !seen {
			order = append(order, l)
		}
		demand[k] += l.Quantity
	}

	for _, l := range order {
		requested := demand[keyOf(l.ProductID, l.VariationID)]
		info, err := uc.stock.CheckStock(ctx, l.ProductID, l.VariationID)
		if err != nil {
			return err
		}
		if info.Quantity < requested {
			uc.log.Warnf("Use Case: Insufficient stock for product %d (requested total: %d, available: %d)",
				l.ProductID, requested, info.Quantity)
			return &domain.InsufficientStockError{
				ProductID:   l.ProductID,
				VariationID: l.VariationID,
				Requested:   requested,
				Available:   info.Quantity,
			}
		}
	}
	return nil
}

// settlePayment charges the order and records the outcome. A declined
// payment cancels the order, which stays behind as a cancelled record.
func (uc *orderUseCase) settlePayment(ctx context.Context, order *domain.Order, details domain.PaymentDetails) error {
	logger := uc.log.WithField("order_id", order.ID)

	result, err := uc.gateway.Process(ctx, order.ID, order.PaymentMethod, details)
	if err != nil {
		result = &domain.PaymentResult{Success: false, Status: domain.PaymentFailed, Message: err.Error()}
	}
	if !result.Success {
		result.Status = domain.PaymentFailed
	}

	next := domain.OrderPending
	if result.Success && order.PaymentMethod != domain.PaymentBankTransfer {
		next = domain.OrderProcessing
	}

	err = uc.uow.Do(ctx, func(ctx context.Context) error {
		if _, err := uc.paymentRepo.Create(ctx, &domain.Payment{
			OrderID:       order.ID,
			Method:        order.PaymentMethod,
			Status:        result.Status,
			TransactionID: result.TransactionID,
		}); err != nil {
			return err
		}
		if result.Success && next != order.Status {
			return uc.orderRepo.UpdateStatus(ctx, order.ID, next)
		}
		return nil
	})
	if err != nil {
		logger.Errorf("Use Case: Failed to record payment outcome: %v", err)
		if result.Success {
			// The charge went through. Failing here would invite a retry that
			// buys the goods twice, so the order stands as stored.
			logger.Errorf("Use Case: Payment %s approved but not recorded, order left %s for reconciliation",
				result.TransactionID, order.Status)
			return nil
		}
	}

	if result.Success {
		order.Status = next
		logger.Infof("Use Case: Payment %s accepted (%s), order is %s", result.TransactionID, result.Status, order.Status)
		return nil
	}

	logger.Warnf("Use Case: Payment declined: %s. Cancelling order.", result.Message)
	if _, cancelErr := uc.CancelOrder(ctx, CancelOrderInput{OrderID: order.ID, UserID: SystemUserID, Force: true}); cancelErr != nil {
		logger.Errorf("Use Case: CRITICAL! Could not cancel order after failed payment: %v", cancelErr)
		return cancelErr
	}
	order.Status = domain.OrderCancelled
	return &domain.PaymentFailedError{OrderID: order.ID, Reason: result.Message}
}

// CancelOrder reverses exactly what PlaceOrder did: each stock line is put
// back and each preorder line has its preorder cancelled.
func (uc *orderUseCase) CancelOrder(ctx context.Context, in CancelOrderInput) (*domain.Order, error) {
	var cancelled *domain.Order
	err := uc.uow.Do(ctx, func(ctx context.Context) error {
		order, err := uc.orderRepo.GetForUpdate(ctx, in.OrderID)
		if err != nil {
			return err
		}
		if order.Status == domain.OrderCancelled {
			return fmt.Errorf("order %d is already cancelled: %w", order.ID, domain.ErrInvalidState)
		}
		if !in.Force {
			if order.UserID != in.UserID {
				uc.log.Warnf("Use Case: User %d attempted to cancel order %d owned by user %d", in.UserID, order.ID, order.UserID)
				return fmt.Errorf("order %d belongs to another user: %w", order.ID, domain.ErrForbidden)
			}
			if !order.Status.IsUserCancellable() {
				return fmt.Errorf("order %d is %s and can no longer be cancelled: %w", order.ID, order.Status, domain.ErrInvalidState)
			}
		}

		for _, line := range order.Lines {
			if line.PreorderID != nil {
				if err := uc.preorders.CancelForOrderLine(ctx, line.ID, in.UserID); err != nil {
					return err
				}
				continue
			}
			if _, err := uc.stock.ApplyDelta(ctx, line.ProductID, line.VariationID, line.Quantity, fmt.Sprintf("cancel order #%d", order.ID)); err != nil {
				return err
			}
		}

		if err := uc.orderRepo.UpdateStatus(ctx, order.ID, domain.OrderCancelled); err != nil {
			return err
		}
		order.Status = domain.OrderCancelled
		cancelled = order
		return nil
	})
	if err != nil {
		uc.log.WithField("order_id", in.OrderID).Warnf("Use Case: Cancel failed: %v", err)
		return nil, err
	}
	uc.log.WithFields(logrus.Fields{
		"order_id": cancelled.ID,
		"by":       in.UserID,
		"forced":   in.Force,
	}).Info("Use Case: Order cancelled")
	return cancelled, nil
}

// UpdateStatus is the admin status change. Moving to cancelled reverses the
// order's effects; a cancelled order cannot be revived.
func (uc *orderUseCase) UpdateStatus(ctx context.Context, orderID int64, status domain.OrderStatus, changedBy int64) (*domain.Order, error) {
	if !domain.IsValidOrderStatus(status) {
		return nil, fmt.Errorf("unknown order status %q: %w", status, domain.ErrInvalidState)
	}
	if status == domain.OrderCancelled {
		return uc.CancelOrder(ctx, CancelOrderInput{OrderID: orderID, UserID: changedBy, Force: true})
	}

	err := uc.uow.Do(ctx, func(ctx context.Context) error {
		order, err := uc.orderRepo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status == domain.OrderCancelled {
			return fmt.Errorf("order %d is cancelled: %w", orderID, domain.ErrInvalidState)
		}
		if order.Status == status {
			return nil
		}
		if !domain.IsForwardOrderTransition(order.Status, status) {
			uc.log.WithFields(logrus.Fields{
				"order_id":   orderID,
				"from":       order.Status,
				"to":         status,
				"changed_by": changedBy,
			}).Warn("Use Case: Non-forward order status transition")
		}
		return uc.orderRepo.UpdateStatus(ctx, orderID, status)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Infof("Use Case: Order %d status set to %s by %d", orderID, status, changedBy)
	return uc.orderRepo.GetByID(ctx, orderID)
}

func (uc *orderUseCase) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid order ID %d: %w", id, domain.ErrInvalidInput)
	}
	return uc.orderRepo.GetByID(ctx, id)
}

func (uc *orderUseCase) ListOrdersByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Order, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user ID: %w", domain.ErrInvalidInput)
	}
	return uc.orderRepo.List(ctx, domain.OrderFilter{UserID: &userID, Limit: limit, Offset: offset})
}

func (uc *orderUseCase) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if filter.Status != nil && !domain.IsValidOrderStatus(*filter.Status) {
		return nil, fmt.Errorf("unknown order status %q: %w", *filter.Status, domain.ErrInvalidInput)
	}
	return uc.orderRepo.List(ctx, filter)
}
