package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

var orderStatusRank = map[OrderStatus]int{
	OrderPending:    0,
	OrderProcessing: 1,
	OrderShipped:    2,
	OrderDelivered:  3,
}

func IsValidOrderStatus(status OrderStatus) bool {
	if status == OrderCancelled {
		return true
	}
	_, ok := orderStatusRank[status]
	return ok
}

// IsForwardOrderTransition reports whether to moves along
// pending -> processing -> shipped -> delivered, or into cancelled.
func IsForwardOrderTransition(from, to OrderStatus) bool {
	if to == OrderCancelled {
		return from != OrderCancelled
	}
	f, okFrom := orderStatusRank[from]
	t, okTo := orderStatusRank[to]
	return okFrom && okTo && t > f
}

// IsUserCancellable reports whether the owner may still cancel.
func (s OrderStatus) IsUserCancellable() bool {
	return s == OrderPending || s == OrderProcessing
}

type PaymentMethod string

const (
	PaymentCreditCard   PaymentMethod = "credit_card"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCOD          PaymentMethod = "cod"
)

func IsValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentCreditCard, PaymentBankTransfer, PaymentCOD:
		return true
	default:
		return false
	}
}

type Order struct {
	ID              int64           `json:"id" db:"id"`
	UserID          int64           `json:"user_id" db:"user_id"`
	TotalAmount     decimal.Decimal `json:"total_amount" db:"total_amount"`
	ShippingAddress string          `json:"shipping_address" db:"shipping_address"`
	PaymentMethod   PaymentMethod   `json:"payment_method" db:"payment_method"`
	Status          OrderStatus     `json:"status" db:"status"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
	Lines           []OrderLine     `json:"items,omitempty" db:"-"`
}

type OrderLine struct {
	ID          int64           `json:"id" db:"id"`
	OrderID     int64           `json:"order_id" db:"order_id"`
	ProductID   int64           `json:"product_id" db:"product_id"`
	VariationID *int64          `json:"variation_id,omitempty" db:"variation_id"`
	Quantity    int             `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price" db:"unit_price"`
	PreorderID  *int64          `json:"preorder_id,omitempty" db:"preorder_id"`
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type OrderFilter struct {
	UserID *int64
	Status *OrderStatus
	Limit  int
	Offset int
}

type OrderRepository interface {
	Create(ctx context.Context, order *Order) (*Order, error)
	AddLine(ctx context.Context, line *OrderLine) (*OrderLine, error)
	GetByID(ctx context.Context, id int64) (*Order, error)
	// GetForUpdate locks the order row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id int64) (*Order, error)
	UpdateStatus(ctx context.Context, id int64, status OrderStatus) error
	List(ctx context.Context, filter OrderFilter) ([]Order, error)
}
