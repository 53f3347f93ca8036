package domain

import (
	"context"
	"time"
)

type PaymentStatus string

const (
	PaymentCompleted PaymentStatus = "completed"
	PaymentPending   PaymentStatus = "pending"
	PaymentFailed    PaymentStatus = "failed"
)

type PaymentDetails struct {
	CardNumber string `json:"card_number,omitempty"`
	CardExpiry string `json:"card_expiry,omitempty"`
	CardCVV    string `json:"card_cvv,omitempty"`
}

type PaymentResult struct {
	Success       bool
	TransactionID string
	Status        PaymentStatus
	Message       string
}

type Payment struct {
	ID            int64         `json:"id" db:"id"`
	OrderID       int64         `json:"order_id" db:"order_id"`
	Method        PaymentMethod `json:"method" db:"method"`
	Status        PaymentStatus `json:"status" db:"status"`
	TransactionID string        `json:"transaction_id" db:"transaction_id"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
}

// PaymentGateway charges an order. Implementations never retry.
type PaymentGateway interface {
	Process(ctx context.Context, orderID int64, method PaymentMethod, details PaymentDetails) (*PaymentResult, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) (*Payment, error)
	GetByOrder(ctx context.Context, orderID int64) (*Payment, error)
}
