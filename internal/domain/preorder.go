package domain

import (
	"context"
	"time"
)

type PreorderStatus string

const (
	PreorderPending    PreorderStatus = "pending"
	PreorderConfirmed  PreorderStatus = "confirmed"
	PreorderProduction PreorderStatus = "production"
	PreorderShipped    PreorderStatus = "shipped"
	PreorderDelivered  PreorderStatus = "delivered"
	PreorderCancelled  PreorderStatus = "cancelled"
)

var preorderStatusRank = map[PreorderStatus]int{
	PreorderPending:    0,
	PreorderConfirmed:  1,
	PreorderProduction: 2,
	PreorderShipped:    3,
	PreorderDelivered:  4,
}

func IsValidPreorderStatus(status PreorderStatus) bool {
	if status == PreorderCancelled {
		return true
	}
	_, ok := preorderStatusRank[status]
	return ok
}

func IsForwardPreorderTransition(from, to PreorderStatus) bool {
	if to == PreorderCancelled {
		return from != PreorderCancelled
	}
	f, okFrom := preorderStatusRank[from]
	t, okTo := preorderStatusRank[to]
	return okFrom && okTo && t > f
}

// IsUserCancellable reports whether production has not started yet.
func (s PreorderStatus) IsUserCancellable() bool {
	return s == PreorderPending || s == PreorderConfirmed
}

type Preorder struct {
	ID                int64          `json:"id" db:"id"`
	UserID            int64          `json:"user_id" db:"user_id"`
	OrderID           *int64         `json:"order_id,omitempty" db:"order_id"`
	OrderItemID       *int64         `json:"order_item_id,omitempty" db:"order_item_id"`
	ProductID         int64          `json:"product_id" db:"product_id"`
	VariationID       *int64         `json:"variation_id,omitempty" db:"variation_id"`
	Quantity          int            `json:"quantity" db:"quantity"`
	EstimatedDelivery time.Time      `json:"estimated_delivery" db:"estimated_delivery"`
	Status            PreorderStatus `json:"status" db:"status"`
	CreatedAt         time.Time      `json:"created_at" db:"created_at"`
}

type NewPreorder struct {
	UserID      int64
	OrderID     *int64
	OrderItemID *int64
	ProductID   int64
	VariationID *int64
	Quantity    int
	LeadTime    string
}

type PreorderStatusLog struct {
	ID         int64          `json:"id" db:"id"`
	PreorderID int64          `json:"preorder_id" db:"preorder_id"`
	OldStatus  PreorderStatus `json:"old_status" db:"old_status"`
	NewStatus  PreorderStatus `json:"new_status" db:"new_status"`
	ChangedBy  int64          `json:"changed_by" db:"changed_by"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
}

type PreorderFilter struct {
	UserID    *int64
	ProductID *int64
	Status    *PreorderStatus
	Limit     int
	Offset    int
}

type PreorderRepository interface {
	Create(ctx context.Context, preorder *Preorder) (*Preorder, error)
	GetByID(ctx context.Context, id int64) (*Preorder, error)
	GetForUpdate(ctx context.Context, id int64) (*Preorder, error)
	GetByOrderItem(ctx context.Context, orderItemID int64) (*Preorder, error)
	UpdateStatus(ctx context.Context, id int64, status PreorderStatus) error
	UpdateEstimatedDelivery(ctx context.Context, id int64, date time.Time) error
	List(ctx context.Context, filter PreorderFilter) ([]Preorder, error)
	AppendStatusLog(ctx context.Context, entry *PreorderStatusLog) error
}
