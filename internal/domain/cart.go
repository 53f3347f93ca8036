package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type CartItem struct {
	ID          int64     `json:"id" db:"id"`
	UserID      int64     `json:"user_id" db:"user_id"`
	ProductID   int64     `json:"product_id" db:"product_id"`
	VariationID *int64    `json:"variation_id,omitempty" db:"variation_id"`
	Quantity    int       `json:"quantity" db:"quantity"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// CartLine is a cart item joined with its product, variation and current stock.
type CartLine struct {
	ItemID          int64           `json:"item_id" db:"item_id"`
	ProductID       int64           `json:"product_id" db:"product_id"`
	VariationID     *int64          `json:"variation_id,omitempty" db:"variation_id"`
	Name            string          `json:"name" db:"name"`
	Quantity        int             `json:"quantity" db:"quantity"`
	BasePrice       decimal.Decimal `json:"base_price" db:"base_price"`
	PriceAdjustment decimal.Decimal `json:"price_adjustment" db:"price_adjustment"`
	UnitPrice       decimal.Decimal `json:"unit_price" db:"-"`
	IsPreorder      bool            `json:"is_preorder" db:"is_preorder"`
	LeadTime        string          `json:"lead_time,omitempty" db:"lead_time"`
	StockQuantity   int             `json:"stock_quantity" db:"stock_quantity"`
	Available       bool            `json:"available" db:"-"`
}

// Checkoutable reports whether the line can be bought right now.
func (l CartLine) Checkoutable() bool {
	return l.IsPreorder || l.StockQuantity >= l.Quantity
}

type Cart struct {
	Lines []CartLine      `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

type CartRepository interface {
	FindItem(ctx context.Context, userID, productID int64, variationID *int64) (*CartItem, error)
	GetItem(ctx context.Context, itemID int64) (*CartItem, error)
	Insert(ctx context.Context, item *CartItem) (*CartItem, error)
	SetQuantity(ctx context.Context, itemID int64, quantity int) error
	Delete(ctx context.Context, itemID int64) error
	DeleteMany(ctx context.Context, userID int64, itemIDs []int64) error
	Clear(ctx context.Context, userID int64) error
	ListLines(ctx context.Context, userID int64) ([]CartLine, error)
}
