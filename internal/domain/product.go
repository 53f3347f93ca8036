package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const LowStockThreshold = 5

type Category struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

type Product struct {
	ID               int64              `json:"id" db:"id"`
	Name             string             `json:"name" db:"name"`
	Description      string             `json:"description" db:"description"`
	Price            decimal.Decimal    `json:"price" db:"price"`
	CategoryID       *int64             `json:"category_id,omitempty" db:"category_id"`
	Stock            int                `json:"stock" db:"stock"`
	IsPreorder       bool               `json:"is_preorder" db:"is_preorder"`
	PreorderLeadTime string             `json:"preorder_lead_time,omitempty" db:"preorder_lead_time"`
	CreatedAt        time.Time          `json:"created_at" db:"created_at"`
	Variations       []ProductVariation `json:"variations,omitempty" db:"-"`
}

type ProductVariation struct {
	ID              int64           `json:"id" db:"id"`
	ProductID       int64           `json:"product_id" db:"product_id"`
	Name            string          `json:"name" db:"name"`
	Value           string          `json:"value" db:"value"`
	PriceAdjustment decimal.Decimal `json:"price_adjustment" db:"price_adjustment"`
	Stock           int             `json:"stock" db:"stock"`
}

// ProductUpdate lists the fields an admin may change. Nil means unchanged.
// ClearCategory detaches the product from its category.
type ProductUpdate struct {
	Name             *string          `json:"name"`
	Description      *string          `json:"description"`
	Price            *decimal.Decimal `json:"price"`
	CategoryID       *int64           `json:"category_id"`
	ClearCategory    bool             `json:"clear_category"`
	IsPreorder       *bool            `json:"is_preorder"`
	PreorderLeadTime *string          `json:"preorder_lead_time"`
}

func (u ProductUpdate) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.Price == nil && u.CategoryID == nil &&
		!u.ClearCategory && u.IsPreorder == nil && u.PreorderLeadTime == nil
}

type ProductFilter struct {
	CategoryID *int64
	Keyword    string
	Limit      int
	Offset     int
}

type StockStatus string

const (
	StockOutOfStock StockStatus = "out_of_stock"
	StockLow        StockStatus = "low_stock"
	StockIn         StockStatus = "in_stock"
)

func StockStatusFor(quantity int) StockStatus {
	switch {
	case quantity <= 0:
		return StockOutOfStock
	case quantity <= LowStockThreshold:
		return StockLow
	default:
		return StockIn
	}
}

type StockInfo struct {
	ProductID   int64       `json:"product_id"`
	VariationID *int64      `json:"variation_id,omitempty"`
	Quantity    int         `json:"quantity"`
	IsAvailable bool        `json:"is_available"`
	Status      StockStatus `json:"status"`
}

type StockLogType string

const (
	StockLogIn     StockLogType = "in"
	StockLogOut    StockLogType = "out"
	StockLogAdjust StockLogType = "adjust"
)

// StockLogTypeFor derives the entry type from the sign of a delta.
func StockLogTypeFor(delta int) StockLogType {
	switch {
	case delta > 0:
		return StockLogIn
	case delta < 0:
		return StockLogOut
	default:
		return StockLogAdjust
	}
}

type StockLogEntry struct {
	ID          int64        `json:"id" db:"id"`
	ProductID   int64        `json:"product_id" db:"product_id"`
	VariationID *int64       `json:"variation_id,omitempty" db:"variation_id"`
	Type        StockLogType `json:"type" db:"type"`
	Quantity    int          `json:"quantity" db:"quantity"`
	Reason      string       `json:"reason" db:"reason"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
}

type CategoryRepository interface {
	Create(ctx context.Context, category *Category) (*Category, error)
	GetByID(ctx context.Context, id int64) (*Category, error)
	Update(ctx context.Context, category *Category) (*Category, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]Category, error)
}

type ProductRepository interface {
	Create(ctx context.Context, product *Product) (*Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	Update(ctx context.Context, id int64, update ProductUpdate) (*Product, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter ProductFilter) ([]Product, error)
	AddVariation(ctx context.Context, variation *ProductVariation) (*ProductVariation, error)
	GetVariation(ctx context.Context, productID, variationID int64) (*ProductVariation, error)
	ListVariations(ctx context.Context, productID int64) ([]ProductVariation, error)
}

// StockRepository owns the stock columns of products and product_variations.
type StockRepository interface {
	GetQuantity(ctx context.Context, productID int64, variationID *int64) (int, error)
	// ApplyDelta returns the new quantity, or an *InsufficientStockError
	// when the result would be negative.
	ApplyDelta(ctx context.Context, productID int64, variationID *int64, delta int) (int, error)
	AppendLog(ctx context.Context, entry *StockLogEntry) error
	ListLogs(ctx context.Context, productID int64, limit int) ([]StockLogEntry, error)
}
