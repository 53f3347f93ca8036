package repository

import (
	"context"
	"database/sql"

	"github.com/atsukitanaka0922/primeselect/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type postgresStockRepository struct {
	db  *sqlx.DB
	log *logrus.Logger
}

func NewPostgresStockRepository(db *sqlx.DB, logger *logrus.Logger) domain.StockRepository {
	return &postgresStockRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresStockRepository) GetQuantity(ctx context.Context, productID int64, variationID *int64) (int, error) {
	var (
		quantity int
		err      error
	)
	if variationID != nil {
		err = sqlx.GetContext(ctx, executor(ctx, r.db), &quantity,
			`SELECT stock FROM product_variations WHERE id = $1 AND product_id = $2`, *variationID, productID)
	} else {
		err = sqlx.GetContext(ctx, executor(ctx, r.db), &quantity,
			`SELECT stock FROM products WHERE id = $1`, productID)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if variationID != nil {
				return 0, notFound("variation", *variationID)
			}
			return 0, notFound("product", productID)
		}
		r.log.Errorf("Repository: Failed to read stock for product %d: %v", productID, err)
		return 0, storageErr("get stock", err)
	}
	return quantity, nil
}

// ApplyDelta is a single compare-and-set statement. The row lock it takes
// is held until the surrounding transaction ends.
func (r *postgresStockRepository) ApplyDelta(ctx context.Context, productID int64, variationID *int64, delta int) (int, error) {
	var (
		quantity int
		err      error
	)
	if variationID != nil {
		err = executor(ctx, r.db).QueryRowxContext(ctx, `
            UPDATE product_variations SET stock = stock + $1
            WHERE id = $2 AND product_id = $3 AND stock + $1 >= 0
            RETURNING stock`, delta, *variationID, productID).Scan(&quantity)
	} else {
		err = executor(ctx, r.db).QueryRowxContext(ctx, `
            UPDATE products SET stock = stock + $1
            WHERE id = $2 AND stock + $1 >= 0
            RETURNING stock`, delta, productID).Scan(&quantity)
	}
	if err == nil {
		return quantity, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		r.log.Errorf("Repository: Failed to apply stock delta %d to product %d: %v", delta, productID, err)
		return 0, storageErr("apply stock delta", err)
	}

	// No row matched: either the SKU is missing or the guard rejected the delta.
	available, getErr := r.GetQuantity(ctx, productID, variationID)
	if getErr != nil {
		return 0, getErr
	}
	r.log.Warnf("Repository: Stock delta %d rejected for product %d (available: %d)", delta, productID, available)
	return 0, &domain.InsufficientStockError{
		ProductID:   productID,
		VariationID: variationID,
		Requested:   -delta,
		Available:   available,
	}
}

func (r *postgresStockRepository) AppendLog(ctx context.Context, entry *domain.StockLogEntry) error {
	query := `
        INSERT INTO product_stock_logs (product_id, variation_id, type, quantity, reason)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`
	err := executor(ctx, r.db).QueryRowxContext(ctx, query,
		entry.ProductID,
		entry.VariationID,
		entry.Type,
		entry.Quantity,
		entry.Reason,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		r.log.Errorf("Repository: Failed to append stock log for product %d: %v", entry.ProductID, err)
		return storageErr("append stock log", err)
	}
	return nil
}

func (r *postgresStockRepository) ListLogs(ctx context.Context, productID int64, limit int) ([]domain.StockLogEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	query := `
        SELECT id, product_id, variation_id, type, quantity, reason, created_at
        FROM product_stock_logs
        WHERE product_id = $1
        ORDER BY created_at DESC, id DESC
        LIMIT $2`
	entries := []domain.StockLogEntry{}
	if err := sqlx.SelectContext(ctx, executor(ctx, r.db), &entries, query, productID, limit); err != nil {
		r.log.Errorf("Repository: Failed to list stock logs for product %d: %v", productID, err)
		return nil, storageErr("list stock logs", err)
	}
	return entries, nil
}
