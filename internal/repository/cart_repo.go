package repository

import (
	"context"
	"database/sql"

	"github.com/atsukitanaka0922/primeselect/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const cartItemColumns = `id, user_id, product_id, variation_id, quantity, created_at`

type postgresCartRepository struct {
	db  *sqlx.DB
	log *logrus.Logger
}

func NewPostgresCartRepository(db *sqlx.DB, logger *logrus.Logger) domain.CartRepository {
	return &postgresCartRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresCartRepository) FindItem(ctx context.Context, userID, productID int64, variationID *int64) (*domain.CartItem, error) {
	query := `SELECT ` + cartItemColumns + ` FROM cart
        WHERE user_id = $1 AND product_id = $2 AND variation_id IS NOT DISTINCT FROM $3`
	var item domain.CartItem
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &item, query, userID, productID, variationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("cart item for product", productID)
		}
		return nil, storageErr("find cart item", err)
	}
	return &item, nil
}

func (r *postgresCartRepository) GetItem(ctx context.Context, itemID int64) (*domain.CartItem, error) {
	var item domain.CartItem
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &item, `SELECT `+cartItemColumns+` FROM cart WHERE id = $1`, itemID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("cart item", itemID)
		}
		return nil, storageErr("get cart item", err)
	}
	return &item, nil
}

func (r *postgresCartRepository) Insert(ctx context.Context, item *domain.CartItem) (*domain.CartItem, error) {
	query := `
        INSERT INTO cart (user_id, product_id, variation_id, quantity)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`
	err := executor(ctx, r.db).QueryRowxContext(ctx, query,
		item.UserID, item.ProductID, item.VariationID, item.Quantity,
	).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		r.log.Errorf("Repository: Failed to add product %d to cart of user %d: %v", item.ProductID, item.UserID, err)
		return nil, storageErr("insert cart item", err)
	}
	return item, nil
}

func (r *postgresCartRepository) SetQuantity(ctx context.Context, itemID int64, quantity int) error {
	result, err := executor(ctx, r.db).ExecContext(ctx, `UPDATE cart SET quantity = $1 WHERE id = $2`, quantity, itemID)
	if err != nil {
		return storageErr("update cart item", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return storageErr("update cart item", err)
	}
	if rows == 0 {
		return notFound("cart item", itemID)
	}
	return nil
}

func (r *postgresCartRepository) Delete(ctx context.Context, itemID int64) error {
	if _, err := executor(ctx, r.db).ExecContext(ctx, `DELETE FROM cart WHERE id = $1`, itemID); err != nil {
		return storageErr("delete cart item", err)
	}
	return nil
}

func (r *postgresCartRepository) DeleteMany(ctx context.Context, userID int64, itemIDs []int64) error {
	if len(itemIDs) == 0 {
		return nil
	}
	_, err := executor(ctx, r.db).ExecContext(ctx,
		`DELETE FROM cart WHERE user_id = $1 AND id = ANY($2)`, userID, pq.Array(itemIDs))
	if err != nil {
		r.log.Errorf("Repository: Failed to remove %d cart items for user %d: %v", len(itemIDs), userID, err)
		return storageErr("delete cart items", err)
	}
	return nil
}

func (r *postgresCartRepository) Clear(ctx context.Context, userID int64) error {
	if _, err := executor(ctx, r.db).ExecContext(ctx, `DELETE FROM cart WHERE user_id = $1`, userID); err != nil {
		return storageErr("clear cart", err)
	}
	return nil
}

// ListLines resolves each item against its product and variation. Stock is
// taken from the variation row when the item names one.
func (r *postgresCartRepository) ListLines(ctx context.Context, userID int64) ([]domain.CartLine, error) {
	query := `
        SELECT c.id AS item_id,
               c.product_id,
               c.variation_id,
               p.name,
               c.quantity,
               p.price AS base_price,
               COALESCE(pv.price_adjustment, 0) AS price_adjustment,
               p.is_preorder,
               p.preorder_lead_time AS lead_time,
               COALESCE(pv.stock, p.stock) AS stock_quantity
        FROM cart c
        JOIN products p ON p.id = c.product_id
        LEFT JOIN product_variations pv ON pv.id = c.variation_id
        WHERE c.user_id = $1
        ORDER BY c.created_at ASC, c.id ASC`
	lines := []domain.CartLine{}
	if err := sqlx.SelectContext(ctx, executor(ctx, r.db), &lines, query, userID); err != nil {
		r.log.Errorf("Repository: Failed to list cart of user %d: %v", userID, err)
		return nil, storageErr("list cart", err)
	}
	return lines, nil
}
