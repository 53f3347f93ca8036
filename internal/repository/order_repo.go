package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/atsukitanaka0922/primeselect/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const orderColumns = `id, user_id, total_amount, shipping_address, payment_method, status, created_at, updated_at`

type postgresOrderRepository struct {
	db  *sqlx.DB
	log *logrus.Logger
}

func NewPostgresOrderRepository(db *sqlx.DB, logger *logrus.Logger) domain.OrderRepository {
	return &postgresOrderRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresOrderRepository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	query := `
        INSERT INTO orders (user_id, total_amount, shipping_address, payment_method, status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`
	err := executor(ctx, r.db).QueryRowxContext(ctx, query,
		order.UserID,
		order.TotalAmount,
		order.ShippingAddress,
		order.PaymentMethod,
		order.Status,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		r.log.Errorf("Repository: Failed to insert order for user %d: %v", order.UserID, err)
		return nil, storageErr("create order", err)
	}
	r.log.Infof("Repository: Order entry created with ID: %d for user: %d", order.ID, order.UserID)
	return order, nil
}

func (r *postgresOrderRepository) AddLine(ctx context.Context, line *domain.OrderLine) (*domain.OrderLine, error) {
	query := `
        INSERT INTO order_items (order_id, product_id, variation_id, quantity, unit_price)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id`
	err := executor(ctx, r.db).QueryRowxContext(ctx, query,
		line.OrderID,
		line.ProductID,
		line.VariationID,
		line.Quantity,
		line.UnitPrice,
	).Scan(&line.ID)
	if err != nil {
		r.log.Errorf("Repository: Failed to insert order item (product_id: %d, quantity: %d) for order %d: %v",
			line.ProductID, line.Quantity, line.OrderID, err)
		return nil, storageErr("create order item", err)
	}
	return line, nil
}

func (r *postgresOrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

func (r *postgresOrderRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	if _, ok := txFrom(ctx); !ok {
		r.log.Warnf("Repository: GetForUpdate on order %d outside a transaction, lock is released immediately", id)
	}
	return r.get(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *postgresOrderRepository) get(ctx context.Context, query string, id int64) (*domain.Order, error) {
	var order domain.Order
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &order, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: Order with ID %d not found", id)
			return nil, notFound("order", id)
		}
		r.log.Errorf("Repository: Failed to get order by ID %d: %v", id, err)
		return nil, storageErr("get order", err)
	}

	lines, err := r.lines(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Lines = lines
	return &order, nil
}

func (r *postgresOrderRepository) lines(ctx context.Context, orderID int64) ([]domain.OrderLine, error) {
	query := `
        SELECT oi.id, oi.order_id, oi.product_id, oi.variation_id, oi.quantity, oi.unit_price,
               p.id AS preorder_id
        FROM order_items oi
        LEFT JOIN preorders p ON p.order_item_id = oi.id
        WHERE oi.order_id = $1
        ORDER BY oi.id ASC`
	lines := []domain.OrderLine{}
	if err := sqlx.SelectContext(ctx, executor(ctx, r.db), &lines, query, orderID); err != nil {
		r.log.Errorf("Repository: Failed to query order items for order ID %d: %v", orderID, err)
		return nil, storageErr("list order items", err)
	}
	return lines, nil
}

func (r *postgresOrderRepository) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	result, err := executor(ctx, r.db).ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		r.log.Errorf("Repository: Failed to update status for order %d: %v", id, err)
		return storageErr("update order status", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return storageErr("update order status", err)
	}
	if rows == 0 {
		return notFound("order", id)
	}
	r.log.Infof("Repository: Order %d status set to '%s'", id, status)
	return nil
}

// List returns order headers only. Lines are loaded by GetByID.
func (r *postgresOrderRepository) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	limit, offset := clampPage(filter.Limit, filter.Offset)

	where := []string{}
	args := []interface{}{}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	orders := []domain.Order{}
	if err := sqlx.SelectContext(ctx, executor(ctx, r.db), &orders, query, args...); err != nil {
		r.log.Errorf("Repository: Failed to list orders: %v", err)
		return nil, storageErr("list orders", err)
	}
	return orders, nil
}
