package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/atsukitanaka0922/primeselect/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const preorderColumns = `id, user_id, order_id, order_item_id, product_id, variation_id, quantity, estimated_delivery, status, created_at`

type postgresPreorderRepository struct {
	db  *sqlx.DB
	log *logrus.Logger
}

func NewPostgresPreorderRepository(db *sqlx.DB, logger *logrus.Logger) domain.PreorderRepository {
	return &postgresPreorderRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresPreorderRepository) Create(ctx context.Context, p *domain.Preorder) (*domain.Preorder, error) {
	query := `
        INSERT INTO preorders (user_id, order_id, order_item_id, product_id, variation_id, quantity, estimated_delivery, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at`
	err := executor(ctx, r.db).QueryRowxContext(ctx, query,
		p.UserID,
		p.OrderID,
		p.OrderItemID,
		p.ProductID,
		p.VariationID,
		p.Quantity,
		p.EstimatedDelivery,
		p.Status,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		r.log.Errorf("Repository: Failed to create preorder for user %d, product %d: %v", p.UserID, p.ProductID, err)
		return nil, storageErr("create preorder", err)
	}
	r.log.Infof("Repository: Preorder %d created for user %d, product %d", p.ID, p.UserID, p.ProductID)
	return p, nil
}

func (r *postgresPreorderRepository) GetByID(ctx context.Context, id int64) (*domain.Preorder, error) {
	return r.get(ctx, `SELECT `+preorderColumns+` FROM preorders WHERE id = $1`, id, "preorder")
}

func (r *postgresPreorderRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Preorder, error) {
	return r.get(ctx, `SELECT `+preorderColumns+` FROM preorders WHERE id = $1 FOR UPDATE`, id, "preorder")
}

func (r *postgresPreorderRepository) GetByOrderItem(ctx context.Context, orderItemID int64) (*domain.Preorder, error) {
	return r.get(ctx, `SELECT `+preorderColumns+` FROM preorders WHERE order_item_id = $1 FOR UPDATE`, orderItemID, "preorder for order item")
}

func (r *postgresPreorderRepository) get(ctx context.Context, query string, id int64, kind string) (*domain.Preorder, error) {
	var p domain.Preorder
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(kind, id)
		}
		r.log.Errorf("Repository: Failed to get %s %d: %v", kind, id, err)
		return nil, storageErr("get preorder", err)
	}
	return &p, nil
}

func (r *postgresPreorderRepository) UpdateStatus(ctx context.Context, id int64, status domain.PreorderStatus) error {
	return r.update(ctx, `UPDATE preorders SET status = $1 WHERE id = $2`, status, id)
}

func (r *postgresPreorderRepository) UpdateEstimatedDelivery(ctx context.Context, id int64, date time.Time) error {
	return r.update(ctx, `UPDATE preorders SET estimated_delivery = $1 WHERE id = $2`, date, id)
}

func (r *postgresPreorderRepository) update(ctx context.Context, query string, value interface{}, id int64) error {
	result, err := executor(ctx, r.db).ExecContext(ctx, query, value, id)
	if err != nil {
		r.log.Errorf("Repository: Failed to update preorder %d: %v", id, err)
		return storageErr("update preorder", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return storageErr("update preorder", err)
	}
	if rows == 0 {
		return notFound("preorder", id)
	}
	return nil
}

func (r *postgresPreorderRepository) List(ctx context.Context, filter domain.PreorderFilter) ([]domain.Preorder, error) {
	limit, offset := clampPage(filter.Limit, filter.Offset)

	where := []string{}
	args := []interface{}{}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.ProductID != nil {
		args = append(args, *filter.ProductID)
		where = append(where, fmt.Sprintf("product_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + preorderColumns + ` FROM preorders`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	preorders := []domain.Preorder{}
	if err := sqlx.SelectContext(ctx, executor(ctx, r.db), &preorders, query, args...); err != nil {
		r.log.Errorf("Repository: Failed to list preorders: %v", err)
		return nil, storageErr("list preorders", err)
	}
	return preorders, nil
}

func (r *postgresPreorderRepository) AppendStatusLog(ctx context.Context, entry *domain.PreorderStatusLog) error {
	query := `
        INSERT INTO preorder_status_logs (preorder_id, old_status, new_status, changed_by)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`
	err := executor(ctx, r.db).QueryRowxContext(ctx, query,
		entry.PreorderID,
		entry.OldStatus,
		entry.NewStatus,
		entry.ChangedBy,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		r.log.Errorf("Repository: Failed to log status change for preorder %d: %v", entry.PreorderID, err)
		return storageErr("append preorder status log", err)
	}
	return nil
}
