package repository

import (
	"context"
	"database/sql"

	"github.com/atsukitanaka0922/primeselect/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type postgresPaymentRepository struct {
	db  *sqlx.DB
	log *logrus.Logger
}

func NewPostgresPaymentRepository(db *sqlx.DB, logger *logrus.Logger) domain.PaymentRepository {
	return &postgresPaymentRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresPaymentRepository) Create(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	query := `
        INSERT INTO payments (order_id, method, status, transaction_id)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`
	err := executor(ctx, r.db).QueryRowxContext(ctx, query,
		payment.OrderID, payment.Method, payment.Status, payment.TransactionID,
	).Scan(&payment.ID, &payment.CreatedAt)
	if err != nil {
		r.log.Errorf("Repository: Failed to record payment for order %d: %v", payment.OrderID, err)
		return nil, storageErr("create payment", err)
	}
	r.log.Infof("Repository: Payment %d (%s) recorded for order %d", payment.ID, payment.Status, payment.OrderID)
	return payment, nil
}

func (r *postgresPaymentRepository) GetByOrder(ctx context.Context, orderID int64) (*domain.Payment, error) {
	query := `
        SELECT id, order_id, method, status, transaction_id, created_at
        FROM payments
        WHERE order_id = $1
        ORDER BY id DESC
        LIMIT 1`
	var payment domain.Payment
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &payment, query, orderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("payment for order", orderID)
		}
		return nil, storageErr("get payment", err)
	}
	return &payment, nil
}
