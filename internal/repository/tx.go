package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/atsukitanaka0922/primeselect/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type txKey struct{}

var _ domain.UnitOfWork = (*TxManager)(nil)

// TxManager opens one *sqlx.Tx per outermost Do call and carries it in the
// context so repositories pick it up through executor.
type TxManager struct {
	db               *sqlx.DB
	statementTimeout time.Duration
	log              *logrus.Logger
}

func NewTxManager(db *sqlx.DB, statementTimeout time.Duration, logger *logrus.Logger) *TxManager {
	return &TxManager{
		db:               db,
		statementTimeout: statementTimeout,
		log:              logger,
	}
}

func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := txFrom(ctx); ok {
		return fn(ctx)
	}

	txCtx, hooks := domain.WithCommitHooks(ctx)
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		m.log.Errorf("Repository: Failed to begin transaction: %v", err)
		return domain.NewStorageError("begin transaction", errors.WithStack(err))
	}

	defer func() {
		if p := recover(); p != nil {
			m.log.Error("Repository: Recovered from panic, rolling back transaction")
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			m.log.Debugf("Repository: Rolling back transaction due to error: %v", err)
			if rbErr := tx.Rollback(); rbErr != nil {
				m.log.Errorf("Repository: Failed to rollback transaction: %v", rbErr)
			}
		} else {
			if cErr := tx.Commit(); cErr != nil {
				m.log.Errorf("Repository: Failed to commit transaction: %v", cErr)
				err = domain.NewStorageError("commit transaction", errors.WithStack(cErr))
				return
			}
			hooks.Run(ctx)
		}
	}()

	if m.statementTimeout > 0 {
		// SET LOCAL does not accept bind parameters.
		stmt := fmt.Sprintf("SET LOCAL statement_timeout = %d", m.statementTimeout.Milliseconds())
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			m.log.Errorf("Repository: Failed to set statement timeout: %v", err)
			return domain.NewStorageError("set statement timeout", errors.WithStack(err))
		}
	}

	err = fn(context.WithValue(txCtx, txKey{}, tx))
	return err
}

func txFrom(ctx context.Context) (*sqlx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sqlx.Tx)
	return tx, ok && tx != nil
}

// executor returns the transaction in ctx, falling back to the pool.
func executor(ctx context.Context, db *sqlx.DB) sqlx.ExtContext {
	if tx, ok := txFrom(ctx); ok {
		return tx
	}
	return db
}
