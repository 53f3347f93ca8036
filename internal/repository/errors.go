package repository

import (
	"database/sql"
	"fmt"

	"github.com/atsukitanaka0922/primeselect/internal/domain"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

const (
	pqForeignKeyViolation = "23503"
	pqUniqueViolation     = "23505"
	pqCheckViolation      = "23514"
	pqQueryCanceled       = "57014"
)

// storageErr translates a driver error into a domain error.
// Constraint violations become ErrInvalidInput, everything else is a *StorageError.
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqForeignKeyViolation:
			return fmt.Errorf("%s: referenced record does not exist (%s): %w", op, pqErr.Constraint, domain.ErrInvalidInput)
		case pqUniqueViolation:
			return fmt.Errorf("%s: record already exists (%s): %w", op, pqErr.Constraint, domain.ErrInvalidInput)
		case pqCheckViolation:
			return fmt.Errorf("%s: constraint violation (%s): %w", op, pqErr.Constraint, domain.ErrInvalidInput)
		case pqQueryCanceled:
			return domain.NewStorageError(op, errors.Wrap(err, "statement timeout exceeded"))
		}
	}
	return domain.NewStorageError(op, errors.WithStack(err))
}

func notFound(kind string, id int64) error {
	return fmt.Errorf("%s with id %d: %w", kind, id, domain.ErrNotFound)
}
