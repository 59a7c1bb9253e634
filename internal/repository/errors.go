package repository

import (
	"errors"
	"fmt"

	"neuron_backoffice/internal/apperrors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// translateError converts driver errors into the shared taxonomy.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("record: %w", apperrors.ErrNotFound)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%v: %w", err, apperrors.ErrConflict)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w", pgErr.ConstraintName, apperrors.ErrConflict)
		case pgForeignKeyViolation:
			return fmt.Errorf("%s still referenced: %w", pgErr.TableName, apperrors.ErrConflict)
		}
	}
	return err
}
