// Package repository implements the persistence contract over gorm.
package repository

import (
	"context"
	"errors"
	"fmt"

	"inkpost/internal/models"
	"inkpost/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

var dbMetrics = observability.NewDatabaseMetrics()

// begin opens a span and a latency timer for one repository call. The returned
// func must be deferred.
func begin(ctx context.Context, method, table string) (context.Context, func()) {
	ctx, span := observability.TraceRepositoryMethod(ctx, method, table)
	done := dbMetrics.TrackQuery(method, table)
	return ctx, func() {
		done()
		span.End()
	}
}

func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// writeError classifies an error returned by an insert or update on table.
func writeError(resource, table string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	switch {
	case isForeignKeyViolation(err):
		observability.ConstraintViolations.WithLabelValues(table).Inc()
		return models.NewConstraintViolation(resource, err)
	case isDuplicateKey(err):
		conflict := models.NewConflictError(fmt.Sprintf("%s already exists", resource))
		conflict.Err = err
		return conflict
	default:
		return models.NewInternalError(err)
	}
}

// requireLive fails with a ConstraintViolation when id names no live row of
// model. Soft-deleted rows count as missing even though their foreign keys
// still resolve.
func requireLive(tx *gorm.DB, resource, table string, model any, id uint) error {
	err := tx.Select("id").First(model, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		observability.ConstraintViolations.WithLabelValues(table).Inc()
		return models.NewConstraintViolation(resource, fmt.Errorf("%s %d does not exist", table, id))
	}
	return err
}

// readError maps a missing row to NotFound.
func readError(resource string, id uint, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return models.NewInternalError(err)
}

// page clamps list bounds.
func page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
