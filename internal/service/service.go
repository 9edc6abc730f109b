// Package service orchestrates intents: validate, persist, then resolve.
package service

import (
	"context"
	"errors"

	"inkpost/internal/models"
	"inkpost/internal/observability"
)

// rejected records a validation failure against schema and returns err unchanged.
func rejected(ctx context.Context, log *observability.ServiceLogger, schema string, err error) error {
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != models.CodeValidation {
		return err
	}
	observability.RecordValidationFailure(schema, appErr.Branch)
	log.Warn(ctx, "input rejected", map[string]interface{}{
		"schema": schema,
		"branch": appErr.Branch,
		"fields": len(appErr.Fields),
	})
	return err
}

// finish closes span, marking it failed when err is not nil.
func finish(span *observability.Span, err error) {
	if err != nil {
		span.SetError(err)
	}
	span.End()
}
