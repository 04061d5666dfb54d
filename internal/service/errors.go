package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/driver_availability/internal/model"
)

// storageError classifies a failed store call. Cancellation of ctx wins over the
// store's own error. Not-found and validation errors from the store keep their
// kind; anything else is wrapped in ErrStorage with the cause kept.
func storageError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", op, ctxErr)
	}
	if errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrValidation) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", model.ErrStorage, op, err)
}
