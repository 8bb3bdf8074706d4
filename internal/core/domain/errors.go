package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidImage     = errors.New("invalid image format")
	ErrOversizedInput   = errors.New("image too large")
	ErrUnsupportedPlant = errors.New("unsupported plant type")
	ErrModelUnavailable = errors.New("model unavailable")
	ErrPredictionFailed = errors.New("prediction failed")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrNotFound         = errors.New("not found")
	ErrTemporary        = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
