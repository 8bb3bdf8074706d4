package httpadapter

import (
	"errors"
	"net/http"

	"github.com/ragul2105/plant-disease-api/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidImage),
		domain.IsKind(err, domain.ErrOversizedInput),
		domain.IsKind(err, domain.ErrUnsupportedPlant),
		domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case domain.IsKind(err, domain.ErrNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrModelUnavailable),
		domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// publicErrorMessage hides internals on 5xx while keeping 4xx actionable.
func publicErrorMessage(err error, status int) string {
	switch {
	case domain.IsKind(err, domain.ErrInvalidImage):
		return "Invalid or corrupted image"
	case domain.IsKind(err, domain.ErrOversizedInput):
		return "Image too large. Maximum size is 16MB"
	case domain.IsKind(err, domain.ErrModelUnavailable):
		return "Model not available"
	case domain.IsKind(err, domain.ErrUnauthorized):
		return "Invalid token"
	case status >= 500:
		return "Internal server error"
	default:
		return err.Error()
	}
}

func errorKindLabel(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrInvalidImage):
		return "invalid_image"
	case domain.IsKind(err, domain.ErrOversizedInput):
		return "oversized_input"
	case domain.IsKind(err, domain.ErrUnsupportedPlant):
		return "unsupported_plant"
	case domain.IsKind(err, domain.ErrModelUnavailable):
		return "model_unavailable"
	case domain.IsKind(err, domain.ErrPredictionFailed):
		return "prediction_failed"
	case domain.IsKind(err, domain.ErrTemporary):
		return "temporary"
	default:
		return "internal"
	}
}

func asMaxBytesError(err error, target **http.MaxBytesError) bool {
	return errors.As(err, target)
}
