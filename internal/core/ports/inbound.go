package ports

import (
	"context"

	"github.com/ragul2105/plant-disease-api/internal/core/domain"
)

// PredictionRequest carries one uploaded image through the diagnosis
// pipeline. PlantType is the optional lowercase filter; Claims is non-nil
// only for authenticated requests and enables history recording.
type PredictionRequest struct {
	Image     []byte
	Filename  string
	PlantType string
	Claims    *domain.AuthClaims
}

// DiseasePredictor is the inbound contract for the diagnosis pipeline.
type DiseasePredictor interface {
	Predict(ctx context.Context, req PredictionRequest) (domain.DiagnosisResult, error)
}

// HistoryService reads a user's prediction history.
type HistoryService interface {
	ListByUser(ctx context.Context, userID string, page, limit int) ([]domain.HistoryRecord, error)
}

// HistoryPersister is the inbound contract for the asynchronous
// history-persistence worker.
type HistoryPersister interface {
	Persist(ctx context.Context, record domain.HistoryRecord) error
}

// AuthService verifies identity tokens and manages stored profiles.
type AuthService interface {
	Login(ctx context.Context, token string) (*domain.AuthClaims, *domain.UserProfile, error)
	Register(ctx context.Context, token string, profile domain.UserProfile) (*domain.UserProfile, error)
	Verify(ctx context.Context, token string) (*domain.AuthClaims, error)
}
