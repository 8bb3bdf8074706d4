package ports

import (
	"context"
	"io"

	"github.com/ragul2105/plant-disease-api/internal/core/domain"
)

// ImagePreprocessor turns raw upload bytes into a model-ready tensor.
type ImagePreprocessor interface {
	Preprocess(data []byte, size int) (domain.ImageTensor, error)
}

// InferenceEngine owns the loaded model handle. InputSize and Infer attempt
// a single-flight lazy load before failing with ErrModelUnavailable.
type InferenceEngine interface {
	Ready() bool
	InputSize() (int, error)
	Infer(ctx context.Context, tensor domain.ImageTensor) ([]float32, error)
	Reload(ctx context.Context) error
}

// HistoryRepository persists and reads prediction history records.
type HistoryRepository interface {
	Insert(ctx context.Context, record *domain.HistoryRecord) error
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]domain.HistoryRecord, error)
}

// UserRepository stores profiles keyed by the identity-provider uid.
type UserRepository interface {
	Upsert(ctx context.Context, profile *domain.UserProfile) error
	GetByUID(ctx context.Context, uid string) (*domain.UserProfile, error)
}

// TokenVerifier checks a bearer token against the external identity
// provider and returns its decoded claims.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*domain.AuthClaims, error)
}

// MessageQueue publishes/consumes prediction-recorded events.
type MessageQueue interface {
	PublishPredictionRecorded(ctx context.Context, record domain.HistoryRecord) error
	SubscribePredictionRecorded(ctx context.Context, handler func(context.Context, domain.HistoryRecord) error) error
}

// ObjectStorage stores uploaded leaf images.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// PlantKnowledge serves the static plant knowledge base.
type PlantKnowledge interface {
	Plants() map[string]domain.PlantInfo
}

// Pinger reports whether an external collaborator is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
