package usecase

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/ragul2105/plant-disease-api/internal/core/domain"
	"github.com/ragul2105/plant-disease-api/internal/core/ports"
)

type preprocessorFake struct {
	size int
	err  error
}

func (f *preprocessorFake) Preprocess(data []byte, size int) (domain.ImageTensor, error) {
	f.size = size
	if f.err != nil {
		return domain.ImageTensor{}, f.err
	}
	return domain.ImageTensor{Data: make([]float32, size*size*3), Size: size}, nil
}

type engineFake struct {
	vector   []float32
	inferErr error
	sizeErr  error
	calls    int
}

func (f *engineFake) Ready() bool { return f.sizeErr == nil }
func (f *engineFake) InputSize() (int, error) {
	if f.sizeErr != nil {
		return 0, f.sizeErr
	}
	return 160, nil
}
func (f *engineFake) Infer(context.Context, domain.ImageTensor) ([]float32, error) {
	f.calls++
	if f.inferErr != nil {
		return nil, f.inferErr
	}
	return f.vector, nil
}
func (f *engineFake) Reload(context.Context) error { return nil }

type storageFake struct {
	keys []string
	err  error
}

func (f *storageFake) Save(_ context.Context, key string, _ io.Reader) error {
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, key)
	return nil
}
func (f *storageFake) Open(context.Context, string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}

type queueFake struct {
	published []domain.HistoryRecord
	err       error
}

func (f *queueFake) PublishPredictionRecorded(_ context.Context, record domain.HistoryRecord) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, record)
	return nil
}
func (f *queueFake) SubscribePredictionRecorded(context.Context, func(context.Context, domain.HistoryRecord) error) error {
	return nil
}

func tomatoVector(score float32) []float32 {
	vector := make([]float32, domain.ClassCount())
	vector[31] = score
	return vector
}

func TestPredictResolvesAndAssembles(t *testing.T) {
	engine := &engineFake{vector: tomatoVector(0.925)}
	uc := NewPredictUseCase(&preprocessorFake{}, engine, nil, nil, 16<<20)

	result, err := uc.Predict(context.Background(), ports.PredictionRequest{
		Image:     []byte("jpeg-bytes"),
		Filename:  "leaf.jpg",
		PlantType: "tomato",
	})
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if result.PlantName != "Tomato" || result.DiseaseType != "Late_blight" {
		t.Fatalf("unexpected diagnosis %s/%s", result.PlantName, result.DiseaseType)
	}
	if result.Confidence < 0 || result.Confidence > 100 {
		t.Fatalf("confidence out of range: %v", result.Confidence)
	}
	if result.Severity != domain.SeverityHigh {
		t.Fatalf("expected high severity, got %v", result.Severity)
	}
	if len(result.Recommendations) == 0 {
		t.Fatalf("expected recommendations")
	}
}

func TestPredictRestrictionInvariant(t *testing.T) {
	// Global winner is a tomato class; a potato filter must keep the
	// diagnosis inside the potato subset.
	engine := &engineFake{vector: tomatoVector(0.95)}
	uc := NewPredictUseCase(&preprocessorFake{}, engine, nil, nil, 16<<20)

	result, err := uc.Predict(context.Background(), ports.PredictionRequest{
		Image:     []byte("img"),
		PlantType: "potato",
	})
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if result.PlantName != "Potato" {
		t.Fatalf("filtered prediction escaped the potato subset: %s", result.PlantName)
	}
}

func TestPredictEmptyImage(t *testing.T) {
	uc := NewPredictUseCase(&preprocessorFake{}, &engineFake{vector: tomatoVector(0.9)}, nil, nil, 16<<20)
	_, err := uc.Predict(context.Background(), ports.PredictionRequest{})
	if !domain.IsKind(err, domain.ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}
}

func TestPredictOversizedImage(t *testing.T) {
	uc := NewPredictUseCase(&preprocessorFake{}, &engineFake{vector: tomatoVector(0.9)}, nil, nil, 4)
	_, err := uc.Predict(context.Background(), ports.PredictionRequest{Image: []byte("too large")})
	if !domain.IsKind(err, domain.ErrOversizedInput) {
		t.Fatalf("expected ErrOversizedInput, got %v", err)
	}
}

func TestPredictUnsupportedPlantIsHardError(t *testing.T) {
	engine := &engineFake{vector: tomatoVector(0.9)}
	uc := NewPredictUseCase(&preprocessorFake{}, engine, nil, nil, 16<<20)

	_, err := uc.Predict(context.Background(), ports.PredictionRequest{
		Image:     []byte("img"),
		PlantType: "banana",
	})
	if !domain.IsKind(err, domain.ErrUnsupportedPlant) {
		t.Fatalf("expected ErrUnsupportedPlant, got %v", err)
	}
	if engine.calls != 0 {
		t.Fatalf("inference must not run for an unsupported filter")
	}
}

func TestPredictModelUnavailable(t *testing.T) {
	engine := &engineFake{sizeErr: domain.WrapError(domain.ErrModelUnavailable, "load", errors.New("no model file"))}
	uc := NewPredictUseCase(&preprocessorFake{}, engine, nil, nil, 16<<20)

	_, err := uc.Predict(context.Background(), ports.PredictionRequest{Image: []byte("img")})
	if !domain.IsKind(err, domain.ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestPredictRecordsHistoryForAuthenticatedUser(t *testing.T) {
	storage := &storageFake{}
	queue := &queueFake{}
	uc := NewPredictUseCase(&preprocessorFake{}, &engineFake{vector: tomatoVector(0.9)}, storage, queue, 16<<20)

	_, err := uc.Predict(context.Background(), ports.PredictionRequest{
		Image:     []byte("img"),
		Filename:  "my leaf.jpg",
		PlantType: "tomato",
		Claims:    &domain.AuthClaims{UID: "user-1"},
	})
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if len(storage.keys) != 1 {
		t.Fatalf("expected one stored image, got %d", len(storage.keys))
	}
	if len(queue.published) != 1 {
		t.Fatalf("expected one published record, got %d", len(queue.published))
	}
	record := queue.published[0]
	if record.UserID != "user-1" || record.PlantType != "tomato" {
		t.Fatalf("unexpected record %+v", record)
	}
	if record.ImageFilename != storage.keys[0] {
		t.Fatalf("record filename %q does not match stored key %q", record.ImageFilename, storage.keys[0])
	}
}

func TestPredictHistoryFailureDoesNotFailPrediction(t *testing.T) {
	storage := &storageFake{err: errors.New("disk full")}
	queue := &queueFake{}
	uc := NewPredictUseCase(&preprocessorFake{}, &engineFake{vector: tomatoVector(0.9)}, storage, queue, 16<<20)

	_, err := uc.Predict(context.Background(), ports.PredictionRequest{
		Image:  []byte("img"),
		Claims: &domain.AuthClaims{UID: "user-1"},
	})
	if err != nil {
		t.Fatalf("Predict() must not fail on history errors, got %v", err)
	}
	if len(queue.published) != 0 {
		t.Fatalf("record must not publish when image save fails")
	}
}

func TestPredictAnonymousSkipsHistory(t *testing.T) {
	storage := &storageFake{}
	queue := &queueFake{}
	uc := NewPredictUseCase(&preprocessorFake{}, &engineFake{vector: tomatoVector(0.9)}, storage, queue, 16<<20)

	if _, err := uc.Predict(context.Background(), ports.PredictionRequest{Image: []byte("img")}); err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if len(storage.keys) != 0 || len(queue.published) != 0 {
		t.Fatalf("anonymous prediction must not record history")
	}
}
