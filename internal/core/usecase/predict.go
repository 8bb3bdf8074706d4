package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ragul2105/plant-disease-api/internal/core/domain"
	"github.com/ragul2105/plant-disease-api/internal/core/ports"
)

// PredictUseCase drives the diagnosis pipeline: bytes -> tensor ->
// prediction vector -> resolved class -> assembled result. History
// recording for authenticated users is best effort and never fails the
// prediction.
type PredictUseCase struct {
	preprocessor ports.ImagePreprocessor
	engine       ports.InferenceEngine
	storage      ports.ObjectStorage
	queue        ports.MessageQueue
	maxBytes     int
}

func NewPredictUseCase(
	preprocessor ports.ImagePreprocessor,
	engine ports.InferenceEngine,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
	maxBytes int,
) *PredictUseCase {
	return &PredictUseCase{
		preprocessor: preprocessor,
		engine:       engine,
		storage:      storage,
		queue:        queue,
		maxBytes:     maxBytes,
	}
}

func (uc *PredictUseCase) Predict(ctx context.Context, req ports.PredictionRequest) (domain.DiagnosisResult, error) {
	if len(req.Image) == 0 {
		return domain.DiagnosisResult{}, domain.WrapError(domain.ErrInvalidImage, "predict", errors.New("empty image payload"))
	}
	if uc.maxBytes > 0 && len(req.Image) > uc.maxBytes {
		return domain.DiagnosisResult{}, domain.WrapError(domain.ErrOversizedInput, "predict",
			fmt.Errorf("image is %d bytes, cap is %d", len(req.Image), uc.maxBytes))
	}

	var filter []int
	plantType := strings.ToLower(strings.TrimSpace(req.PlantType))
	if plantType != "" {
		ids, ok := domain.FilterFor(plantType)
		if !ok {
			return domain.DiagnosisResult{}, domain.WrapError(domain.ErrUnsupportedPlant, "predict",
				fmt.Errorf("plant type %q", plantType))
		}
		filter = ids
	}

	size, err := uc.engine.InputSize()
	if err != nil {
		return domain.DiagnosisResult{}, err
	}

	tensor, err := uc.preprocessor.Preprocess(req.Image, size)
	if err != nil {
		return domain.DiagnosisResult{}, err
	}

	vector, err := uc.engine.Infer(ctx, tensor)
	if err != nil {
		return domain.DiagnosisResult{}, err
	}

	classID, score, err := domain.Resolve(vector, filter)
	if err != nil {
		return domain.DiagnosisResult{}, domain.WrapError(domain.ErrPredictionFailed, "resolve prediction", err)
	}

	result := domain.AssembleDiagnosis(classID, score, time.Now())

	if req.Claims != nil && req.Claims.UID != "" {
		uc.recordHistory(ctx, req, plantType, result)
	}
	return result, nil
}

// recordHistory stores the uploaded image and publishes the history record
// for the worker. Failures are logged only.
func (uc *PredictUseCase) recordHistory(ctx context.Context, req ports.PredictionRequest, plantType string, result domain.DiagnosisResult) {
	if uc.storage == nil || uc.queue == nil {
		return
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(req.Filename))

	if err := uc.storage.Save(ctx, storageKey, bytes.NewReader(req.Image)); err != nil {
		slog.Error("history_image_save_failed", "user_id", req.Claims.UID, "error", err)
		return
	}

	record := domain.HistoryRecord{
		ID:            id,
		UserID:        req.Claims.UID,
		PlantType:     plantType,
		Result:        result,
		ImageFilename: storageKey,
		CreatedAt:     time.Now().UTC(),
	}
	if err := uc.queue.PublishPredictionRecorded(ctx, record); err != nil {
		slog.Error("history_publish_failed", "user_id", req.Claims.UID, "record_id", id, "error", err)
	}
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." {
		return "leaf.bin"
	}
	return base
}
