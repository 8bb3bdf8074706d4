package usecase

import (
	"context"

	"github.com/ragul2105/plant-disease-api/internal/core/domain"
	"github.com/ragul2105/plant-disease-api/internal/core/ports"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

// HistoryUseCase serves a user's prediction history, newest first.
type HistoryUseCase struct {
	repo         ports.HistoryRepository
	defaultLimit int
	maxLimit     int
}

func NewHistoryUseCase(repo ports.HistoryRepository, defaultLimit, maxLimit int) *HistoryUseCase {
	if defaultLimit < 1 {
		defaultLimit = defaultHistoryLimit
	}
	if maxLimit < 1 {
		maxLimit = maxHistoryLimit
	}
	if maxLimit < defaultLimit {
		defaultLimit = maxLimit
	}
	return &HistoryUseCase{
		repo:         repo,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

func (uc *HistoryUseCase) ListByUser(ctx context.Context, userID string, page, limit int) ([]domain.HistoryRecord, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = uc.defaultLimit
	}
	if limit > uc.maxLimit {
		limit = uc.maxLimit
	}
	offset := (page - 1) * limit

	records, err := uc.repo.ListByUser(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []domain.HistoryRecord{}
	}
	return records, nil
}

// RecordHistoryUseCase is the worker-side persister for prediction events.
type RecordHistoryUseCase struct {
	repo ports.HistoryRepository
}

func NewRecordHistoryUseCase(repo ports.HistoryRepository) *RecordHistoryUseCase {
	return &RecordHistoryUseCase{repo: repo}
}

func (uc *RecordHistoryUseCase) Persist(ctx context.Context, record domain.HistoryRecord) error {
	return uc.repo.Insert(ctx, &record)
}
