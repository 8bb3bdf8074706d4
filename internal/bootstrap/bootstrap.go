package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ragul2105/plant-disease-api/internal/config"
	"github.com/ragul2105/plant-disease-api/internal/core/domain"
	"github.com/ragul2105/plant-disease-api/internal/core/ports"
	"github.com/ragul2105/plant-disease-api/internal/core/usecase"
	"github.com/ragul2105/plant-disease-api/internal/infrastructure/identity"
	"github.com/ragul2105/plant-disease-api/internal/infrastructure/knowledge"
	"github.com/ragul2105/plant-disease-api/internal/infrastructure/model/onnx"
	"github.com/ragul2105/plant-disease-api/internal/infrastructure/queue/nats"
	"github.com/ragul2105/plant-disease-api/internal/infrastructure/repository/postgres"
	"github.com/ragul2105/plant-disease-api/internal/infrastructure/resilience"
	"github.com/ragul2105/plant-disease-api/internal/infrastructure/storage/localfs"
	"github.com/ragul2105/plant-disease-api/internal/infrastructure/vision"
)

// App wires the shared dependency graph for the api and worker binaries.
type App struct {
	Config config.Config

	Engine    ports.InferenceEngine
	Queue     ports.MessageQueue
	Database  ports.Pinger
	Identity  ports.Pinger
	PredictUC ports.DiseasePredictor
	HistoryUC ports.HistoryService
	PersistUC ports.HistoryPersister
	AuthUC    ports.AuthService
	LookupUC  *usecase.LookupUseCase

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	historyRepo := postgres.NewHistoryRepository(db)
	if err := historyRepo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	userRepo := postgres.NewUserRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	kb, err := knowledge.Load()
	if err != nil {
		return nil, fmt.Errorf("load plant knowledge: %w", err)
	}

	engine := onnx.NewEngine(cfg.ModelPath, cfg.ModelMetadataPath, domain.ClassCount())
	// A missing model is tolerated at startup; /api/health reports the
	// state and the first prediction retries the load.
	if err := engine.Reload(ctx); err != nil {
		slog.Warn("model not loaded at startup", "error", err)
	}

	verifier := identity.New(cfg.IdentityURL, cfg.IdentityAPIKey, executor)

	predictUC := usecase.NewPredictUseCase(
		vision.NewPreprocessor(),
		engine,
		storage,
		queue,
		int(cfg.MaxUploadBytes),
	)
	historyUC := usecase.NewHistoryUseCase(historyRepo, cfg.HistoryDefaultLimit, cfg.HistoryMaxLimit)
	persistUC := usecase.NewRecordHistoryUseCase(historyRepo)
	authUC := usecase.NewAuthUseCase(verifier, userRepo)
	lookupUC := usecase.NewLookupUseCase(kb)

	return &App{
		Config: cfg,

		Engine:    engine,
		Queue:     queue,
		Database:  historyRepo,
		Identity:  verifier,
		PredictUC: predictUC,
		HistoryUC: historyUC,
		PersistUC: persistUC,
		AuthUC:    authUC,
		LookupUC:  lookupUC,

		closeFn: func() {
			queue.Close()
			engine.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
