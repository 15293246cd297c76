package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/document-classifier/internal/config"
	"github.com/kirillkom/document-classifier/internal/core/ports"
	"github.com/kirillkom/document-classifier/internal/core/usecase"
	"github.com/kirillkom/document-classifier/internal/infrastructure/queue/nats"
	"github.com/kirillkom/document-classifier/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/document-classifier/internal/infrastructure/storage/localfs"
)

// Options carries the process-specific collaborators. Metrics, when set,
// also observes retries and breaker transitions.
type Options struct {
	Logger  *slog.Logger
	Metrics Metrics
}

// Metrics is what the prometheus pipeline collectors provide.
type Metrics interface {
	ports.PipelineMetrics
	RetryAttempt(operation string)
	BreakerStateChanged(operation, state string)
}

type App struct {
	Config   config.Config
	Pipeline *Pipeline

	Queue        ports.JobQueue
	Repo         ports.DocumentRepository
	Uploader     *usecase.UploadUseCase
	Documents    *usecase.DocumentsUseCase
	Diagnoser    *usecase.DiagnoseUseCase
	Reclassifier *usecase.ReclassifyUseCase
	TextClassify *usecase.ClassifyTextUseCase

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	pipeline, err := NewPipeline(ctx, cfg, opts)
	if err != nil {
		return nil, err
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: pipeline.Executor,
		Logger:             logger,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	var metrics ports.PipelineMetrics
	if opts.Metrics != nil {
		metrics = opts.Metrics
	}

	return &App{
		Config:   cfg,
		Pipeline: pipeline,
		Queue:    queue,
		Repo:     repo,

		Uploader: usecase.NewUploadUseCase(repo, storage, pipeline.Extractor, pipeline.Classifier, usecase.UploadOptions{
			MaxBytes:     cfg.MaxUploadBytes,
			Logger:       logger,
			Metrics:      metrics,
			PDFInspector: pipeline.Extractor,
		}),
		Documents: usecase.NewDocumentsUseCase(repo, storage, logger),
		Diagnoser: usecase.NewDiagnoseUseCase(pipeline.Extractor, pipeline.Extractor),
		Reclassifier: usecase.NewReclassifyUseCase(repo, pipeline.Classifier, queue, usecase.ReclassifyOptions{
			Logger:  logger,
			Metrics: metrics,
		}),
		TextClassify: usecase.NewClassifyTextUseCase(pipeline.Classifier, metrics),

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
