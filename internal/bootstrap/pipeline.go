package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/document-classifier/internal/config"
	"github.com/kirillkom/document-classifier/internal/core/ports"
	"github.com/kirillkom/document-classifier/internal/infrastructure/chunking"
	"github.com/kirillkom/document-classifier/internal/infrastructure/classifier/zeroshot"
	"github.com/kirillkom/document-classifier/internal/infrastructure/embedding/tfidf"
	"github.com/kirillkom/document-classifier/internal/infrastructure/extractor"
	"github.com/kirillkom/document-classifier/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/document-classifier/internal/infrastructure/resilience"
)

// Pipeline is the storage-free part of the service: extraction and
// classification. The CLI runs on it alone.
type Pipeline struct {
	Extractor  *extractor.Extractor
	Classifier *zeroshot.Classifier
	Executor   *resilience.Executor
}

func NewPipeline(ctx context.Context, cfg config.Config, opts Options) (*Pipeline, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	execOpts := []resilience.Option{resilience.WithLogger(logger)}
	if opts.Metrics != nil {
		execOpts = append(execOpts, resilience.WithObserver(opts.Metrics))
	}
	executor := resilience.NewExecutor(cfg.Resilience, execOpts...)

	descriptions, err := zeroshot.DefaultCategories()
	if err != nil {
		return nil, fmt.Errorf("load category descriptions: %w", err)
	}

	embedder, err := newEmbedder(cfg, executor, descriptions)
	if err != nil {
		return nil, err
	}

	splitter := chunking.NewSplitter(cfg.ChunkSize)
	store := zeroshot.NewPrototypeStore(ctx, embedder, splitter, descriptions)
	if store.Degraded() {
		logger.Warn("classifier_degraded", "provider", cfg.EmbeddingProvider, "error", store.Cause())
	} else {
		logger.Info("classifier_ready", "provider", cfg.EmbeddingProvider, "categories", len(store.Categories()))
	}

	return &Pipeline{
		Extractor: extractor.New(extractor.Options{
			MinScrapedChars: cfg.MinScrapedChars,
			Logger:          logger,
		}),
		Classifier: zeroshot.New(store, embedder, splitter, splitter, zeroshot.Options{
			ChunkSize: cfg.ChunkSize,
			MaxChunks: cfg.MaxChunks,
			Logger:    logger,
		}),
		Executor: executor,
	}, nil
}

func newEmbedder(cfg config.Config, executor *resilience.Executor, descriptions []zeroshot.CategoryDescription) (ports.Embedder, error) {
	switch cfg.EmbeddingProvider {
	case config.EmbeddingProviderOllama, "":
		client := ollama.New(cfg.OllamaURL, cfg.OllamaEmbedModel, ollama.Options{
			Timeout:  cfg.OllamaTimeout,
			Executor: executor,
		})
		return ollama.NewEmbedder(client), nil
	case config.EmbeddingProviderTFIDF:
		corpus := make([]string, len(descriptions))
		for i, d := range descriptions {
			corpus[i] = chunking.Normalize(d.Description)
		}
		embedder, err := tfidf.New(corpus)
		if err != nil {
			return nil, fmt.Errorf("fit tfidf embedder: %w", err)
		}
		return embedder, nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.EmbeddingProvider)
	}
}
