package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/document-classifier/internal/core/domain"
	"github.com/kirillkom/document-classifier/internal/core/ports"
)

type ReclassifyOptions struct {
	Logger  *slog.Logger
	Metrics ports.PipelineMetrics
	Now     func() time.Time
}

// ReclassifyUseCase recomputes the stored prediction of every document.
// With a queue, Trigger only publishes a job and a worker calls RunAll.
// Without one, the run happens on a background goroutine.
type ReclassifyUseCase struct {
	repo       ports.DocumentRepository
	classifier ports.DocumentClassifier
	queue      ports.JobQueue
	metrics    ports.PipelineMetrics
	now        func() time.Time
	logger     *slog.Logger
}

func NewReclassifyUseCase(
	repo ports.DocumentRepository,
	classifier ports.DocumentClassifier,
	queue ports.JobQueue,
	opts ReclassifyOptions,
) *ReclassifyUseCase {
	uc := &ReclassifyUseCase{
		repo:       repo,
		classifier: classifier,
		queue:      queue,
		metrics:    opts.Metrics,
		now:        opts.Now,
		logger:     loggerOrDefault(opts.Logger, "reclassify"),
	}
	if uc.metrics == nil {
		uc.metrics = noopMetrics{}
	}
	if uc.now == nil {
		uc.now = func() time.Time { return time.Now().UTC() }
	}
	return uc
}

// Trigger reports how many documents exist and, when there is at least one,
// starts a reclassification run. The bool tells whether a run was started.
func (uc *ReclassifyUseCase) Trigger(ctx context.Context, reason string) (*domain.ReclassifyStats, bool, error) {
	items, err := uc.repo.ListContents(ctx)
	if err != nil {
		return nil, false, domain.NewCodedError(domain.ErrDatabase, domain.CodeDatabaseError,
			fmt.Sprintf("Error retrieving documents: %v", err), nil)
	}
	if len(items) == 0 {
		return &domain.ReclassifyStats{}, false, nil
	}

	job := domain.ReclassifyJob{
		ID:          uuid.NewString(),
		Reason:      reason,
		RequestedAt: uc.now(),
	}
	if uc.queue != nil {
		if err := uc.queue.PublishReclassify(ctx, job); err != nil {
			return nil, false, err
		}
	} else {
		go func() {
			if _, err := uc.RunAll(context.WithoutCancel(ctx), job); err != nil {
				uc.logger.Error("reclassify_run_failed", "job_id", job.ID, "error", err)
			}
		}()
	}

	uc.logger.Info("reclassify_started", "job_id", job.ID, "reason", reason, "documents", len(items))
	return &domain.ReclassifyStats{JobID: job.ID, Found: len(items)}, true, nil
}

// RunAll classifies every stored document with the chunked method. Empty
// content is skipped and per-document failures do not stop the run.
func (uc *ReclassifyUseCase) RunAll(ctx context.Context, job domain.ReclassifyJob) (*domain.ReclassifyStats, error) {
	started := time.Now()
	items, err := uc.repo.ListContents(ctx)
	if err != nil {
		return nil, domain.WrapError(domain.ErrDatabase, "list contents", err)
	}

	stats := &domain.ReclassifyStats{JobID: job.ID, Found: len(items)}
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			uc.logger.Warn("reclassify_interrupted", "job_id", job.ID, "processed", stats.Updated+stats.Skipped+stats.Failed)
			uc.metrics.Reclassified(*stats)
			return stats, err
		}
		if item.Content == "" {
			stats.Skipped++
			continue
		}

		classification := uc.classifier.Classify(ctx, item.Content)
		uc.metrics.Classified(domain.MethodChunked, classification.Fallback)
		if classification.Fallback {
			stats.Fallbacks++
		}
		if err := uc.repo.SaveCategoryPrediction(ctx, item.ID, classification.Scores); err != nil {
			uc.logger.Error("reclassify_document_failed", "job_id", job.ID, "document_id", item.ID, "error", err)
			stats.Failed++
			continue
		}
		stats.Updated++
	}

	uc.metrics.Reclassified(*stats)
	uc.logger.Info("reclassify_completed",
		"job_id", job.ID,
		"reason", job.Reason,
		"found", stats.Found,
		"updated", stats.Updated,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
		"fallbacks", stats.Fallbacks,
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return stats, nil
}
