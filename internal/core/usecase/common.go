package usecase

import (
	"log/slog"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

type noopMetrics struct{}

func (noopMetrics) ExtractionFailed(string)                      {}
func (noopMetrics) Classified(domain.ClassificationMethod, bool) {}
func (noopMetrics) Reclassified(domain.ReclassifyStats)          {}

func loggerOrDefault(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With("component", component)
}
