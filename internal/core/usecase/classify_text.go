package usecase

import (
	"context"
	"fmt"

	"github.com/kirillkom/document-classifier/internal/core/domain"
	"github.com/kirillkom/document-classifier/internal/core/ports"
)

type ClassifyTextUseCase struct {
	classifier ports.DocumentClassifier
	metrics    ports.PipelineMetrics
}

func NewClassifyTextUseCase(classifier ports.DocumentClassifier, metrics ports.PipelineMetrics) *ClassifyTextUseCase {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &ClassifyTextUseCase{classifier: classifier, metrics: metrics}
}

// ClassifyText runs the requested method; an empty method means chunked.
func (uc *ClassifyTextUseCase) ClassifyText(ctx context.Context, text string, method domain.ClassificationMethod) (domain.Classification, error) {
	var result domain.Classification
	switch method {
	case "", domain.MethodChunked:
		method = domain.MethodChunked
		result = uc.classifier.Classify(ctx, text)
	case domain.MethodNormalized:
		result = uc.classifier.ClassifyNormalized(ctx, text)
	default:
		return domain.Classification{}, domain.NewCodedError(domain.ErrInvalidInput, domain.CodeInvalidRequest,
			fmt.Sprintf("unknown classification method: %s", method),
			map[string]any{"methods": []domain.ClassificationMethod{domain.MethodChunked, domain.MethodNormalized}})
	}
	uc.metrics.Classified(method, result.Fallback)
	return result, nil
}
