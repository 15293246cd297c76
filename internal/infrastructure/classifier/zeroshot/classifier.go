// Package zeroshot classifies text by comparing its embedding against
// embeddings of natural-language category descriptions.
package zeroshot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirillkom/document-classifier/internal/core/domain"
	"github.com/kirillkom/document-classifier/internal/core/ports"
)

const (
	DefaultChunkSize = 512
	DefaultMaxChunks = 30

	// lowConfidence is the per-category share below which the normalized
	// method gives up and assigns the text to Other.
	lowConfidence      = 0.1
	lowConfidenceRest  = 0.01
	lowConfidenceOther = 0.94
)

type Options struct {
	ChunkSize int
	MaxChunks int
	Logger    *slog.Logger
}

type Classifier struct {
	store      *PrototypeStore
	embedder   ports.Embedder
	normalizer ports.TextNormalizer
	chunker    ports.Chunker
	chunkSize  int
	maxChunks  int
	logger     *slog.Logger
}

func New(store *PrototypeStore, embedder ports.Embedder, normalizer ports.TextNormalizer, chunker ports.Chunker, opts Options) *Classifier {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.MaxChunks <= 0 {
		opts.MaxChunks = DefaultMaxChunks
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{
		store:      store,
		embedder:   embedder,
		normalizer: normalizer,
		chunker:    chunker,
		chunkSize:  opts.ChunkSize,
		maxChunks:  opts.MaxChunks,
		logger:     logger.With("component", "classifier"),
	}
}

// Degraded reports whether classification will always fall back.
func (c *Classifier) Degraded() bool {
	return c.store.Degraded() || c.embedder == nil || c.normalizer == nil || c.chunker == nil
}

// Classify splits the normalized text into chunks, scores each chunk against
// every category prototype and averages the rescaled similarities. It never
// fails: anything that prevents scoring yields {"Other": 1.0}.
func (c *Classifier) Classify(ctx context.Context, text string) (result domain.Classification) {
	defer func() {
		if r := recover(); r != nil {
			result = c.fallback(domain.MethodChunked, fmt.Sprintf("panic: %v", r))
		}
	}()

	if c.Degraded() {
		return c.fallback(domain.MethodChunked, c.degradedReason())
	}

	chunks := c.collectChunks(c.normalizer.Normalize(text))
	if len(chunks) == 0 {
		return c.fallback(domain.MethodChunked, "no text to classify")
	}

	vectors, err := c.embedder.Embed(ctx, chunks)
	if err != nil {
		return c.fallback(domain.MethodChunked, fmt.Sprintf("embed chunks: %v", err))
	}
	if len(vectors) != len(chunks) {
		return c.fallback(domain.MethodChunked, fmt.Sprintf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks)))
	}

	names := c.store.Categories()
	sums := make([]float64, len(names))
	for _, vec := range vectors {
		for i, name := range names {
			proto, _ := c.store.Vector(name)
			s, err := cosine(vec, proto)
			if err != nil {
				return c.fallback(domain.MethodChunked, fmt.Sprintf("score %q: %v", name, err))
			}
			sums[i] += rescale(s)
		}
	}

	scores := make(domain.Distribution, len(names))
	for i, name := range names {
		scores[i] = domain.Score{Category: name, Value: sums[i] / float64(len(vectors))}
	}
	scores.SortDescending()

	top, _ := scores.Top()
	c.logger.Debug("classification_completed",
		"method", domain.MethodChunked,
		"chunks", len(chunks),
		"top_category", top.Category,
		"top_score", top.Value,
	)
	return domain.Classification{Scores: scores}
}

// ClassifyNormalized embeds the whole text once and spreads one unit of
// confidence across categories in proportion to raw cosine similarity.
// Empty text or a degraded store yields a uniform distribution.
func (c *Classifier) ClassifyNormalized(ctx context.Context, text string) (result domain.Classification) {
	defer func() {
		if r := recover(); r != nil {
			result = c.fallback(domain.MethodNormalized, fmt.Sprintf("panic: %v", r))
		}
	}()

	if strings.TrimSpace(text) == "" {
		return c.uniform("no text to classify")
	}
	if c.Degraded() {
		return c.uniform(c.degradedReason())
	}

	vectors, err := c.embedder.Embed(ctx, []string{c.normalizer.Normalize(text)})
	if err != nil {
		return c.fallback(domain.MethodNormalized, fmt.Sprintf("embed text: %v", err))
	}
	if len(vectors) != 1 {
		return c.fallback(domain.MethodNormalized, fmt.Sprintf("embedder returned %d vectors for 1 text", len(vectors)))
	}

	names := c.store.Categories()
	raw := make([]float64, len(names))
	total := 0.0
	for i, name := range names {
		proto, _ := c.store.Vector(name)
		s, err := cosine(vectors[0], proto)
		if err != nil {
			return c.fallback(domain.MethodNormalized, fmt.Sprintf("score %q: %v", name, err))
		}
		raw[i] = s
		total += s
	}
	if total == 0 {
		total = 1
	}

	scores := make(domain.Distribution, len(names))
	confident := false
	for i, name := range names {
		v := raw[i] / total
		scores[i] = domain.Score{Category: name, Value: v}
		if name != domain.CategoryOther && v >= lowConfidence {
			confident = true
		}
	}
	if !confident {
		for i := range scores {
			scores[i].Value = lowConfidenceRest
			if scores[i].Category == domain.CategoryOther {
				scores[i].Value = lowConfidenceOther
			}
		}
	}
	scores.SortDescending()
	return domain.Classification{Scores: scores}
}

func (c *Classifier) collectChunks(normalized string) []string {
	chunks := make([]string, 0, c.maxChunks)
	for chunk := range c.chunker.Chunks(normalized, c.chunkSize) {
		if strings.TrimSpace(chunk.Text) == "" {
			continue
		}
		chunks = append(chunks, chunk.Text)
		if len(chunks) == c.maxChunks {
			break
		}
	}
	return chunks
}

func (c *Classifier) uniform(reason string) domain.Classification {
	categories := domain.Categories()
	scores := make(domain.Distribution, len(categories))
	for i, name := range categories {
		scores[i] = domain.Score{Category: name, Value: 1.0 / float64(len(categories))}
	}
	c.logger.Info("classification_uniform", "method", domain.MethodNormalized, "reason", reason)
	return domain.Classification{Scores: scores, Fallback: true, Reason: reason}
}

func (c *Classifier) fallback(method domain.ClassificationMethod, reason string) domain.Classification {
	c.logger.Warn("classification_fallback", "method", method, "reason", reason)
	return domain.FallbackClassification(reason)
}

func (c *Classifier) degradedReason() string {
	if cause := c.store.Cause(); cause != nil {
		return "prototype store degraded: " + cause.Error()
	}
	if c.store.Degraded() {
		return "prototype store is empty"
	}
	return "classifier is missing a collaborator"
}
