package zeroshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/kirillkom/document-classifier/internal/core/domain"
	"github.com/kirillkom/document-classifier/internal/core/ports"
)

// PrototypeStore holds one embedding per category. It is immutable after
// construction and safe for concurrent reads. A store whose embeddings could
// not be computed is degraded and holds no vectors.
type PrototypeStore struct {
	names   []domain.Category
	vectors map[domain.Category][]float32
	cause   error
}

// NewPrototypeStore normalizes and embeds every description in one batch.
// It does not return an error: failures leave the store degraded.
func NewPrototypeStore(ctx context.Context, embedder ports.Embedder, normalizer ports.TextNormalizer, descriptions []CategoryDescription) *PrototypeStore {
	store, err := buildPrototypes(ctx, embedder, normalizer, descriptions)
	if err != nil {
		return &PrototypeStore{cause: err}
	}
	return store
}

func buildPrototypes(ctx context.Context, embedder ports.Embedder, normalizer ports.TextNormalizer, descriptions []CategoryDescription) (*PrototypeStore, error) {
	if embedder == nil {
		return nil, errors.New("embedder is not configured")
	}
	if len(descriptions) == 0 {
		return nil, errors.New("no category descriptions")
	}

	texts := make([]string, len(descriptions))
	for i, d := range descriptions {
		texts[i] = d.Description
		if normalizer != nil {
			texts[i] = normalizer.Normalize(d.Description)
		}
	}

	vectors, err := embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed category descriptions: %w", err)
	}
	if len(vectors) != len(descriptions) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d categories", len(vectors), len(descriptions))
	}

	store := &PrototypeStore{
		names:   make([]domain.Category, 0, len(descriptions)),
		vectors: make(map[domain.Category][]float32, len(descriptions)),
	}
	dim := len(vectors[0])
	for i, d := range descriptions {
		if len(vectors[i]) == 0 || len(vectors[i]) != dim {
			return nil, fmt.Errorf("category %q: invalid embedding dimension %d", d.Name, len(vectors[i]))
		}
		store.names = append(store.names, d.Name)
		store.vectors[d.Name] = append([]float32(nil), vectors[i]...)
	}
	for _, c := range domain.Categories() {
		if _, ok := store.vectors[c]; !ok {
			return nil, fmt.Errorf("category %q has no prototype", c)
		}
	}
	return store, nil
}

func (s *PrototypeStore) Degraded() bool {
	return s == nil || s.cause != nil || len(s.vectors) == 0
}

// Cause reports why the store is degraded, nil when it is ready.
func (s *PrototypeStore) Cause() error {
	if s == nil {
		return errors.New("prototype store is nil")
	}
	return s.cause
}

// Categories returns the category names in description order.
func (s *PrototypeStore) Categories() []domain.Category {
	if s == nil {
		return nil
	}
	return append([]domain.Category(nil), s.names...)
}

func (s *PrototypeStore) Vector(c domain.Category) ([]float32, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.vectors[c]
	return v, ok
}
