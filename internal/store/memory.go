package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/painel-economico/indicadores-server/internal/indicator"
)

// MemoryStore keeps the snapshot and annotations in process memory.
// It backs the memory storage type and tests. Durability ends with the
// process.
type MemoryStore struct {
	mu          sync.RWMutex
	items       []indicator.Indicator
	annotations map[string]Annotation
	now         func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		annotations: make(map[string]Annotation),
		now:         time.Now,
	}
}

// ReplaceAll replaces the stored snapshot.
func (s *MemoryStore) ReplaceAll(_ context.Context, items []indicator.Indicator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.Clone(items)
	return nil
}

// SelectAll returns a copy of the stored snapshot.
func (s *MemoryStore) SelectAll(_ context.Context) ([]indicator.Indicator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items), nil
}

// GetAnnotation returns the annotation for a slug.
func (s *MemoryStore) GetAnnotation(_ context.Context, slug string) (Annotation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	annotation, ok := s.annotations[slug]
	if !ok {
		return Annotation{}, ErrAnnotationNotFound
	}
	return annotation, nil
}

// PutAnnotation creates or updates the annotation for a slug.
func (s *MemoryStore) PutAnnotation(_ context.Context, slug, text string) (Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	annotation := Annotation{
		Slug:      slug,
		Text:      text,
		UpdatedAt: s.now(),
	}
	s.annotations[slug] = annotation
	return annotation, nil
}

// Ping always succeeds for the in-memory backend.
func (*MemoryStore) Ping(_ context.Context) error { return nil }

// Close is a no-op for the in-memory backend.
func (*MemoryStore) Close() {}
