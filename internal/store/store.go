// Package store persists indicator snapshots and editorial annotations.
// It provides an in-memory backend for development and tests and a
// PostgreSQL backend for production.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/painel-economico/indicadores-server/internal/indicator"
)

// ErrAnnotationNotFound is returned when a slug has no annotation.
var ErrAnnotationNotFound = errors.New("annotation not found")

// Annotation is an editorial note attached to an indicator slug.
type Annotation struct {
	Slug      string
	Text      string
	UpdatedAt time.Time
}

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks -source=store.go Store

// Store persists the indicator snapshot and its annotations.
//
// ReplaceAll is the only snapshot write: callers always replace the full
// set, never diff it. SelectAll returns rows in stored order so the
// persisted snapshot round-trips with its ordering intact.
type Store interface {
	// ReplaceAll atomically replaces the persisted snapshot.
	ReplaceAll(ctx context.Context, items []indicator.Indicator) error

	// SelectAll returns the persisted snapshot in stored order. An
	// empty snapshot is an empty slice, not an error.
	SelectAll(ctx context.Context) ([]indicator.Indicator, error)

	// GetAnnotation returns the annotation for a slug, or
	// ErrAnnotationNotFound.
	GetAnnotation(ctx context.Context, slug string) (Annotation, error)

	// PutAnnotation creates or updates the annotation for a slug and
	// returns the stored state.
	PutAnnotation(ctx context.Context, slug, text string) (Annotation, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases resources held by the store.
	Close()
}
