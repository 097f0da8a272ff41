// Package service provides the business logic for the indicators API
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/painel-economico/indicadores-server/internal/aggregate"
	"github.com/painel-economico/indicadores-server/internal/cache"
	"github.com/painel-economico/indicadores-server/internal/store"
)

var (
	// ErrIndicatorNotFound is returned when no indicator matches the requested name
	ErrIndicatorNotFound = errors.New("indicator not found")
	// ErrAnnotationNotFound is returned when a slug has no annotation
	ErrAnnotationNotFound = errors.New("annotation not found")
)

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks -source=service.go Service

// Service defines the dashboard operations exposed over the HTTP API.
type Service interface {
	// CheckReadiness checks if the service is ready to serve requests
	CheckReadiness(ctx context.Context) error

	// ListIndicators returns every indicator of the current snapshot
	// with 1-based positional ids
	ListIndicators(ctx context.Context) []IndicatorJSON

	// GetIndicator returns the first indicator whose name matches the
	// query after normalization, or ErrIndicatorNotFound
	GetIndicator(ctx context.Context, name string) (IndicatorJSON, error)

	// GetHistorical returns the historical series for a slug; slugs
	// without history yield an empty series, never an error
	GetHistorical(ctx context.Context, slug string) HistoricalJSON

	// TriggerRefresh starts a snapshot refresh in the background and
	// returns immediately
	TriggerRefresh(ctx context.Context)

	// Status reports cache freshness and size
	Status(ctx context.Context) StatusJSON

	// GetAnnotation returns the annotation for a slug, or
	// ErrAnnotationNotFound
	GetAnnotation(ctx context.Context, slug string) (AnnotationJSON, error)

	// PutAnnotation creates or replaces the annotation for a slug
	PutAnnotation(ctx context.Context, slug, text string) (AnnotationJSON, error)
}

// defaultService implements Service over the snapshot cache, the
// aggregation coordinator and the persisted store.
type defaultService struct {
	cache       cache.Cache
	coordinator aggregate.Coordinator
	store       store.Store
}

var _ Service = (*defaultService)(nil)

// New creates a Service backed by the given cache, coordinator and store.
func New(c cache.Cache, coordinator aggregate.Coordinator, st store.Store) Service {
	return &defaultService{
		cache:       c,
		coordinator: coordinator,
		store:       st,
	}
}

// CheckReadiness reports whether the backing store is reachable.
func (s *defaultService) CheckReadiness(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("store not ready: %w", err)
	}
	return nil
}

// ListIndicators serves the cached snapshot, refreshing it first when
// stale. Ids are snapshot positions, not stable identities.
func (s *defaultService) ListIndicators(ctx context.Context) []IndicatorJSON {
	snapshot := s.cache.Read(ctx)
	records := make([]IndicatorJSON, 0, len(snapshot.Items))
	for i, item := range snapshot.Items {
		records = append(records, newIndicatorJSON(i+1, item))
	}
	return records
}

// GetIndicator resolves a lookup name against the snapshot. The query
// matches normalized-equal or as a substring of the stored name; the
// first match in snapshot order wins.
func (s *defaultService) GetIndicator(ctx context.Context, name string) (IndicatorJSON, error) {
	snapshot := s.cache.Read(ctx)
	for i, item := range snapshot.Items {
		if matchesName(item.Name, name) {
			return newIndicatorJSON(i+1, item), nil
		}
	}
	return IndicatorJSON{}, fmt.Errorf("%w: %q", ErrIndicatorNotFound, name)
}

// GetHistorical resolves the series for a catalog slug. Unknown slugs
// and provider failures both come back as an empty series so the
// endpoint degrades instead of erroring.
func (s *defaultService) GetHistorical(ctx context.Context, slug string) HistoricalJSON {
	series, ok := s.coordinator.CollectHistorical(ctx, slug)
	if !ok || len(series.Values) == 0 {
		return HistoricalJSON{Labels: []string{}, Values: []float64{}}
	}
	return HistoricalJSON{
		Labels:       series.Labels,
		Values:       series.Values,
		TotalPeriods: len(series.Values),
	}
}

// TriggerRefresh asks the cache for a background refresh. The refresh
// outcome is logged by the cache, not reported to the caller.
func (s *defaultService) TriggerRefresh(ctx context.Context) {
	slog.InfoContext(ctx, "Forced refresh requested")
	s.cache.ForceRefresh(ctx)
}

// Status maps the cache state to the status payload. The age fields
// stay null until the first successful refresh.
func (s *defaultService) Status(_ context.Context) StatusJSON {
	status := s.cache.Status()
	out := StatusJSON{
		Status:           "online",
		IndicatorsCached: status.Count,
		CacheExpired:     status.Expired,
	}
	if status.UpdatedAt.IsZero() {
		return out
	}
	updated := status.UpdatedAt.Format(time.RFC3339)
	ageSeconds := int64(status.Age.Seconds())
	ageMinutes := math.Round(status.Age.Minutes()*10) / 10
	out.CacheUpdated = &updated
	out.CacheAgeSeconds = &ageSeconds
	out.CacheAgeMinutes = &ageMinutes
	return out
}

// GetAnnotation fetches the editorial note for a slug.
func (s *defaultService) GetAnnotation(ctx context.Context, slug string) (AnnotationJSON, error) {
	annotation, err := s.store.GetAnnotation(ctx, slug)
	if err != nil {
		if errors.Is(err, store.ErrAnnotationNotFound) {
			return AnnotationJSON{}, fmt.Errorf("%w: %q", ErrAnnotationNotFound, slug)
		}
		return AnnotationJSON{}, fmt.Errorf("failed to read annotation: %w", err)
	}
	return newAnnotationJSON(annotation), nil
}

// PutAnnotation upserts the editorial note for a slug.
func (s *defaultService) PutAnnotation(ctx context.Context, slug, text string) (AnnotationJSON, error) {
	annotation, err := s.store.PutAnnotation(ctx, slug, text)
	if err != nil {
		return AnnotationJSON{}, fmt.Errorf("failed to store annotation: %w", err)
	}
	slog.InfoContext(ctx, "Annotation stored", "slug", slug, "length", len(text))
	return newAnnotationJSON(annotation), nil
}
