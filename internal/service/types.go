package service

import (
	"time"

	"github.com/painel-economico/indicadores-server/internal/indicator"
	"github.com/painel-economico/indicadores-server/internal/store"
)

// IndicatorJSON is the wire representation of one indicator record.
// The JSON keys follow the public API contract; Id is the record's
// 1-based position within the snapshot it came from.
type IndicatorJSON struct {
	ID          int    `json:"id"`
	Name        string `json:"nome"`
	Value       string `json:"valor"`
	Description string `json:"descricao"`
}

// HistoricalJSON is the wire representation of a historical series.
// Labels and Values always have equal length; TotalPeriods equals that
// length. Empty slices, never null, so charts can render unconditionally.
type HistoricalJSON struct {
	Labels       []string  `json:"labels"`
	Values       []float64 `json:"valores"`
	TotalPeriods int       `json:"total_periodos"`
}

// StatusJSON is the wire representation of the cache status. The
// pointer fields render as null before the first successful refresh.
type StatusJSON struct {
	Status           string   `json:"status"`
	CacheUpdated     *string  `json:"cache_updated"`
	CacheAgeSeconds  *int64   `json:"cache_age_seconds"`
	CacheAgeMinutes  *float64 `json:"cache_age_minutes"`
	IndicatorsCached int      `json:"indicators_cached"`
	CacheExpired     bool     `json:"cache_expired"`
}

// AnnotationJSON is the wire representation of an editorial annotation.
type AnnotationJSON struct {
	Slug      string    `json:"slug"`
	Text      string    `json:"texto"`
	UpdatedAt time.Time `json:"atualizado_em"`
}

// newIndicatorJSON converts a domain record to its wire form. Validated
// records with a source citation get " - Fonte: <source>" appended to
// the description; failed and unvalidated slots keep their failure
// reason untouched.
func newIndicatorJSON(id int, item indicator.Indicator) IndicatorJSON {
	description := item.Description
	if item.Validated && item.Source != "" {
		description += " - Fonte: " + item.Source
	}
	return IndicatorJSON{
		ID:          id,
		Name:        item.Name,
		Value:       item.Value,
		Description: description,
	}
}

func newAnnotationJSON(annotation store.Annotation) AnnotationJSON {
	return AnnotationJSON{
		Slug:      annotation.Slug,
		Text:      annotation.Text,
		UpdatedAt: annotation.UpdatedAt,
	}
}
