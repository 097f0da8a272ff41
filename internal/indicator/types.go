// Package indicator defines the domain types shared across the server:
// indicator records, aggregation snapshots and historical series.
package indicator

import "time"

// ValueUnavailable is the display value served for a slot whose fetch failed.
const ValueUnavailable = "N/D"

// User-visible failure reasons embedded in a record's description when a
// fetch cannot produce a usable value.
const (
	ReasonFetchError       = "Erro ao obter dados"
	ReasonMalformedPayload = "Resposta em formato inesperado"
	ReasonEmptyResult      = "Dados não disponíveis"
	ReasonOutOfRange       = "valor fora da faixa esperada"
)

// Indicator is one named economic metric with a formatted display value and
// a validity flag. Records with Validated=false still carry a best-effort
// value plus a human-readable failure reason in Description.
type Indicator struct {
	// Name is the display name, unique within one snapshot.
	Name string

	// Value is the formatted display value ("13.25%", "R$ 5.43", "N/D").
	Value string

	// Description is the human description of the metric; for failed slots
	// it holds the failure reason instead.
	Description string

	// Source is the citation of the data provider. Empty on failed slots.
	Source string

	// RawValue is the numeric payload as parsed, before display scaling.
	// Nil when no value could be obtained.
	RawValue *float64

	// Validated is true when the fetch succeeded and the raw value passed
	// its declared sanity range (or the indicator declares none).
	Validated bool
}

// Unavailable returns the placeholder record for a slot whose fetch failed.
func Unavailable(name, reason string) Indicator {
	return Indicator{
		Name:        name,
		Value:       ValueUnavailable,
		Description: reason,
	}
}

// Snapshot is the full, fixed-length ordered set of indicators produced by
// one aggregation pass. Items are in fetcher declaration order; the length
// never varies across refreshes, even under partial failure.
type Snapshot struct {
	Items     []Indicator
	Timestamp time.Time
}

// IsZero reports whether the snapshot has not been produced by any
// aggregation pass yet.
func (s Snapshot) IsZero() bool {
	return s.Timestamp.IsZero() && len(s.Items) == 0
}

// AllUnavailable reports whether every slot is a failure placeholder, i.e.
// the aggregation pass produced no usable data at all. An empty snapshot
// counts as unavailable.
func (s Snapshot) AllUnavailable() bool {
	for _, item := range s.Items {
		if item.Value != ValueUnavailable {
			return false
		}
	}
	return true
}

// HistoricalSeries pairs period labels with their numeric values, oldest
// first. Labels and Values always have equal length.
type HistoricalSeries struct {
	Labels []string
	Values []float64
}
