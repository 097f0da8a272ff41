package sources

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/painel-economico/indicadores-server/internal/indicator"
)

// ProviderKind identifies which upstream API backs an indicator.
type ProviderKind string

const (
	// ProviderBCB is the Banco Central do Brasil SGS time-series API.
	ProviderBCB ProviderKind = "bcb"
	// ProviderIBGE is the IBGE aggregated-data (agregados) v3 API.
	ProviderIBGE ProviderKind = "ibge"
	// ProviderStatic serves a fixed placeholder value with no upstream call.
	ProviderStatic ProviderKind = "static"
)

// DeriveKind selects how an indicator value is derived from the
// observation window.
type DeriveKind string

const (
	// DeriveLatest uses the most recent observation as-is.
	DeriveLatest DeriveKind = "latest"
	// DeriveDelta uses the difference between the two most recent
	// observations. Used for index series published as levels where the
	// indicator of interest is the period-over-period change.
	DeriveDelta DeriveKind = "delta"
)

// SeriesRef locates a series at its provider.
type SeriesRef struct {
	// BCBCode is the SGS series code. Only meaningful for ProviderBCB.
	BCBCode int
	// Aggregate and Variable locate an IBGE agregados series. Only
	// meaningful for ProviderIBGE.
	Aggregate string
	Variable  string
	// Window is how many trailing periods to request. BCB latest reads
	// use 1; IBGE windows are wider because recent periods may be
	// suppressed or the derivation needs more than one observation.
	Window int
}

// Spec declares one indicator of the catalog: where its data comes from
// and how a raw reading becomes a display record.
type Spec struct {
	// Slug is the stable catalog identifier (normalized name).
	Slug string
	// Name is the display name served to clients.
	Name string
	// Description is the provenance text. The period label of the
	// observation is appended at fetch time.
	Description string
	// Source names the institution behind the data.
	Source string

	Provider ProviderKind
	Series   SeriesRef
	Derive   DeriveKind

	// Format renders the derived raw value for display.
	Format FormatFunc
	// PeriodLabel renders the provider-native period reference appended
	// to the description. Nil omits the suffix.
	PeriodLabel LabelFunc

	// StaticValue is served verbatim for ProviderStatic.
	StaticValue string
}

// Observation is one (period, value) pair of a provider series. Period
// keeps the provider-native reference: "02/01/2026" for BCB, "202601"
// for IBGE months, "202504" for IBGE quarters.
type Observation struct {
	Period string
	Value  float64
}

// parseDecimal parses a provider numeric string, tolerating the comma
// decimal separator used in pt-BR payloads.
func parseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, fmt.Errorf("empty numeric value")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric value %q", s)
	}
	return v, nil
}

// Fetcher produces the current record of one indicator.
type Fetcher interface {
	// Slug returns the stable catalog identifier.
	Slug() string
	// Name returns the display name.
	Name() string
	// Fetch returns the current record. It never fails: upstream and
	// payload problems come back as an unavailable record carrying a
	// human-readable failure reason.
	Fetch(ctx context.Context) indicator.Indicator
}

// specFetcher resolves a catalog Spec against the provider clients.
type specFetcher struct {
	spec Spec
	bcb  *BCBClient
	ibge *IBGEClient
}

// NewFetcher builds a Fetcher for a single catalog entry.
func NewFetcher(spec Spec, bcb *BCBClient, ibge *IBGEClient) Fetcher {
	return &specFetcher{spec: spec, bcb: bcb, ibge: ibge}
}

func (f *specFetcher) Slug() string { return f.spec.Slug }

func (f *specFetcher) Name() string { return f.spec.Name }

func (f *specFetcher) Fetch(ctx context.Context) indicator.Indicator {
	if f.spec.Provider == ProviderStatic {
		return indicator.Indicator{
			Name:        f.spec.Name,
			Value:       f.spec.StaticValue,
			Description: f.spec.Description,
			Source:      f.spec.Source,
			Validated:   true,
		}
	}

	obs, err := f.observations(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Indicator fetch failed",
			"indicator", f.spec.Slug,
			"provider", f.spec.Provider,
			"error", err)
		return indicator.Unavailable(f.spec.Name, indicator.FailureReason(err))
	}

	raw, period, err := derive(f.spec.Derive, obs)
	if err != nil {
		slog.WarnContext(ctx, "Indicator derivation failed",
			"indicator", f.spec.Slug,
			"observations", len(obs),
			"error", err)
		return indicator.Unavailable(f.spec.Name, indicator.FailureReason(err))
	}

	rec := indicator.Indicator{
		Name:        f.spec.Name,
		Value:       f.spec.Format(raw),
		Description: f.describe(period),
		Source:      f.spec.Source,
		RawValue:    &raw,
		Validated:   true,
	}
	if !indicator.Validate(f.spec.Slug, raw) {
		slog.WarnContext(ctx, "Indicator value out of expected range",
			"indicator", f.spec.Slug,
			"value", raw)
		rec.Validated = false
		rec.Description += " (" + indicator.ReasonOutOfRange + ")"
	}
	return rec
}

func (f *specFetcher) observations(ctx context.Context) ([]Observation, error) {
	switch f.spec.Provider {
	case ProviderBCB:
		return f.bcb.Series(ctx, f.spec.Series.BCBCode, f.spec.Series.Window)
	case ProviderIBGE:
		return f.ibge.Series(ctx, f.spec.Series.Aggregate, f.spec.Series.Variable, f.spec.Series.Window)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", indicator.ErrTransport, f.spec.Provider)
	}
}

func (f *specFetcher) describe(period string) string {
	if f.spec.PeriodLabel == nil {
		return f.spec.Description
	}
	return f.spec.Description + " - " + f.spec.PeriodLabel(period)
}

// derive reduces an ascending observation window to the raw indicator
// value and its reference period.
func derive(kind DeriveKind, obs []Observation) (float64, string, error) {
	if len(obs) == 0 {
		return 0, "", indicator.ErrEmptyResult
	}
	last := obs[len(obs)-1]
	switch kind {
	case DeriveDelta:
		if len(obs) < 2 {
			return 0, "", fmt.Errorf("%w: need two periods, got %d", indicator.ErrEmptyResult, len(obs))
		}
		return last.Value - obs[len(obs)-2].Value, last.Period, nil
	default:
		return last.Value, last.Period, nil
	}
}
