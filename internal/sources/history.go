package sources

import (
	"context"
	"errors"
	"fmt"

	"github.com/painel-economico/indicadores-server/internal/indicator"
)

// ErrNoHistory marks a slug with no historical series: either it is not
// on the allow-list or its provider reference is unset.
var ErrNoHistory = errors.New("no historical series for indicator")

// HistoryRef declares one historical-eligible indicator: the provider
// series behind it, how many trailing periods it serves, and how period
// references become display labels.
type HistoryRef struct {
	Provider ProviderKind
	Series   SeriesRef
	Label    LabelFunc
}

// DefaultHistory returns the production allow-list of slugs eligible
// for historical series. Everything else answers "no history".
func DefaultHistory() map[string]HistoryRef {
	return map[string]HistoryRef{
		"taxa-selic": {
			Provider: ProviderBCB,
			Series:   SeriesRef{BCBCode: 432, Window: 12},
			Label:    BCBMonthLabel,
		},
		"dolar": {
			Provider: ProviderBCB,
			Series:   SeriesRef{BCBCode: 1, Window: 12},
			Label:    BCBMonthLabel,
		},
		"inflacao-ipca": {
			Provider: ProviderIBGE,
			Series:   SeriesRef{Aggregate: "1737", Variable: "63", Window: 12},
			Label:    IBGEMonthLabel,
		},
		"taxa-desemprego": {
			Provider: ProviderIBGE,
			Series:   SeriesRef{Aggregate: "4099", Variable: "4099", Window: 8},
			Label:    IBGEQuarterLabel,
		},
		"pib": {
			Provider: ProviderIBGE,
			Series:   SeriesRef{Aggregate: "6601", Variable: "584", Window: 8},
			Label:    IBGEQuarterLabel,
		},
	}
}

// HistoryProvider resolves allow-listed slugs to historical series.
type HistoryProvider struct {
	refs map[string]HistoryRef
	bcb  *BCBClient
	ibge *IBGEClient
}

// NewHistoryProvider builds a provider over the given allow-list.
func NewHistoryProvider(refs map[string]HistoryRef, bcb *BCBClient, ibge *IBGEClient) *HistoryProvider {
	return &HistoryProvider{refs: refs, bcb: bcb, ibge: ibge}
}

// Series returns the labeled historical series for slug, oldest period
// first. Slugs outside the allow-list return ErrNoHistory; provider
// errors pass through with the usual failure classification.
func (p *HistoryProvider) Series(ctx context.Context, slug string) (indicator.HistoricalSeries, error) {
	ref, ok := p.refs[slug]
	if !ok {
		return indicator.HistoricalSeries{}, fmt.Errorf("%w: %s", ErrNoHistory, slug)
	}

	var (
		obs []Observation
		err error
	)
	switch ref.Provider {
	case ProviderBCB:
		obs, err = p.bcb.Series(ctx, ref.Series.BCBCode, ref.Series.Window)
	case ProviderIBGE:
		obs, err = p.ibge.Series(ctx, ref.Series.Aggregate, ref.Series.Variable, ref.Series.Window)
	default:
		return indicator.HistoricalSeries{}, fmt.Errorf("%w: %s", ErrNoHistory, slug)
	}
	if err != nil {
		return indicator.HistoricalSeries{}, err
	}

	series := indicator.HistoricalSeries{
		Labels: make([]string, 0, len(obs)),
		Values: make([]float64, 0, len(obs)),
	}
	for _, o := range obs {
		series.Labels = append(series.Labels, ref.Label(o.Period))
		series.Values = append(series.Values, o.Value)
	}
	return series, nil
}
