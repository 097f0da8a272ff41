package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/painel-economico/indicadores-server/internal/httpclient"
	"github.com/painel-economico/indicadores-server/internal/indicator"
)

// DefaultIBGEBaseURL is the public IBGE service-data endpoint.
const DefaultIBGEBaseURL = "https://servicodados.ibge.gov.br"

// IBGEClient queries the IBGE aggregated-data (agregados) v3 API.
type IBGEClient struct {
	client  httpclient.Client
	baseURL string
}

// NewIBGEClient creates a client against the given base URL. An empty
// base URL selects the public endpoint.
func NewIBGEClient(client httpclient.Client, baseURL string) *IBGEClient {
	if baseURL == "" {
		baseURL = DefaultIBGEBaseURL
	}
	return &IBGEClient{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// ibgeAggregate mirrors the relevant slice of the agregados v3 payload.
// The serie map is keyed by period ("202601" for months, "202504" for
// quarters) with string values; suppressed periods carry markers such
// as "..." or "-".
type ibgeAggregate struct {
	Resultados []struct {
		Series []struct {
			Serie map[string]string `json:"serie"`
		} `json:"series"`
	} `json:"resultados"`
}

// Series returns the n most recent observations of an agregados series
// at the national level, oldest first. Suppressed periods are skipped.
func (c *IBGEClient) Series(ctx context.Context, aggregate, variable string, n int) ([]Observation, error) {
	url := fmt.Sprintf("%s/api/v3/agregados/%s/periodos/-%d/variaveis/%s?localidades=N1[all]",
		c.baseURL, aggregate, n, variable)

	body, err := c.client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: agregado %s: %v", indicator.ErrTransport, aggregate, err)
	}

	var raw []ibgeAggregate
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: agregado %s: %v", indicator.ErrMalformedPayload, aggregate, err)
	}
	if len(raw) == 0 || len(raw[0].Resultados) == 0 || len(raw[0].Resultados[0].Series) == 0 {
		return nil, fmt.Errorf("%w: agregado %s", indicator.ErrEmptyResult, aggregate)
	}

	serie := raw[0].Resultados[0].Series[0].Serie
	periods := make([]string, 0, len(serie))
	for p := range serie {
		periods = append(periods, p)
	}
	// Period keys are zero-padded digits, so lexicographic order is
	// chronological order.
	slices.Sort(periods)

	obs := make([]Observation, 0, len(periods))
	for _, p := range periods {
		v, err := parseDecimal(serie[p])
		if err != nil {
			continue
		}
		obs = append(obs, Observation{Period: p, Value: v})
	}
	if len(obs) == 0 {
		return nil, fmt.Errorf("%w: agregado %s has no usable periods", indicator.ErrEmptyResult, aggregate)
	}
	return obs, nil
}

// Latest returns the most recent usable observation of an agregados
// series. It requests a small window because providers may suppress the
// newest periods.
func (c *IBGEClient) Latest(ctx context.Context, aggregate, variable string) (Observation, error) {
	obs, err := c.Series(ctx, aggregate, variable, 4)
	if err != nil {
		return Observation{}, err
	}
	return obs[len(obs)-1], nil
}
