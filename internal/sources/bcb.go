package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/painel-economico/indicadores-server/internal/httpclient"
	"github.com/painel-economico/indicadores-server/internal/indicator"
)

// DefaultBCBBaseURL is the public Banco Central SGS endpoint.
const DefaultBCBBaseURL = "https://api.bcb.gov.br"

// BCBClient queries the Banco Central SGS time-series API.
type BCBClient struct {
	client  httpclient.Client
	baseURL string
}

// NewBCBClient creates a client against the given base URL. An empty
// base URL selects the public endpoint.
func NewBCBClient(client httpclient.Client, baseURL string) *BCBClient {
	if baseURL == "" {
		baseURL = DefaultBCBBaseURL
	}
	return &BCBClient{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// bcbObservation mirrors one element of the SGS JSON payload. Values
// arrive as strings, occasionally with comma decimal separators.
type bcbObservation struct {
	Data  string `json:"data"`
	Valor string `json:"valor"`
}

// Series returns the n most recent observations of an SGS series,
// oldest first.
func (c *BCBClient) Series(ctx context.Context, code, n int) ([]Observation, error) {
	url := fmt.Sprintf("%s/dados/serie/bcdata.sgs.%d/dados/ultimos/%d?formato=json", c.baseURL, code, n)

	body, err := c.client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: sgs series %d: %v", indicator.ErrTransport, code, err)
	}

	var raw []bcbObservation
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: sgs series %d: %v", indicator.ErrMalformedPayload, code, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: sgs series %d", indicator.ErrEmptyResult, code)
	}

	obs := make([]Observation, 0, len(raw))
	for _, o := range raw {
		v, err := parseDecimal(o.Valor)
		if err != nil {
			return nil, fmt.Errorf("%w: sgs series %d: %v", indicator.ErrMalformedPayload, code, err)
		}
		obs = append(obs, Observation{Period: o.Data, Value: v})
	}
	return obs, nil
}

// Latest returns the most recent observation of an SGS series.
func (c *BCBClient) Latest(ctx context.Context, code int) (Observation, error) {
	obs, err := c.Series(ctx, code, 1)
	if err != nil {
		return Observation{}, err
	}
	return obs[len(obs)-1], nil
}
