package sources_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/painel-economico/indicadores-server/internal/httpclient"
	"github.com/painel-economico/indicadores-server/internal/indicator"
	"github.com/painel-economico/indicadores-server/internal/sources"
)

// newFetcher wires a catalog entry against a test server standing in
// for both providers.
func newFetcher(spec sources.Spec, serverURL string) sources.Fetcher {
	client := httpclient.NewDefaultClient(0)
	bcb := sources.NewBCBClient(client, serverURL)
	ibge := sources.NewIBGEClient(client, serverURL)
	return sources.NewFetcher(spec, bcb, ibge)
}

func selicSpec() sources.Spec {
	return sources.Spec{
		Slug:        "taxa-selic",
		Name:        "Taxa Selic",
		Description: "Taxa básica de juros",
		Source:      "Banco Central",
		Provider:    sources.ProviderBCB,
		Series:      sources.SeriesRef{BCBCode: 432, Window: 1},
		Derive:      sources.DeriveLatest,
		Format:      sources.Percent,
		PeriodLabel: sources.UpdateDateLabel,
	}
}

func TestFetcher_Success(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"data": "02/01/2026", "valor": "14.75"}]`))
	}))
	defer server.Close()

	rec := newFetcher(selicSpec(), server.URL).Fetch(context.Background())

	assert.Equal(t, "Taxa Selic", rec.Name)
	assert.Equal(t, "14.75%", rec.Value)
	assert.Equal(t, "Taxa básica de juros - Última atualização: 02/01/2026", rec.Description)
	assert.Equal(t, "Banco Central", rec.Source)
	assert.True(t, rec.Validated)
	require.NotNil(t, rec.RawValue)
	assert.InDelta(t, 14.75, *rec.RawValue, 0.001)
}

func TestFetcher_OutOfRange(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"data": "02/01/2026", "valor": "42.00"}]`))
	}))
	defer server.Close()

	rec := newFetcher(selicSpec(), server.URL).Fetch(context.Background())

	// Out-of-range values are still served, flagged rather than dropped.
	assert.Equal(t, "42.00%", rec.Value)
	assert.False(t, rec.Validated)
	assert.Contains(t, rec.Description, "valor fora da faixa esperada")
	require.NotNil(t, rec.RawValue)
	assert.InDelta(t, 42.0, *rec.RawValue, 0.001)
}

func TestFetcher_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		handler        http.HandlerFunc
		expectedReason string
	}{
		{
			name: "transport error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
			expectedReason: "Erro ao obter dados",
		},
		{
			name: "malformed payload",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`<html>maintenance</html>`))
			},
			expectedReason: "Resposta em formato inesperado",
		},
		{
			name: "empty payload",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`[]`))
			},
			expectedReason: "Dados não disponíveis",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(tt.handler)
			defer server.Close()

			rec := newFetcher(selicSpec(), server.URL).Fetch(context.Background())

			assert.Equal(t, "Taxa Selic", rec.Name)
			assert.Equal(t, indicator.ValueUnavailable, rec.Value)
			assert.Equal(t, tt.expectedReason, rec.Description)
			assert.False(t, rec.Validated)
			assert.Nil(t, rec.RawValue)
		})
	}
}

func TestFetcher_Static(t *testing.T) {
	t.Parallel()

	spec := sources.Spec{
		Slug:        "ibovespa",
		Name:        "Ibovespa",
		Description: "Para dados em tempo real, consulte o site da B3",
		Source:      "B3",
		Provider:    sources.ProviderStatic,
		StaticValue: "Consultar B3",
	}

	// No server: static entries must not touch the network.
	rec := sources.NewFetcher(spec, nil, nil).Fetch(context.Background())

	assert.Equal(t, "Ibovespa", rec.Name)
	assert.Equal(t, "Consultar B3", rec.Value)
	assert.Equal(t, "Para dados em tempo real, consulte o site da B3", rec.Description)
	assert.True(t, rec.Validated)
	assert.Nil(t, rec.RawValue)
}

func TestFetcher_Delta(t *testing.T) {
	t.Parallel()

	spec := sources.Spec{
		Slug:        "producao-industrial",
		Name:        "Produção Industrial",
		Description: "Variação mensal",
		Source:      "IBGE",
		Provider:    sources.ProviderIBGE,
		Series:      sources.SeriesRef{Aggregate: "3653", Variable: "3135", Window: 2},
		Derive:      sources.DeriveDelta,
		Format:      sources.SignedPercent,
		PeriodLabel: sources.RawPeriodLabel,
	}

	t.Run("delta of the two most recent periods", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(ibgePayload(`{"202605": "101.2", "202606": "102.4"}`)))
		}))
		defer server.Close()

		rec := newFetcher(spec, server.URL).Fetch(context.Background())

		assert.Equal(t, "+1.2%", rec.Value)
		assert.Equal(t, "Variação mensal - 202606", rec.Description)
		assert.True(t, rec.Validated)
		require.NotNil(t, rec.RawValue)
		assert.InDelta(t, 1.2, *rec.RawValue, 0.001)
	})

	t.Run("single period is not enough", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(ibgePayload(`{"202606": "102.4"}`)))
		}))
		defer server.Close()

		rec := newFetcher(spec, server.URL).Fetch(context.Background())

		assert.Equal(t, indicator.ValueUnavailable, rec.Value)
		assert.Equal(t, "Dados não disponíveis", rec.Description)
		assert.False(t, rec.Validated)
	})
}
