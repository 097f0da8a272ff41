package sources_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/painel-economico/indicadores-server/internal/httpclient"
	"github.com/painel-economico/indicadores-server/internal/indicator"
	"github.com/painel-economico/indicadores-server/internal/sources"
)

func TestBCBClient_Series(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		setupServer   func() *httptest.Server
		code          int
		window        int
		expectError   error
		errorContains string
		expected      []sources.Observation
	}{
		{
			name: "successful fetch with dot decimals",
			setupServer: func() *httptest.Server {
				return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					assert.Equal(t, "/dados/serie/bcdata.sgs.432/dados/ultimos/2", r.URL.Path)
					assert.Equal(t, "json", r.URL.Query().Get("formato"))
					w.Header().Set("Content-Type", "application/json")
					_, _ = w.Write([]byte(`[
						{"data": "01/12/2025", "valor": "15.00"},
						{"data": "02/01/2026", "valor": "14.75"}
					]`))
				}))
			},
			code:   432,
			window: 2,
			expected: []sources.Observation{
				{Period: "01/12/2025", Value: 15.00},
				{Period: "02/01/2026", Value: 14.75},
			},
		},
		{
			name: "comma decimal separator",
			setupServer: func() *httptest.Server {
				return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					_, _ = w.Write([]byte(`[{"data": "02/01/2026", "valor": "5,43"}]`))
				}))
			},
			code:   1,
			window: 1,
			expected: []sources.Observation{
				{Period: "02/01/2026", Value: 5.43},
			},
		},
		{
			name: "server error",
			setupServer: func() *httptest.Server {
				return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					w.WriteHeader(http.StatusInternalServerError)
				}))
			},
			code:          432,
			window:        1,
			expectError:   indicator.ErrTransport,
			errorContains: "sgs series 432",
		},
		{
			name: "malformed payload",
			setupServer: func() *httptest.Server {
				return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					_, _ = w.Write([]byte(`{"unexpected": "shape"}`))
				}))
			},
			code:        432,
			window:      1,
			expectError: indicator.ErrMalformedPayload,
		},
		{
			name: "non-numeric value",
			setupServer: func() *httptest.Server {
				return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					_, _ = w.Write([]byte(`[{"data": "02/01/2026", "valor": "indisponível"}]`))
				}))
			},
			code:        432,
			window:      1,
			expectError: indicator.ErrMalformedPayload,
		},
		{
			name: "empty series",
			setupServer: func() *httptest.Server {
				return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					_, _ = w.Write([]byte(`[]`))
				}))
			},
			code:        432,
			window:      1,
			expectError: indicator.ErrEmptyResult,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := tt.setupServer()
			defer server.Close()

			client := sources.NewBCBClient(httpclient.NewDefaultClient(0), server.URL)
			obs, err := client.Series(context.Background(), tt.code, tt.window)

			if tt.expectError != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectError)
				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, obs)
		})
	}
}

func TestBCBClient_Latest(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/dados/serie/bcdata.sgs.432/dados/ultimos/1", r.URL.Path)
		_, _ = w.Write([]byte(`[{"data": "02/01/2026", "valor": "14.75"}]`))
	}))
	defer server.Close()

	client := sources.NewBCBClient(httpclient.NewDefaultClient(0), server.URL)
	obs, err := client.Latest(context.Background(), 432)
	require.NoError(t, err)
	assert.Equal(t, sources.Observation{Period: "02/01/2026", Value: 14.75}, obs)
}

func TestNewBCBClient_DefaultBaseURL(t *testing.T) {
	t.Parallel()

	client := sources.NewBCBClient(httpclient.NewDefaultClient(0), "")
	require.NotNil(t, client)

	// Trailing slashes must not produce double-slash request paths.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/dados/serie/bcdata.sgs.1/dados/ultimos/1", r.URL.Path)
		_, _ = w.Write([]byte(`[{"data": "02/01/2026", "valor": "5.43"}]`))
	}))
	defer server.Close()

	client = sources.NewBCBClient(httpclient.NewDefaultClient(0), server.URL+"/")
	_, err := client.Latest(context.Background(), 1)
	require.NoError(t, err)
}

func TestBCBClient_Series_ContextCancellation(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, `[]`)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := sources.NewBCBClient(httpclient.NewDefaultClient(0), server.URL)
	_, err := client.Series(ctx, 432, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, indicator.ErrTransport)
}
