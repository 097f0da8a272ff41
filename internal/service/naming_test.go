package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "display name with space",
			input:    "Taxa Selic",
			expected: "taxaselic",
		},
		{
			name:     "slug with hyphen",
			input:    "taxa-selic",
			expected: "taxaselic",
		},
		{
			name:     "upper case hyphenated",
			input:    "TAXA-SELIC",
			expected: "taxaselic",
		},
		{
			name:     "already normalized",
			input:    "taxaselic",
			expected: "taxaselic",
		},
		{
			name:     "accents are preserved",
			input:    "Inflação (IPCA)",
			expected: "inflação(ipca)",
		},
		{
			name:     "mixed separators",
			input:    "Produção - Industrial",
			expected: "produçãoindustrial",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, normalizeName(tt.input))
		})
	}
}

func TestMatchesName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		stored   string
		query    string
		expected bool
	}{
		{
			name:     "exact display name",
			stored:   "Taxa Selic",
			query:    "Taxa Selic",
			expected: true,
		},
		{
			name:     "normalized equality",
			stored:   "Taxa Selic",
			query:    "taxaselic",
			expected: true,
		},
		{
			name:     "hyphenated query",
			stored:   "Taxa Selic",
			query:    "TAXA-SELIC",
			expected: true,
		},
		{
			name:     "query is substring of stored",
			stored:   "Taxa Selic",
			query:    "selic",
			expected: true,
		},
		{
			name:     "substring inside parentheses",
			stored:   "Inflação (IPCA)",
			query:    "ipca",
			expected: true,
		},
		{
			name:     "stored is substring of query",
			stored:   "Selic",
			query:    "taxa selic anual",
			expected: false,
		},
		{
			name:     "unrelated names",
			stored:   "Taxa Selic",
			query:    "dolar",
			expected: false,
		},
		{
			name:     "empty query matches anything",
			stored:   "Taxa Selic",
			query:    "",
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, matchesName(tt.stored, tt.query))
		})
	}
}
