package sources_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/painel-economico/indicadores-server/internal/sources"
)

func TestLabels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		fn       sources.LabelFunc
		period   string
		expected string
	}{
		{"update date", sources.UpdateDateLabel, "02/01/2026", "Última atualização: 02/01/2026"},
		{"raw period", sources.RawPeriodLabel, "202601", "202601"},
		{"bcb month", sources.BCBMonthLabel, "02/01/2026", "01/2026"},
		{"bcb month passthrough on unexpected shape", sources.BCBMonthLabel, "2026-01-02", "2026-01-02"},
		{"ibge month", sources.IBGEMonthLabel, "202601", "01/2026"},
		{"ibge month passthrough on unexpected shape", sources.IBGEMonthLabel, "26/01", "26/01"},
		{"ibge quarter", sources.IBGEQuarterLabel, "202504", "4º tri 2025"},
		{"ibge first quarter drops the zero", sources.IBGEQuarterLabel, "202601", "1º tri 2026"},
		{"ibge quarter passthrough on unexpected shape", sources.IBGEQuarterLabel, "2025", "2025"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.fn(tt.period))
		})
	}
}

func TestFormats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		fn       sources.FormatFunc
		raw      float64
		expected string
	}{
		{"percent", sources.Percent, 13.25, "13.25%"},
		{"percent coarse", sources.PercentCoarse, 6.54, "6.5%"},
		{"signed percent positive", sources.SignedPercent, 1.2, "+1.2%"},
		{"signed percent negative", sources.SignedPercent, -0.8, "-0.8%"},
		{"currency", sources.CurrencyBRL, 5.432, "R$ 5.43"},
		{"currency whole", sources.CurrencyBRLWhole, 3280.4, "R$ 3280"},
		{"trillions from millions", sources.TrillionsBRL, 3_100_000, "R$ 3.1 trilhões"},
		{"billions from millions", sources.BillionsUSD, 50_300, "US$ 50.3 bilhões"},
		{"signed billions", sources.SignedBillionsUSD, 7_500, "US$ +7.5 bilhões"},
		{"jobs from units", sources.ThousandsJobs, 180_400, "+180.4 mil vagas"},
		{"jobs negative", sources.ThousandsJobs, -52_100, "-52.1 mil vagas"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.fn(tt.raw))
		})
	}
}
