package sources

import "fmt"

// FormatFunc renders a derived raw value for display.
type FormatFunc func(raw float64) string

// Percent renders a two-decimal percentage: "13.25%".
func Percent(raw float64) string {
	return fmt.Sprintf("%.2f%%", raw)
}

// PercentCoarse renders a one-decimal percentage: "6.5%".
func PercentCoarse(raw float64) string {
	return fmt.Sprintf("%.1f%%", raw)
}

// SignedPercent renders a one-decimal signed percentage: "+1.2%".
func SignedPercent(raw float64) string {
	return fmt.Sprintf("%+.1f%%", raw)
}

// CurrencyBRL renders a two-decimal amount in reais: "R$ 5.43".
func CurrencyBRL(raw float64) string {
	return fmt.Sprintf("R$ %.2f", raw)
}

// CurrencyBRLWhole renders a whole amount in reais: "R$ 3280".
func CurrencyBRLWhole(raw float64) string {
	return fmt.Sprintf("R$ %.0f", raw)
}

// TrillionsBRL renders a value published in R$ millions as trillions:
// "R$ 3.1 trilhões".
func TrillionsBRL(raw float64) string {
	return fmt.Sprintf("R$ %.1f trilhões", raw/1e6)
}

// SignedBillionsUSD renders a value published in US$ millions as signed
// billions: "US$ +7.5 bilhões".
func SignedBillionsUSD(raw float64) string {
	return fmt.Sprintf("US$ %+.1f bilhões", raw/1e3)
}

// BillionsUSD renders a value published in US$ millions as billions:
// "US$ 50.3 bilhões".
func BillionsUSD(raw float64) string {
	return fmt.Sprintf("US$ %.1f bilhões", raw/1e3)
}

// ThousandsJobs renders a net job count as signed thousands:
// "+180.4 mil vagas".
func ThousandsJobs(raw float64) string {
	return fmt.Sprintf("%+.1f mil vagas", raw/1e3)
}
