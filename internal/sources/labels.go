package sources

import "strings"

// LabelFunc renders a provider-native period reference for display.
type LabelFunc func(period string) string

// UpdateDateLabel prefixes a BCB observation date with the update
// wording used in descriptions: "Última atualização: 02/01/2026".
func UpdateDateLabel(period string) string {
	return "Última atualização: " + period
}

// RawPeriodLabel keeps the provider period as-is.
func RawPeriodLabel(period string) string {
	return period
}

// BCBMonthLabel renders a BCB "dd/MM/yyyy" observation date as
// "MM/yyyy".
func BCBMonthLabel(period string) string {
	parts := strings.Split(period, "/")
	if len(parts) != 3 {
		return period
	}
	return parts[1] + "/" + parts[2]
}

// IBGEMonthLabel renders an IBGE "yyyyMM" monthly period as "MM/yyyy".
func IBGEMonthLabel(period string) string {
	if len(period) != 6 {
		return period
	}
	return period[4:] + "/" + period[:4]
}

// IBGEQuarterLabel renders an IBGE "yyyyQQ" quarterly period as
// "Qº tri yyyy".
func IBGEQuarterLabel(period string) string {
	if len(period) != 6 {
		return period
	}
	quarter := strings.TrimPrefix(period[4:], "0")
	return quarter + "º tri " + period[:4]
}
