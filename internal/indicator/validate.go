package indicator

// Range is an inclusive numeric bound an indicator's raw value must satisfy
// to be marked validated.
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether v falls inside the inclusive bound.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// validRanges maps indicator slugs to the sanity bound of their raw series
// value, before display scaling. Slugs without an entry validate
// unconditionally. Bounds should be confirmed with a domain owner before
// tightening alerts on them.
var validRanges = map[string]Range{
	"taxa-selic":          {Min: 10, Max: 20},
	"ibovespa":            {Min: 80_000, Max: 150_000},
	"inflacao-ipca":       {Min: 0, Max: 20},
	"dolar":               {Min: 3, Max: 10},
	"taxa-desemprego":     {Min: 4, Max: 15},
	"pib":                 {Min: 1_500_000, Max: 5_000_000}, // R$ millions, quarterly
	"emprego-formal":      {Min: -300_000, Max: 500_000},   // net jobs, monthly
	"rendimento-medio":    {Min: 1_500, Max: 6_000},        // R$
	"balanca-comercial":   {Min: -10_000, Max: 30_000},     // US$ millions, monthly
	"corrente-comercio":   {Min: 20_000, Max: 100_000},     // US$ millions, monthly
	"volume-credito":      {Min: 3_000_000, Max: 10_000_000}, // R$ millions
	"inadimplencia":       {Min: 1, Max: 10},
	"producao-industrial": {Min: -30, Max: 30},
	"vendas-varejo":       {Min: -30, Max: 30},
}

// Validate reports whether raw falls within the sanity range declared for
// slug. Pure table lookup, no I/O. Out-of-range values are flagged by the
// caller, never dropped: the system prefers a possibly-wrong value with an
// explicit flag over silence.
func Validate(slug string, raw float64) bool {
	r, ok := validRanges[slug]
	if !ok {
		return true
	}
	return r.Contains(raw)
}

// RangeFor returns the sanity range declared for slug, if any.
func RangeFor(slug string) (Range, bool) {
	r, ok := validRanges[slug]
	return r, ok
}
