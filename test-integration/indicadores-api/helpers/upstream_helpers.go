package helpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"time"
)

// bcbSeriesValues maps the SGS series codes the default catalog uses to
// a plausible in-range base value.
var bcbSeriesValues = map[int]float64{
	432:   13.25,     // taxa-selic
	1:     5.42,      // dolar
	28763: 45_000,    // emprego-formal (net jobs)
	22707: 2_100,     // balanca-comercial (US$ millions)
	22708: 48_000,    // corrente-comercio (US$ millions)
	20539: 6_200_000, // volume-credito (R$ millions)
	21082: 3.8,       // inadimplencia
}

var bcbPathRe = regexp.MustCompile(`^/dados/serie/bcdata\.sgs\.([0-9]+)/dados/ultimos/([0-9]+)$`)

// NewBCBMockServer serves the SGS wire format for the series codes the
// default catalog uses. Observations carry a small ascending ramp so
// historical charts get distinct points.
func NewBCBMockServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := bcbPathRe.FindStringSubmatch(r.URL.Path)
		if m == nil {
			http.NotFound(w, r)
			return
		}
		code, _ := strconv.Atoi(m[1])
		n, _ := strconv.Atoi(m[2])
		base, ok := bcbSeriesValues[code]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if n > 12 {
			n = 12
		}

		type observation struct {
			Data  string `json:"data"`
			Valor string `json:"valor"`
		}
		payload := make([]observation, 0, n)
		for i := range n {
			payload = append(payload, observation{
				Data:  fmt.Sprintf("01/%02d/2026", 12-n+i+1),
				Valor: strconv.FormatFloat(base+float64(i)*0.01, 'f', 2, 64),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	}))
}

// ibgeSeriesValues maps the "aggregate/variable" pairs the default
// catalog uses to a base value and period granularity.
var ibgeSeriesValues = map[string]struct {
	base      float64
	quarterly bool
}{
	"6601/584":  {base: 2_900_000, quarterly: true}, // pib (R$ millions)
	"1737/63":   {base: 4.5},                        // inflacao-ipca
	"4099/4099": {base: 7.9, quarterly: true},       // taxa-desemprego
	"6390/5929": {base: 3_150, quarterly: true},     // rendimento-medio
	"3653/3135": {base: 101.2},                      // producao-industrial (index level)
	"3416/1781": {base: 98.5},                       // vendas-varejo (index level)
}

var ibgePathRe = regexp.MustCompile(`^/api/v3/agregados/([0-9]+)/periodos/-([0-9]+)/variaveis/([0-9]+)$`)

// NewIBGEMockServer serves the agregados v3 wire format for the series
// the default catalog uses.
func NewIBGEMockServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := ibgePathRe.FindStringSubmatch(r.URL.Path)
		if m == nil {
			http.NotFound(w, r)
			return
		}
		ref, ok := ibgeSeriesValues[m[1]+"/"+m[3]]
		if !ok {
			http.NotFound(w, r)
			return
		}
		n, _ := strconv.Atoi(m[2])
		if n > 12 {
			n = 12
		}

		serie := make(map[string]string, n)
		for i := range n {
			serie[ibgePeriod(ref.quarterly, n-1-i)] = strconv.FormatFloat(ref.base+float64(i)*0.1, 'f', 2, 64)
		}

		payload := []map[string]any{{
			"resultados": []map[string]any{{
				"series": []map[string]any{{
					"serie": serie,
				}},
			}},
		}}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	}))
}

// ibgePeriod returns the agregados period key back steps before the
// newest mock period: "202606" style for monthly series, "202601" style
// for quarterly ones.
func ibgePeriod(quarterly bool, back int) string {
	if quarterly {
		idx := 2026*4 - back // 2026 Q1 anchor
		return fmt.Sprintf("%04d%02d", idx/4, idx%4+1)
	}
	t := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -back, 0)
	return fmt.Sprintf("%04d%02d", t.Year(), int(t.Month()))
}
