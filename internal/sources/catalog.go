package sources

import "github.com/painel-economico/indicadores-server/internal/httpclient"

// DefaultCatalog returns the production indicator declarations. Slice
// order is snapshot order and must stay stable: clients rely on it and
// the collection layer preserves it across partial failures.
func DefaultCatalog() []Spec {
	return []Spec{
		{
			Slug:        "pib",
			Name:        "PIB",
			Description: "PIB trimestral a preços de mercado",
			Source:      "IBGE",
			Provider:    ProviderIBGE,
			Series:      SeriesRef{Aggregate: "6601", Variable: "584", Window: 4},
			Derive:      DeriveLatest,
			Format:      TrillionsBRL,
			PeriodLabel: RawPeriodLabel,
		},
		{
			Slug:        "inflacao-ipca",
			Name:        "Inflação (IPCA)",
			Description: "IPCA acumulado 12 meses",
			Source:      "IBGE",
			Provider:    ProviderIBGE,
			Series:      SeriesRef{Aggregate: "1737", Variable: "63", Window: 12},
			Derive:      DeriveLatest,
			Format:      Percent,
			PeriodLabel: RawPeriodLabel,
		},
		{
			Slug:        "taxa-selic",
			Name:        "Taxa Selic",
			Description: "Taxa básica de juros",
			Source:      "Banco Central",
			Provider:    ProviderBCB,
			Series:      SeriesRef{BCBCode: 432, Window: 1},
			Derive:      DeriveLatest,
			Format:      Percent,
			PeriodLabel: UpdateDateLabel,
		},
		{
			Slug:        "dolar",
			Name:        "Dólar (USD/BRL)",
			Description: "Cotação comercial",
			Source:      "Banco Central",
			Provider:    ProviderBCB,
			Series:      SeriesRef{BCBCode: 1, Window: 1},
			Derive:      DeriveLatest,
			Format:      CurrencyBRL,
			PeriodLabel: RawPeriodLabel,
		},
		{
			Slug:        "taxa-desemprego",
			Name:        "Taxa de Desemprego",
			Description: "Taxa de desocupação",
			Source:      "IBGE",
			Provider:    ProviderIBGE,
			Series:      SeriesRef{Aggregate: "4099", Variable: "4099", Window: 2},
			Derive:      DeriveLatest,
			Format:      PercentCoarse,
			PeriodLabel: RawPeriodLabel,
		},
		{
			Slug:        "emprego-formal",
			Name:        "Geração de Empregos Formais",
			Description: "Saldo de empregos com carteira assinada",
			Source:      "Banco Central",
			Provider:    ProviderBCB,
			Series:      SeriesRef{BCBCode: 28763, Window: 1},
			Derive:      DeriveLatest,
			Format:      ThousandsJobs,
			PeriodLabel: UpdateDateLabel,
		},
		{
			Slug:        "rendimento-medio",
			Name:        "Rendimento Médio Real",
			Description: "Rendimento médio real de todos os trabalhos",
			Source:      "IBGE",
			Provider:    ProviderIBGE,
			Series:      SeriesRef{Aggregate: "6390", Variable: "5929", Window: 2},
			Derive:      DeriveLatest,
			Format:      CurrencyBRLWhole,
			PeriodLabel: RawPeriodLabel,
		},
		{
			Slug:        "balanca-comercial",
			Name:        "Balança Comercial",
			Description: "Saldo mensal de exportações menos importações",
			Source:      "Banco Central",
			Provider:    ProviderBCB,
			Series:      SeriesRef{BCBCode: 22707, Window: 1},
			Derive:      DeriveLatest,
			Format:      SignedBillionsUSD,
			PeriodLabel: UpdateDateLabel,
		},
		{
			Slug:        "corrente-comercio",
			Name:        "Corrente de Comércio",
			Description: "Soma das exportações e importações no mês",
			Source:      "Banco Central",
			Provider:    ProviderBCB,
			Series:      SeriesRef{BCBCode: 22708, Window: 1},
			Derive:      DeriveLatest,
			Format:      BillionsUSD,
			PeriodLabel: UpdateDateLabel,
		},
		{
			Slug:        "ibovespa",
			Name:        "Ibovespa",
			Description: "Para dados em tempo real, consulte o site da B3",
			Source:      "B3",
			Provider:    ProviderStatic,
			StaticValue: "Consultar B3",
		},
		{
			Slug:        "volume-credito",
			Name:        "Volume de Crédito",
			Description: "Saldo total das operações de crédito do sistema financeiro",
			Source:      "Banco Central",
			Provider:    ProviderBCB,
			Series:      SeriesRef{BCBCode: 20539, Window: 1},
			Derive:      DeriveLatest,
			Format:      TrillionsBRL,
			PeriodLabel: UpdateDateLabel,
		},
		{
			Slug:        "inadimplencia",
			Name:        "Taxa de Inadimplência",
			Description: "Percentual de empréstimos em atraso",
			Source:      "Banco Central",
			Provider:    ProviderBCB,
			Series:      SeriesRef{BCBCode: 21082, Window: 1},
			Derive:      DeriveLatest,
			Format:      PercentCoarse,
			PeriodLabel: UpdateDateLabel,
		},
		{
			Slug:        "producao-industrial",
			Name:        "Produção Industrial",
			Description: "Variação mensal",
			Source:      "IBGE",
			Provider:    ProviderIBGE,
			Series:      SeriesRef{Aggregate: "3653", Variable: "3135", Window: 2},
			Derive:      DeriveDelta,
			Format:      SignedPercent,
			PeriodLabel: RawPeriodLabel,
		},
		{
			Slug:        "vendas-varejo",
			Name:        "Vendas no Varejo",
			Description: "Variação mensal",
			Source:      "IBGE",
			Provider:    ProviderIBGE,
			Series:      SeriesRef{Aggregate: "3416", Variable: "1781", Window: 2},
			Derive:      DeriveDelta,
			Format:      SignedPercent,
			PeriodLabel: RawPeriodLabel,
		},
	}
}

// NewFetchers builds one Fetcher per catalog entry, preserving catalog
// order.
func NewFetchers(catalog []Spec, client httpclient.Client, bcbBaseURL, ibgeBaseURL string) []Fetcher {
	bcb := NewBCBClient(client, bcbBaseURL)
	ibge := NewIBGEClient(client, ibgeBaseURL)

	fetchers := make([]Fetcher, 0, len(catalog))
	for _, spec := range catalog {
		fetchers = append(fetchers, NewFetcher(spec, bcb, ibge))
	}
	return fetchers
}
