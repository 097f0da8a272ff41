package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	appbuilder "github.com/painel-economico/indicadores-server/internal/app"
	"github.com/painel-economico/indicadores-server/internal/config"
	"github.com/painel-economico/indicadores-server/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the indicators API server",
	Long: `Start the indicators API server to serve the aggregated dashboard data.

Without --config the server runs with in-memory storage and the public
provider endpoints. A configuration file (--config) can select PostgreSQL
storage, override cache and session settings and enable telemetry.

See examples/ directory for sample configurations.`,
	RunE: runServe,
}

const (
	defaultGracefulTimeout  = 30 * time.Second // Enough for in-flight requests and a refresh pass to settle
	telemetryFlushTimeout   = 5 * time.Second  // Bounds the final trace/metric export
	noBackgroundRefreshFlag = "no-background-refresh"
)

func init() {
	serveCmd.Flags().String("address", "", "Address to listen on (overrides the configuration file)")
	serveCmd.Flags().String("config", "", "Path to configuration file (YAML format)")
	serveCmd.Flags().Bool(noBackgroundRefreshFlag, false, "Disable the periodic background refresh loop")

	err := viper.BindPFlag("address", serveCmd.Flags().Lookup("address"))
	if err != nil {
		slog.Error("Failed to bind address flag", "error", err)
		os.Exit(1)
	}
	err = viper.BindPFlag("config", serveCmd.Flags().Lookup("config"))
	if err != nil {
		slog.Error("Failed to bind config flag", "error", err)
		os.Exit(1)
	}
}

// loadServeConfig loads the configuration file when one is given and
// falls back to the built-in defaults (in-memory storage) otherwise.
func loadServeConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		slog.Info("No configuration file provided, using defaults")
		return config.Default(), nil
	}

	cfg, err := config.LoadConfig(config.WithConfigPath(configPath))
	if err != nil {
		return nil, err
	}
	slog.Info("Loaded configuration", "path", configPath, "storage", cfg.GetStorageType())
	return cfg, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadServeConfig(viper.GetString("config"))
	if err != nil {
		return err
	}

	// The --address flag wins over the configuration file
	address := viper.GetString("address")
	if address == "" {
		address = cfg.Server.GetAddress()
	}

	// Initialize telemetry (no-op providers when disabled)
	tel, err := telemetry.New(ctx, telemetry.WithTelemetryConfig(cfg.Telemetry))
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), telemetryFlushTimeout)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			slog.Error("Telemetry shutdown failed", "error", err)
		}
	}()

	opts := []appbuilder.IndicadoresAppOptions{
		appbuilder.WithConfig(cfg),
		appbuilder.WithAddress(address),
	}

	if cfg.Telemetry != nil && cfg.Telemetry.Enabled {
		opts = append(opts,
			appbuilder.WithMeterProvider(tel.MeterProvider()),
			appbuilder.WithTracerProvider(tel.TracerProvider()),
		)
		if handler := tel.MetricsHandler(); handler != nil {
			opts = append(opts, appbuilder.WithMetricsHandler(tel.MetricsPath(), handler))
		}
	}

	if noRefresh, flagErr := cmd.Flags().GetBool(noBackgroundRefreshFlag); flagErr == nil && noRefresh {
		opts = append(opts, appbuilder.WithoutBackgroundRefresh())
	}

	application, err := appbuilder.NewIndicadoresApp(ctx, opts...)
	if err != nil {
		return err
	}

	// Start the server in a goroutine so we can wait for signals
	errChan := make(chan error, 1)
	go func() {
		errChan <- application.Start()
	}()

	// Wait for interrupt signal or server failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		// ListenAndServe failed before any signal arrived
		return err
	case sig := <-quit:
		slog.Info("Received shutdown signal", "signal", sig.String())
	}

	if err := application.Stop(defaultGracefulTimeout); err != nil {
		return err
	}

	// Drain the Start result so the server goroutine finishes
	select {
	case err := <-errChan:
		return err
	case <-time.After(defaultGracefulTimeout):
		return nil
	}
}
