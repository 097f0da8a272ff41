package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/painel-economico/indicadores-server/internal/aggregate"
	"github.com/painel-economico/indicadores-server/internal/api"
	"github.com/painel-economico/indicadores-server/internal/cache"
	"github.com/painel-economico/indicadores-server/internal/config"
	"github.com/painel-economico/indicadores-server/internal/httpclient"
	"github.com/painel-economico/indicadores-server/internal/refresh"
	"github.com/painel-economico/indicadores-server/internal/service"
	"github.com/painel-economico/indicadores-server/internal/session"
	"github.com/painel-economico/indicadores-server/internal/sources"
	"github.com/painel-economico/indicadores-server/internal/store"
	"github.com/painel-economico/indicadores-server/internal/telemetry"
)

const (
	defaultHTTPAddress    = ":8080"
	defaultRequestTimeout = 10 * time.Second
	defaultReadTimeout    = 10 * time.Second
	defaultWriteTimeout   = 15 * time.Second
	defaultIdleTimeout    = 60 * time.Second
)

// cacheTracerName is the instrumentation scope of refresh-pass spans.
const cacheTracerName = "github.com/painel-economico/indicadores-server/cache"

// IndicadoresAppOptions is a function that configures the app builder
type IndicadoresAppOptions func(*indicadoresAppConfig) error

// indicadoresAppConfig builds an IndicadoresApp using the builder pattern.
// It supports dependency injection for testing while providing sensible
// defaults for production.
type indicadoresAppConfig struct {
	config *config.Config

	// Optional component overrides (primarily for testing)
	store    store.Store
	fetchers []sources.Fetcher
	history  aggregate.HistorySource
	sessions session.Authority

	// HTTP server options
	address        string
	middlewares    []func(http.Handler) http.Handler
	requestTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration

	// Background loop control
	disableBackgroundRefresh bool

	// Telemetry components
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	metricsHandler http.Handler
	metricsPath    string
}

func baseConfig(opts ...IndicadoresAppOptions) (*indicadoresAppConfig, error) {
	cfg := &indicadoresAppConfig{
		address:        defaultHTTPAddress,
		requestTimeout: defaultRequestTimeout,
		readTimeout:    defaultReadTimeout,
		writeTimeout:   defaultWriteTimeout,
		idleTimeout:    defaultIdleTimeout,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.config == nil {
		cfg.config = config.Default()
	}

	return cfg, nil
}

// NewIndicadoresApp creates a new app with the given configuration
func NewIndicadoresApp(
	ctx context.Context,
	opts ...IndicadoresAppOptions,
) (*IndicadoresApp, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}

	// Create the store (single decision point for memory vs postgres)
	if cfg.store == nil {
		cfg.store, err = store.NewStore(ctx, cfg.config)
		if err != nil {
			return nil, fmt.Errorf("failed to create store: %w", err)
		}
	}

	// Ensure cleanup happens on error
	var cleanupNeeded = true
	defer func() {
		if cleanupNeeded && cfg.store != nil {
			cfg.store.Close()
		}
	}()

	// Build aggregation components: fetchers, coordinator and cache
	snapshotCache, coordinator, err := buildAggregationComponents(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build aggregation components: %w", err)
	}

	// Build the session authority (if not injected)
	if cfg.sessions == nil {
		cfg.sessions, err = buildSessionAuthority(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to build session authority: %w", err)
		}
	}

	// Build the background refresh coordinator
	refreshCoordinator, err := buildRefreshCoordinator(cfg, snapshotCache)
	if err != nil {
		return nil, fmt.Errorf("failed to build refresh coordinator: %w", err)
	}

	// Build the dashboard service
	svc := service.New(snapshotCache, coordinator, cfg.store)

	// Build HTTP server
	httpServer, err := buildHTTPServer(ctx, cfg, svc)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP server: %w", err)
	}

	// Create application context
	appCtx, cancel := context.WithCancel(ctx)

	// Cleanup is now handled by the app, not in defer
	cleanupNeeded = false

	st := cfg.store
	cancelFunc := func() {
		cancel()
		if st != nil {
			st.Close()
		}
	}

	return &IndicadoresApp{
		config: cfg.config,
		components: &AppComponents{
			RefreshCoordinator: refreshCoordinator,
			Sessions:           cfg.sessions,
			Service:            svc,
			Store:              cfg.store,
		},
		httpServer: httpServer,
		ctx:        appCtx,
		cancelFunc: cancelFunc,
	}, nil
}

// WithConfig sets the configuration
func WithConfig(c *config.Config) IndicadoresAppOptions {
	return func(cfg *indicadoresAppConfig) error {
		cfg.config = c
		return nil
	}
}

// WithAddress sets the HTTP server address
func WithAddress(addr string) IndicadoresAppOptions {
	return func(cfg *indicadoresAppConfig) error {
		if addr == "" {
			return fmt.Errorf("address cannot be empty")
		}

		parts := strings.SplitN(addr, ":", 2)
		if len(parts) != 2 {
			return fmt.Errorf("address must be host:port, got %s", addr)
		}
		host := parts[0]
		port := parts[1]

		if port == "" {
			return fmt.Errorf("address is not a valid port: %s", addr)
		}
		if host == "localhost" {
			host = "127.0.0.1"
		}
		if host == "" {
			host = "0.0.0.0"
		}

		if _, err := netip.ParseAddrPort(host + ":" + port); err != nil {
			return fmt.Errorf("address is not a valid port: %w", err)
		}

		cfg.address = addr
		return nil
	}
}

// WithMiddlewares sets custom HTTP middlewares
func WithMiddlewares(mw ...func(http.Handler) http.Handler) IndicadoresAppOptions {
	return func(cfg *indicadoresAppConfig) error {
		cfg.middlewares = mw
		return nil
	}
}

// WithStore allows injecting a custom store (for testing)
func WithStore(st store.Store) IndicadoresAppOptions {
	return func(cfg *indicadoresAppConfig) error {
		cfg.store = st
		return nil
	}
}

// WithFetchers allows injecting custom indicator fetchers (for testing)
func WithFetchers(fetchers []sources.Fetcher) IndicadoresAppOptions {
	return func(cfg *indicadoresAppConfig) error {
		cfg.fetchers = fetchers
		return nil
	}
}

// WithHistorySource allows injecting a custom history source (for testing)
func WithHistorySource(history aggregate.HistorySource) IndicadoresAppOptions {
	return func(cfg *indicadoresAppConfig) error {
		cfg.history = history
		return nil
	}
}

// WithSessionAuthority allows injecting a custom session authority (for testing)
func WithSessionAuthority(sessions session.Authority) IndicadoresAppOptions {
	return func(cfg *indicadoresAppConfig) error {
		cfg.sessions = sessions
		return nil
	}
}

// WithoutBackgroundRefresh disables the background refresh loop. Reads
// still trigger refreshes on demand through the cache TTL gate.
func WithoutBackgroundRefresh() IndicadoresAppOptions {
	return func(cfg *indicadoresAppConfig) error {
		cfg.disableBackgroundRefresh = true
		return nil
	}
}

// WithMeterProvider sets the OpenTelemetry meter provider for metrics
func WithMeterProvider(mp metric.MeterProvider) IndicadoresAppOptions {
	return func(cfg *indicadoresAppConfig) error {
		cfg.meterProvider = mp
		return nil
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider for request
// and refresh-pass tracing
func WithTracerProvider(tp trace.TracerProvider) IndicadoresAppOptions {
	return func(cfg *indicadoresAppConfig) error {
		cfg.tracerProvider = tp
		return nil
	}
}

// WithMetricsHandler mounts a metrics scrape handler on the API server
func WithMetricsHandler(path string, handler http.Handler) IndicadoresAppOptions {
	return func(cfg *indicadoresAppConfig) error {
		cfg.metricsPath = path
		cfg.metricsHandler = handler
		return nil
	}
}

// buildAggregationComponents builds the fetcher catalog, the aggregation
// coordinator and the snapshot cache
func buildAggregationComponents(cfg *indicadoresAppConfig) (cache.Cache, aggregate.Coordinator, error) {
	slog.Info("Initializing aggregation components")

	providerTimeout, err := cfg.config.Providers.GetTimeout()
	if err != nil {
		return nil, nil, err
	}

	bcbBaseURL := cfg.config.Providers.GetBCBBaseURL()
	ibgeBaseURL := cfg.config.Providers.GetIBGEBaseURL()

	client := httpclient.NewDefaultClient(providerTimeout)
	if cfg.fetchers == nil {
		cfg.fetchers = sources.NewFetchers(sources.DefaultCatalog(), client, bcbBaseURL, ibgeBaseURL)
	}
	if cfg.history == nil {
		cfg.history = sources.NewHistoryProvider(
			sources.DefaultHistory(),
			sources.NewBCBClient(client, bcbBaseURL),
			sources.NewIBGEClient(client, ibgeBaseURL),
		)
	}

	coordinator := aggregate.NewCoordinator(cfg.fetchers, cfg.history,
		aggregate.WithFetchTimeout(providerTimeout))

	ttl, err := cfg.config.Cache.GetTTL()
	if err != nil {
		return nil, nil, err
	}

	cacheOpts := []cache.Option{cache.WithTTL(ttl)}

	// Create snapshot metrics if meter provider is configured
	if cfg.meterProvider != nil {
		refreshMetrics, err := telemetry.NewRefreshMetrics(cfg.meterProvider)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create refresh metrics: %w", err)
		}
		snapshotMetrics, err := telemetry.NewSnapshotMetrics(cfg.meterProvider)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create snapshot metrics: %w", err)
		}
		cacheOpts = append(cacheOpts, cache.WithMetrics(refreshMetrics, snapshotMetrics))
		slog.Info("Snapshot metrics enabled")
	}

	if cfg.tracerProvider != nil {
		cacheOpts = append(cacheOpts, cache.WithTracer(cfg.tracerProvider.Tracer(cacheTracerName)))
	}

	snapshotCache := cache.NewCache(coordinator, cfg.store, cacheOpts...)
	slog.Info("Aggregation components initialized successfully",
		"fetchers", len(cfg.fetchers),
		"cache_ttl", ttl)

	return snapshotCache, coordinator, nil
}

// buildSessionAuthority builds the session authority from the auth
// configuration. A missing password hash yields a disabled authority
// that rejects every login.
func buildSessionAuthority(cfg *indicadoresAppConfig) (session.Authority, error) {
	passwordHash, err := cfg.config.Auth.GetPasswordHash()
	if err != nil {
		return nil, err
	}

	if passwordHash == "" {
		slog.Warn("No admin password hash configured, annotation writes are disabled")
		return session.Disabled(), nil
	}

	sessionTTL, err := cfg.config.Auth.GetSessionTTL()
	if err != nil {
		return nil, err
	}
	sweepInterval, err := cfg.config.Auth.GetSweepInterval()
	if err != nil {
		return nil, err
	}

	sessionOpts := []session.Option{
		session.WithLifetime(sessionTTL),
		session.WithSweepInterval(sweepInterval),
	}

	// Create session metrics if meter provider is configured
	if cfg.meterProvider != nil {
		sessionMetrics, err := telemetry.NewSessionMetrics(cfg.meterProvider)
		if err != nil {
			return nil, fmt.Errorf("failed to create session metrics: %w", err)
		}
		sessionOpts = append(sessionOpts, session.WithMetrics(sessionMetrics))
	}

	slog.Info("Session authority initialized", "session_ttl", sessionTTL)
	return session.New(passwordHash, sessionOpts...)
}

// buildRefreshCoordinator builds the background refresh coordinator, or
// returns nil when background refresh is disabled
func buildRefreshCoordinator(cfg *indicadoresAppConfig, snapshotCache cache.Cache) (refresh.Coordinator, error) {
	if cfg.disableBackgroundRefresh {
		slog.Info("Background refresh disabled")
		return nil, nil
	}

	interval, err := cfg.config.Cache.GetRefreshInterval()
	if err != nil {
		return nil, err
	}
	retryInterval, err := cfg.config.Cache.GetRetryInterval()
	if err != nil {
		return nil, err
	}

	return refresh.New(snapshotCache,
		refresh.WithInterval(interval),
		refresh.WithRetryInterval(retryInterval),
	), nil
}

// buildHTTPServer builds the HTTP server with router and middleware
//
//nolint:unparam // we prefer having a similar interface
func buildHTTPServer(
	_ context.Context,
	cfg *indicadoresAppConfig,
	svc service.Service,
) (*http.Server, error) {
	slog.Info("Initializing HTTP server")

	// Use default middlewares if not provided
	if cfg.middlewares == nil {
		cfg.middlewares = []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			middleware.Timeout(cfg.requestTimeout),
			api.LoggingMiddleware,
		}
	}

	// Add metrics middleware if meter provider is configured
	// This should be added early in the chain to capture all requests
	if cfg.meterProvider != nil {
		metricsMiddleware, err := telemetry.MetricsMiddleware(cfg.meterProvider)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics middleware: %w", err)
		}
		if metricsMiddleware != nil {
			cfg.middlewares = append([]func(http.Handler) http.Handler{metricsMiddleware}, cfg.middlewares...)
			slog.Info("HTTP metrics middleware enabled")
		}
	}

	// Add tracing middleware ahead of everything else so every request
	// carries a span
	if cfg.tracerProvider != nil {
		tracingMiddleware := telemetry.TracingMiddleware(cfg.tracerProvider)
		cfg.middlewares = append([]func(http.Handler) http.Handler{tracingMiddleware}, cfg.middlewares...)
		slog.Info("HTTP tracing middleware enabled")
	}

	serverOpts := []api.ServerOption{
		api.WithMiddlewares(cfg.middlewares...),
	}
	if cfg.metricsHandler != nil {
		serverOpts = append(serverOpts, api.WithMetricsHandler(cfg.metricsPath, cfg.metricsHandler))
	}

	// Create router with middlewares
	router := api.NewServer(svc, cfg.sessions, serverOpts...)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.address,
		Handler:      router,
		ReadTimeout:  cfg.readTimeout,
		WriteTimeout: cfg.writeTimeout,
		IdleTimeout:  cfg.idleTimeout,
	}

	slog.Info("HTTP server configured", "address", cfg.address)
	return server, nil
}
