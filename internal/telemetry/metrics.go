// Package telemetry provides OpenTelemetry instrumentation for the indicators API server.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// SnapshotMetricsMeterName is the name used for the snapshot metrics meter
	SnapshotMetricsMeterName = "github.com/painel-economico/indicadores-server/snapshot"

	// RefreshMetricsMeterName is the name used for the refresh metrics meter
	RefreshMetricsMeterName = "github.com/painel-economico/indicadores-server/refresh"

	// SessionMetricsMeterName is the name used for the session metrics meter
	SessionMetricsMeterName = "github.com/painel-economico/indicadores-server/session"
)

// SnapshotMetrics holds the OpenTelemetry instruments for snapshot metrics
type SnapshotMetrics struct {
	indicatorsCached      metric.Int64Gauge
	indicatorsUnavailable metric.Int64Gauge
}

// NewSnapshotMetrics creates a new SnapshotMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewSnapshotMetrics(provider metric.MeterProvider) (*SnapshotMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(SnapshotMetricsMeterName)

	indicatorsCached, err := meter.Int64Gauge(
		"indicadores_api_snapshot_indicators",
		metric.WithDescription("Number of indicators in the current snapshot"),
		metric.WithUnit("{indicator}"),
	)
	if err != nil {
		return nil, err
	}

	indicatorsUnavailable, err := meter.Int64Gauge(
		"indicadores_api_snapshot_unavailable",
		metric.WithDescription("Number of unavailable indicators in the current snapshot"),
		metric.WithUnit("{indicator}"),
	)
	if err != nil {
		return nil, err
	}

	return &SnapshotMetrics{
		indicatorsCached:      indicatorsCached,
		indicatorsUnavailable: indicatorsUnavailable,
	}, nil
}

// RecordSnapshot records the size of the snapshot that was just installed
func (m *SnapshotMetrics) RecordSnapshot(ctx context.Context, total, unavailable int64) {
	if m == nil || m.indicatorsCached == nil {
		return
	}

	m.indicatorsCached.Record(ctx, total)
	m.indicatorsUnavailable.Record(ctx, unavailable)
}

// RefreshMetrics holds the OpenTelemetry instruments for refresh operation metrics
type RefreshMetrics struct {
	refreshDuration metric.Float64Histogram
	refreshTotal    metric.Int64Counter
}

// NewRefreshMetrics creates a new RefreshMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewRefreshMetrics(provider metric.MeterProvider) (*RefreshMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(RefreshMetricsMeterName)

	refreshDuration, err := meter.Float64Histogram(
		"indicadores_api_refresh_duration_seconds",
		metric.WithDescription("Duration of snapshot refresh operations in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60),
	)
	if err != nil {
		return nil, err
	}

	refreshTotal, err := meter.Int64Counter(
		"indicadores_api_refresh_total",
		metric.WithDescription("Total number of snapshot refresh operations by outcome"),
		metric.WithUnit("{refresh}"),
	)
	if err != nil {
		return nil, err
	}

	return &RefreshMetrics{
		refreshDuration: refreshDuration,
		refreshTotal:    refreshTotal,
	}, nil
}

// RecordRefresh records the duration and outcome of a refresh operation
func (m *RefreshMetrics) RecordRefresh(ctx context.Context, duration time.Duration, outcome string) {
	if m == nil || m.refreshDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("outcome", outcome),
	}

	m.refreshDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	m.refreshTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// SessionMetrics holds the OpenTelemetry instruments for session metrics
type SessionMetrics struct {
	activeSessions metric.Int64Gauge
	loginAttempts  metric.Int64Counter
}

// NewSessionMetrics creates a new SessionMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewSessionMetrics(provider metric.MeterProvider) (*SessionMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(SessionMetricsMeterName)

	activeSessions, err := meter.Int64Gauge(
		"indicadores_api_active_sessions",
		metric.WithDescription("Number of currently active sessions"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, err
	}

	loginAttempts, err := meter.Int64Counter(
		"indicadores_api_login_attempts_total",
		metric.WithDescription("Total number of login attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	return &SessionMetrics{
		activeSessions: activeSessions,
		loginAttempts:  loginAttempts,
	}, nil
}

// RecordActiveSessions records the current number of active sessions
func (m *SessionMetrics) RecordActiveSessions(ctx context.Context, count int64) {
	if m == nil || m.activeSessions == nil {
		return
	}

	m.activeSessions.Record(ctx, count)
}

// RecordLoginAttempt records a login attempt and whether it succeeded
func (m *SessionMetrics) RecordLoginAttempt(ctx context.Context, success bool) {
	if m == nil || m.loginAttempts == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.Bool("success", success),
	}

	m.loginAttempts.Add(ctx, 1, metric.WithAttributes(attrs...))
}
