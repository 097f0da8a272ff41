// Package session issues and validates the opaque bearer tokens that gate
// annotation writes. Sessions live in memory: restarting the server logs
// everyone out, which is acceptable for a single-operator dashboard.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/painel-economico/indicadores-server/internal/telemetry"
)

const (
	// DefaultLifetime is how long a session stays valid after login.
	DefaultLifetime = 8 * time.Hour

	// DefaultSweepInterval is how often the background sweep removes
	// expired sessions that no request has touched.
	DefaultSweepInterval = time.Hour

	// tokenBytes is the entropy of a session token before encoding.
	tokenBytes = 32
)

// ErrInvalidPassword is returned by Login when the password does not
// match the configured hash.
var ErrInvalidPassword = errors.New("invalid password")

//go:generate mockgen -destination=mocks/mock_authority.go -package=mocks -source=authority.go Authority

// Authority owns the session lifecycle: issuing tokens after password
// verification, validating them on protected requests and expiring them.
type Authority interface {
	// Login verifies the shared password and issues a new session token.
	// A wrong password returns ErrInvalidPassword.
	Login(ctx context.Context, password string) (string, error)

	// Validate reports whether the token belongs to a live session.
	// Expired sessions are purged on the spot.
	Validate(ctx context.Context, token string) bool

	// Revoke ends the session for the token. Unknown tokens are ignored.
	Revoke(ctx context.Context, token string)

	// Count returns the number of sessions currently held, expired ones
	// included until something purges them.
	Count() int

	// Lifetime returns how long a newly issued session stays valid.
	// Cookie expiry follows it.
	Lifetime() time.Duration

	// SweepExpired removes expired sessions and returns how many were
	// removed.
	SweepExpired(ctx context.Context) int

	// Run sweeps expired sessions periodically until the context is
	// cancelled.
	Run(ctx context.Context) error
}

type defaultAuthority struct {
	passwordHash  string
	lifetime      time.Duration
	sweepInterval time.Duration
	metrics       *telemetry.SessionMetrics

	// now is the clock; replaced in tests.
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]time.Time
}

// Option is a function that configures the authority.
type Option func(*defaultAuthority)

// WithLifetime overrides the session lifetime.
func WithLifetime(d time.Duration) Option {
	return func(a *defaultAuthority) {
		if d > 0 {
			a.lifetime = d
		}
	}
}

// WithSweepInterval overrides the background sweep interval.
func WithSweepInterval(d time.Duration) Option {
	return func(a *defaultAuthority) {
		if d > 0 {
			a.sweepInterval = d
		}
	}
}

// WithMetrics enables session metrics. A nil group is recorded as a
// no-op.
func WithMetrics(metrics *telemetry.SessionMetrics) Option {
	return func(a *defaultAuthority) {
		a.metrics = metrics
	}
}

var _ Authority = (*defaultAuthority)(nil)

// New creates an authority verifying logins against the given argon2id
// hash. The hash is validated up front so a malformed one fails at
// startup instead of on the first login.
func New(passwordHash string, opts ...Option) (Authority, error) {
	if _, _, _, err := decodeHash(passwordHash); err != nil {
		return nil, fmt.Errorf("invalid password hash: %w", err)
	}

	a := &defaultAuthority{
		passwordHash:  passwordHash,
		lifetime:      DefaultLifetime,
		sweepInterval: DefaultSweepInterval,
		now:           time.Now,
		sessions:      make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *defaultAuthority) Login(ctx context.Context, password string) (string, error) {
	ok, err := VerifyPassword(password, a.passwordHash)
	if err != nil {
		return "", fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		a.metrics.RecordLoginAttempt(ctx, false)
		slog.WarnContext(ctx, "Login attempt with invalid password")
		return "", ErrInvalidPassword
	}

	token, err := newToken()
	if err != nil {
		return "", err
	}

	a.mu.Lock()
	a.sessions[token] = a.now().Add(a.lifetime)
	count := len(a.sessions)
	a.mu.Unlock()

	a.metrics.RecordLoginAttempt(ctx, true)
	a.metrics.RecordActiveSessions(ctx, int64(count))
	slog.InfoContext(ctx, "Session created",
		"active_sessions", count,
		"lifetime", a.lifetime)
	return token, nil
}

func (a *defaultAuthority) Validate(ctx context.Context, token string) bool {
	a.mu.Lock()
	expiry, ok := a.sessions[token]
	expired := ok && !a.now().Before(expiry)
	if expired {
		delete(a.sessions, token)
	}
	count := len(a.sessions)
	a.mu.Unlock()

	if expired {
		a.metrics.RecordActiveSessions(ctx, int64(count))
		slog.DebugContext(ctx, "Expired session purged on validation")
	}
	return ok && !expired
}

func (a *defaultAuthority) Revoke(ctx context.Context, token string) {
	a.mu.Lock()
	_, ok := a.sessions[token]
	delete(a.sessions, token)
	count := len(a.sessions)
	a.mu.Unlock()

	if ok {
		a.metrics.RecordActiveSessions(ctx, int64(count))
		slog.InfoContext(ctx, "Session revoked", "active_sessions", count)
	}
}

func (a *defaultAuthority) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.sessions)
}

func (a *defaultAuthority) Lifetime() time.Duration {
	return a.lifetime
}

func (a *defaultAuthority) SweepExpired(ctx context.Context) int {
	now := a.now()

	a.mu.Lock()
	removed := 0
	for token, expiry := range a.sessions {
		if !now.Before(expiry) {
			delete(a.sessions, token)
			removed++
		}
	}
	count := len(a.sessions)
	a.mu.Unlock()

	if removed > 0 {
		a.metrics.RecordActiveSessions(ctx, int64(count))
		slog.InfoContext(ctx, "Swept expired sessions",
			"removed", removed,
			"active_sessions", count)
	}
	return removed
}

// Run sweeps expired sessions every sweep interval. Validation already
// purges lazily; the sweep only reclaims sessions nobody presents again.
func (a *defaultAuthority) Run(ctx context.Context) error {
	slog.Info("Starting session sweep loop", "interval", a.sweepInterval)

	ticker := time.NewTicker(a.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.SweepExpired(ctx)
		case <-ctx.Done():
			slog.Info("Session sweep loop stopping")
			return nil
		}
	}
}

// newToken returns a fresh URL-safe session token.
func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Disabled returns an authority that rejects every login and validates
// no token. Used when no password hash is configured, so protected
// routes stay locked instead of open.
func Disabled() Authority {
	return disabledAuthority{}
}

type disabledAuthority struct{}

func (disabledAuthority) Login(ctx context.Context, _ string) (string, error) {
	slog.WarnContext(ctx, "Login attempted but no password hash is configured")
	return "", ErrInvalidPassword
}

func (disabledAuthority) Validate(context.Context, string) bool { return false }

func (disabledAuthority) Revoke(context.Context, string) {}

func (disabledAuthority) Count() int { return 0 }

func (disabledAuthority) Lifetime() time.Duration { return 0 }

func (disabledAuthority) SweepExpired(context.Context) int { return 0 }

// Run blocks until the context is cancelled so the caller can manage it
// like a real sweep loop.
func (disabledAuthority) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}
