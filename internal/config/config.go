// Package config provides configuration loading and management for the
// indicadores server.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/painel-economico/indicadores-server/internal/telemetry"
)

const (
	// StorageTypeMemory keeps the snapshot and annotations in process
	// memory only.
	StorageTypeMemory = "memory"

	// StorageTypePostgres persists the snapshot and annotations in
	// PostgreSQL.
	StorageTypePostgres = "postgres"
)

// EnvPrefix is the prefix of every environment variable the server
// consults.
const EnvPrefix = "INDICADORES"

// Environment variables consulted as fallbacks for secrets that should
// not live in the YAML file.
const (
	// EnvDatabasePassword carries the database password.
	EnvDatabasePassword = "INDICADORES_DATABASE_PASSWORD"

	// EnvAuthPasswordHash carries the argon2id hash of the admin
	// password.
	EnvAuthPasswordHash = "INDICADORES_AUTH_PASSWORD_HASH"
)

// Defaults applied when the corresponding setting is absent.
const (
	// DefaultAddress is the listen address of the HTTP server.
	DefaultAddress = ":8080"

	// DefaultCacheTTL is how long a snapshot stays fresh.
	DefaultCacheTTL = time.Hour

	// DefaultRefreshInterval is the cadence of the background refresh.
	DefaultRefreshInterval = 30 * time.Minute

	// DefaultRetryInterval is the shortened cadence after a failed
	// background refresh.
	DefaultRetryInterval = 5 * time.Minute

	// DefaultProviderTimeout bounds one upstream provider call.
	DefaultProviderTimeout = 30 * time.Second

	// DefaultSessionTTL is the lifetime of an issued session.
	DefaultSessionTTL = 8 * time.Hour

	// DefaultSweepInterval is the cadence of the expired-session sweep.
	DefaultSweepInterval = 10 * time.Minute
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		// Validate the path to prevent path traversal attacks
		if !filepath.IsAbs(realPath) {
			if !filepath.IsLocal(realPath) {
				return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
			}
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	Server    *ServerConfig     `yaml:"server,omitempty"`
	Cache     *CacheConfig      `yaml:"cache,omitempty"`
	Providers *ProvidersConfig  `yaml:"providers,omitempty"`
	Storage   *StorageConfig    `yaml:"storage,omitempty"`
	Database  *DatabaseConfig   `yaml:"database,omitempty"`
	Auth      *AuthConfig       `yaml:"auth,omitempty"`
	Telemetry *telemetry.Config `yaml:"telemetry,omitempty"`
}

// ServerConfig defines HTTP server settings
type ServerConfig struct {
	// Address is the listen address, e.g. ":8080"
	Address string `yaml:"address,omitempty"`
}

// GetAddress returns the listen address, falling back to the default.
func (s *ServerConfig) GetAddress() string {
	if s == nil || s.Address == "" {
		return DefaultAddress
	}
	return s.Address
}

// CacheConfig defines snapshot cache and background refresh settings.
// Durations are Go duration strings (e.g. "1h", "30m", "300s").
type CacheConfig struct {
	// TTL is how long a snapshot stays fresh before a read triggers a
	// refresh
	TTL string `yaml:"ttl,omitempty"`

	// RefreshInterval is the cadence of the background refresh loop
	RefreshInterval string `yaml:"refreshInterval,omitempty"`

	// RetryInterval is the shortened cadence applied after a failed
	// background refresh
	RetryInterval string `yaml:"retryInterval,omitempty"`
}

// GetTTL returns the snapshot TTL, falling back to the default.
func (c *CacheConfig) GetTTL() (time.Duration, error) {
	return parseDurationOr(c.ttl(), DefaultCacheTTL, "cache.ttl")
}

// GetRefreshInterval returns the background refresh cadence, falling
// back to the default.
func (c *CacheConfig) GetRefreshInterval() (time.Duration, error) {
	return parseDurationOr(c.refreshInterval(), DefaultRefreshInterval, "cache.refreshInterval")
}

// GetRetryInterval returns the post-failure refresh cadence, falling
// back to the default.
func (c *CacheConfig) GetRetryInterval() (time.Duration, error) {
	return parseDurationOr(c.retryInterval(), DefaultRetryInterval, "cache.retryInterval")
}

func (c *CacheConfig) ttl() string {
	if c == nil {
		return ""
	}
	return c.TTL
}

func (c *CacheConfig) refreshInterval() string {
	if c == nil {
		return ""
	}
	return c.RefreshInterval
}

func (c *CacheConfig) retryInterval() string {
	if c == nil {
		return ""
	}
	return c.RetryInterval
}

// ProvidersConfig defines upstream data provider settings
type ProvidersConfig struct {
	// BCB overrides the Banco Central SGS endpoint, mainly for tests
	BCB *ProviderConfig `yaml:"bcb,omitempty"`

	// IBGE overrides the IBGE agregados endpoint, mainly for tests
	IBGE *ProviderConfig `yaml:"ibge,omitempty"`

	// Timeout bounds one provider call (e.g. "30s")
	Timeout string `yaml:"timeout,omitempty"`
}

// ProviderConfig defines one upstream endpoint override
type ProviderConfig struct {
	// BaseURL is the provider base URL without a trailing path
	BaseURL string `yaml:"baseUrl,omitempty"`
}

// GetBCBBaseURL returns the configured Banco Central base URL or empty
// for the provider default.
func (p *ProvidersConfig) GetBCBBaseURL() string {
	if p == nil || p.BCB == nil {
		return ""
	}
	return p.BCB.BaseURL
}

// GetIBGEBaseURL returns the configured IBGE base URL or empty for the
// provider default.
func (p *ProvidersConfig) GetIBGEBaseURL() string {
	if p == nil || p.IBGE == nil {
		return ""
	}
	return p.IBGE.BaseURL
}

// GetTimeout returns the provider call timeout, falling back to the
// default.
func (p *ProvidersConfig) GetTimeout() (time.Duration, error) {
	timeout := ""
	if p != nil {
		timeout = p.Timeout
	}
	return parseDurationOr(timeout, DefaultProviderTimeout, "providers.timeout")
}

// StorageConfig selects the persistence backend
type StorageConfig struct {
	// Type is one of "memory" or "postgres"
	Type string `yaml:"type,omitempty"`
}

// GetStorageType returns the configured storage type, defaulting to
// memory.
func (c *Config) GetStorageType() string {
	if c == nil || c.Storage == nil || c.Storage.Type == "" {
		return StorageTypeMemory
	}
	return c.Storage.Type
}

// DatabaseConfig defines database connection settings
type DatabaseConfig struct {
	// Host is the database server hostname or IP address
	Host string `yaml:"host"`

	// Port is the database server port
	Port int `yaml:"port"`

	// User is the database username
	User string `yaml:"user"`

	// PasswordFile is the path to a file containing the database password
	// This is the recommended approach for production deployments
	// The file should contain only the password with optional trailing whitespace
	PasswordFile string `yaml:"passwordFile,omitempty"`

	// Password is an inline password for development setups. Prefer
	// PasswordFile or the environment variable in production.
	Password string `yaml:"password,omitempty"`

	// Database is the database name
	Database string `yaml:"database"`

	// SSLMode is the SSL mode for the connection (disable, require, verify-ca, verify-full)
	SSLMode string `yaml:"sslMode,omitempty"`

	// MaxOpenConns is the maximum number of open connections to the database
	MaxOpenConns int32 `yaml:"maxOpenConns,omitempty"`

	// MaxIdleConns is the maximum number of idle connections in the pool
	MaxIdleConns int32 `yaml:"maxIdleConns,omitempty"`

	// ConnMaxLifetime is the maximum lifetime of a connection (e.g., "1h", "30m")
	ConnMaxLifetime string `yaml:"connMaxLifetime,omitempty"`

	// MigrationUser is the user for schema migrations when it differs
	// from the application user
	MigrationUser string `yaml:"migrationUser,omitempty"`

	// DynamicAuth configures short-lived credentials instead of a
	// static password
	DynamicAuth *DynamicAuthConfig `yaml:"dynamicAuth,omitempty"`
}

// DynamicAuthConfig defines dynamic database authentication settings
type DynamicAuthConfig struct {
	// AWSRDSIAM enables AWS RDS IAM token authentication
	AWSRDSIAM *AWSRDSIAMConfig `yaml:"awsRdsIam,omitempty"`
}

// AWSRDSIAMConfig defines AWS RDS IAM authentication settings
type AWSRDSIAMConfig struct {
	// Region is the AWS region of the database instance, or "detect"
	// to resolve it from instance metadata
	Region string `yaml:"region"`
}

// GetPassword returns the database password using the following priority:
// 1. Read from PasswordFile if specified
// 2. Read from INDICADORES_DATABASE_PASSWORD environment variable
// 3. Inline Password field
//
// The password from file will have leading/trailing whitespace trimmed.
func (d *DatabaseConfig) GetPassword() (string, error) {
	// Priority 1: Read from file if specified
	if d.PasswordFile != "" {
		// Use filepath.Clean to prevent path traversal attacks
		cleanPath := filepath.Clean(d.PasswordFile)

		data, err := os.ReadFile(cleanPath)
		if err != nil {
			return "", fmt.Errorf("failed to read password from file %s: %w", d.PasswordFile, err)
		}

		// Trim whitespace (including newlines) from file content
		password := strings.TrimSpace(string(data))
		return password, nil
	}

	// Priority 2: Check environment variable
	if envPassword := os.Getenv(EnvDatabasePassword); envPassword != "" {
		return envPassword, nil
	}

	// Priority 3: Inline value
	if d.Password != "" {
		return d.Password, nil
	}

	return "", fmt.Errorf(
		"no database password configured: set passwordFile, %s or password", EnvDatabasePassword,
	)
}

// GetMigrationUser returns the user for schema migrations, falling back
// to the application user.
func (d *DatabaseConfig) GetMigrationUser() string {
	if d.MigrationUser != "" {
		return d.MigrationUser
	}
	return d.User
}

// GetConnectionString builds a PostgreSQL connection string with proper password handling.
// The password is URL-escaped to handle special characters safely.
func (d *DatabaseConfig) GetConnectionString() (string, error) {
	password, err := d.GetPassword()
	if err != nil {
		return "", err
	}

	return d.BuildConnectionStringWithAuth(d.User, password), nil
}

// BuildConnectionStringWithAuth builds a PostgreSQL connection string
// for the given user and credential. An empty credential yields a
// passwordless string, preserving pgpass-style fallbacks for callers
// that rely on them.
func (d *DatabaseConfig) BuildConnectionStringWithAuth(user, credential string) string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}

	userInfo := url.QueryEscape(user)
	if credential != "" {
		// URL-escape the credential to handle special characters
		userInfo = fmt.Sprintf("%s:%s", url.QueryEscape(user), url.QueryEscape(credential))
	}

	return fmt.Sprintf(
		"postgres://%s@%s:%d/%s?sslmode=%s",
		userInfo,
		d.Host,
		d.Port,
		d.Database,
		sslMode,
	)
}

// AuthConfig defines admin authentication and session settings
type AuthConfig struct {
	// PasswordHashFile is the path to a file containing the argon2id
	// hash of the admin password
	PasswordHashFile string `yaml:"passwordHashFile,omitempty"`

	// PasswordHash is the inline argon2id hash of the admin password
	PasswordHash string `yaml:"passwordHash,omitempty"`

	// SessionTTL is the lifetime of an issued session (e.g. "8h")
	SessionTTL string `yaml:"sessionTtl,omitempty"`

	// SweepInterval is the cadence of the expired-session sweep
	SweepInterval string `yaml:"sweepInterval,omitempty"`
}

// GetPasswordHash returns the admin password hash using the following
// priority: hash file, INDICADORES_AUTH_PASSWORD_HASH environment
// variable, inline value. An empty result means authenticated
// operations are disabled.
func (a *AuthConfig) GetPasswordHash() (string, error) {
	if a == nil {
		if envHash := os.Getenv(EnvAuthPasswordHash); envHash != "" {
			return envHash, nil
		}
		return "", nil
	}

	if a.PasswordHashFile != "" {
		cleanPath := filepath.Clean(a.PasswordHashFile)

		data, err := os.ReadFile(cleanPath)
		if err != nil {
			return "", fmt.Errorf("failed to read password hash from file %s: %w", a.PasswordHashFile, err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	if envHash := os.Getenv(EnvAuthPasswordHash); envHash != "" {
		return envHash, nil
	}

	return a.PasswordHash, nil
}

// GetSessionTTL returns the session lifetime, falling back to the
// default.
func (a *AuthConfig) GetSessionTTL() (time.Duration, error) {
	ttl := ""
	if a != nil {
		ttl = a.SessionTTL
	}
	return parseDurationOr(ttl, DefaultSessionTTL, "auth.sessionTtl")
}

// GetSweepInterval returns the expired-session sweep cadence, falling
// back to the default.
func (a *AuthConfig) GetSweepInterval() (time.Duration, error) {
	interval := ""
	if a != nil {
		interval = a.SweepInterval
	}
	return parseDurationOr(interval, DefaultSweepInterval, "auth.sweepInterval")
}

// LoadConfig loads and parses configuration from a YAML file
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	// As of now, this is required because there's no other options to load
	// configuration. Once we add more options, we can remove this check.
	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	// Read the entire file into memory
	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML content
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	// Validate the config
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns the configuration used when no file is provided:
// in-memory storage with every setting at its default.
func Default() *Config {
	return &Config{}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := c.validateStorage(); err != nil {
		return err
	}

	if err := c.validateDurations(); err != nil {
		return err
	}

	if c.Telemetry != nil {
		if err := c.Telemetry.Validate(); err != nil {
			return fmt.Errorf("telemetry configuration invalid: %w", err)
		}
	}

	return nil
}

// validateStorage ensures the storage type is known and its
// dependencies are configured.
func (c *Config) validateStorage() error {
	switch c.GetStorageType() {
	case StorageTypeMemory:
		return nil
	case StorageTypePostgres:
		return c.validateDatabase()
	default:
		return fmt.Errorf("storage.type must be %s or %s, got %s",
			StorageTypeMemory, StorageTypePostgres, c.Storage.Type)
	}
}

// validateDatabase validates the database connection settings required
// for postgres storage.
func (c *Config) validateDatabase() error {
	if c.Database == nil {
		return fmt.Errorf("database configuration is required for storage type %s", StorageTypePostgres)
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database.database is required")
	}
	if c.Database.ConnMaxLifetime != "" {
		if _, err := time.ParseDuration(c.Database.ConnMaxLifetime); err != nil {
			return fmt.Errorf("database.connMaxLifetime must be a valid duration (e.g., '30m', '1h'): %w", err)
		}
	}
	return nil
}

// validateDurations parses every duration setting so bad values fail at
// startup rather than at first use.
func (c *Config) validateDurations() error {
	if _, err := c.Cache.GetTTL(); err != nil {
		return err
	}
	if _, err := c.Cache.GetRefreshInterval(); err != nil {
		return err
	}
	if _, err := c.Cache.GetRetryInterval(); err != nil {
		return err
	}
	if _, err := c.Providers.GetTimeout(); err != nil {
		return err
	}
	if _, err := c.Auth.GetSessionTTL(); err != nil {
		return err
	}
	if _, err := c.Auth.GetSweepInterval(); err != nil {
		return err
	}
	return nil
}

// parseDurationOr parses a duration string, using the fallback when the
// value is empty.
func parseDurationOr(value string, fallback time.Duration, field string) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration (e.g., '30m', '1h'): %w", field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", field, value)
	}
	return d, nil
}
