// Package config handles TOML configuration loading and validation.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// configSearchPaths lists paths checked in order when no explicit config is given.
var configSearchPaths = []string{
	"/etc/portal-bff/config.toml",
	"configs/config.toml",
}

// minSecretLength is the minimum byte length of the shared signing secret.
const minSecretLength = 32

// CLI holds command-line arguments parsed by Kong.
type CLI struct {
	Config        string `kong:"short='c',help='Path to TOML config file.',env='CONFIG_PATH'"`
	Host          string `kong:"help='Listen host (overrides config).',env='HOST'"`
	Port          int    `kong:"short='p',help='Listen port (overrides config).',env='PORT'"`
	SigningSecret string `kong:"help='Shared HMAC signing secret (overrides config).',env='BFF_HMAC_SECRET'"`
	LogLevel      string `kong:"help='Log level: debug|info|warn|error (overrides config).',env='LOG_LEVEL'"`
	DevMode       bool   `kong:"help='Serve synthetic responses instead of calling upstreams.',env='DEV_MODE'"`
}

// Config is the top-level application configuration.
type Config struct {
	App       AppConfig       `toml:"app"`
	Server    ServerConfig    `toml:"server"`
	Upstreams UpstreamsConfig `toml:"upstreams"`
	Auth      AuthConfig      `toml:"auth"`
	Log       LogConfig       `toml:"log"`
	Metrics   MetricsConfig   `toml:"metrics"`

	filePath string // resolved config file path (unexported)
}

// AppConfig holds public-facing identity values. Safe to echo to clients.
type AppConfig struct {
	Name string `toml:"name"`
	Env  string `toml:"env"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string          `toml:"host"`
	Port         int             `toml:"port"` // 0 means "use default" (8080); TOML cannot distinguish 0 from unset
	BodyMaxBytes int64           `toml:"body_max_bytes"`
	RateLimit    RateLimitConfig `toml:"rate_limit"`
}

// RateLimitConfig controls per-IP request rate limiting.
type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// UpstreamsConfig holds the base addresses and client settings for the
// three backend services the BFF proxies to.
type UpstreamsConfig struct {
	AuthURL         string `toml:"auth_url"`
	PaymentsURL     string `toml:"payments_url"`
	KYCURL          string `toml:"kyc_url"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
	IdleConnections int    `toml:"idle_connections"`
}

// AuthConfig holds session-cookie and signing settings. Server-side only;
// none of these values may reach the browser.
type AuthConfig struct {
	CookieName    string `toml:"cookie_name"`
	CookieDomain  string `toml:"cookie_domain"`
	CookieSecure  bool   `toml:"cookie_secure"`
	SigningSecret string `toml:"signing_secret"`
	DevMode       bool   `toml:"dev_mode"`
}

// LogConfig holds logging settings. Rotation fields are ignored when
// File is empty.
type LogConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Load reads the TOML config file and applies CLI overrides.
// When no explicit path is given (via --config or CONFIG_PATH), it searches
// /etc/portal-bff/config.toml then configs/config.toml.
func Load(cli *CLI) (*Config, error) {
	path := cli.Config
	if path == "" {
		path = findConfig()
	}
	if path == "" {
		return nil, fmt.Errorf("config: no config file found (searched %v)", configSearchPaths)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.filePath = path
	cfg.applyCLI(cli)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	cfg.SetDefaults()
	return &cfg, nil
}

// applyCLI overrides config values with non-zero CLI flags.
func (c *Config) applyCLI(cli *CLI) {
	if cli.Host != "" {
		c.Server.Host = cli.Host
	}
	if cli.Port != 0 {
		c.Server.Port = cli.Port
	}
	if cli.SigningSecret != "" {
		c.Auth.SigningSecret = cli.SigningSecret
	}
	if cli.LogLevel != "" {
		c.Log.Level = cli.LogLevel
	}
	if cli.DevMode {
		c.Auth.DevMode = true
	}
}

// Validate checks the configuration for errors. Exported so tests can
// exercise hand-built configs.
func (c *Config) Validate() error {
	// Upstream URLs: all three required; HTTPS enforced outside dev mode.
	upstreams := []struct {
		key string
		val string
	}{
		{"upstreams.auth_url", c.Upstreams.AuthURL},
		{"upstreams.payments_url", c.Upstreams.PaymentsURL},
		{"upstreams.kyc_url", c.Upstreams.KYCURL},
	}
	for _, up := range upstreams {
		if up.val == "" {
			return fmt.Errorf("%s is required", up.key)
		}
		u, err := url.Parse(up.val)
		if err != nil {
			return fmt.Errorf("%s is not a valid URL: %w", up.key, err)
		}
		if u.Scheme != "https" && !c.Auth.DevMode {
			return fmt.Errorf("%s must use HTTPS; got %q", up.key, up.val)
		}
		if u.Host == "" {
			return fmt.Errorf("%s has no host; got %q", up.key, up.val)
		}
	}

	// Signing secret: required, minimum length enforced. Too-short secrets
	// are a configuration error, never the signer's problem.
	if len(c.Auth.SigningSecret) < minSecretLength {
		return fmt.Errorf("auth.signing_secret must be at least %d bytes; got %d", minSecretLength, len(c.Auth.SigningSecret))
	}

	// Numeric bounds.
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 0–65535; got %d", c.Server.Port)
	}
	if c.Server.BodyMaxBytes < 0 {
		return fmt.Errorf("server.body_max_bytes must be non-negative; got %d", c.Server.BodyMaxBytes)
	}
	if c.Upstreams.TimeoutSeconds < 0 {
		return fmt.Errorf("upstreams.timeout_seconds must be non-negative; got %d", c.Upstreams.TimeoutSeconds)
	}
	if c.Upstreams.IdleConnections < 0 {
		return fmt.Errorf("upstreams.idle_connections must be non-negative; got %d", c.Upstreams.IdleConnections)
	}
	if c.Server.RateLimit.Enabled && c.Server.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("server.rate_limit.requests_per_second must be > 0 when rate limiting is enabled; got %v", c.Server.RateLimit.RequestsPerSecond)
	}

	// Log fields.
	level := strings.ToLower(c.Log.Level)
	switch level {
	case "debug", "info", "warn", "error", "":
		// valid
	default:
		return fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", c.Log.Level)
	}
	format := strings.ToLower(c.Log.Format)
	switch format {
	case "json", "text", "":
		// valid
	default:
		return fmt.Errorf("log.format must be one of: json, text; got %q", c.Log.Format)
	}

	// Metrics path validation (only when metrics are enabled).
	if c.Metrics.Enabled && c.Metrics.Path != "" {
		p := c.Metrics.Path
		if p[0] != '/' {
			return fmt.Errorf("metrics.path must start with '/'; got %q", p)
		}
		for _, reserved := range []string{"/api", "/healthz", "/bff/status"} {
			if p == reserved || strings.HasPrefix(p, reserved+"/") {
				return fmt.Errorf("metrics.path %q conflicts with reserved route %q", p, reserved)
			}
		}
	}

	return nil
}

// SetDefaults fills zero-valued fields with sensible defaults.
// For integer fields (Port, BodyMaxBytes, etc.), zero means "unset" because TOML
// cannot distinguish between an explicit 0 and an omitted key.
func (c *Config) SetDefaults() {
	if c.App.Name == "" {
		c.App.Name = "Financiera NextLab"
	}
	if c.App.Env == "" {
		c.App.Env = "local"
	}
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.BodyMaxBytes == 0 {
		c.Server.BodyMaxBytes = 10 * 1024 * 1024 // 10 MB
	}
	if c.Upstreams.TimeoutSeconds == 0 {
		c.Upstreams.TimeoutSeconds = 30
	}
	if c.Upstreams.IdleConnections == 0 {
		c.Upstreams.IdleConnections = 100
	}
	if c.Auth.CookieName == "" {
		c.Auth.CookieName = "nl_auth"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 100
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 3
	}
	if c.Log.MaxAgeDays == 0 {
		c.Log.MaxAgeDays = 28
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// findConfig returns the first config path that exists, or empty string.
func findConfig() string {
	return findConfigInPaths(configSearchPaths)
}

// findConfigInPaths returns the first path that exists on disk, or empty string.
func findConfigInPaths(paths []string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Addr returns the server listen address as host:port.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CookieMaxAge is the lifetime of the session cookie on issuance.
const CookieMaxAge = 8 * 60 * 60 // 8 hours, in seconds

// WarnPermissions logs a warning if the config file is readable by group or others.
// The file holds the signing secret, so loose permissions are worth flagging.
func (c *Config) WarnPermissions(logger *slog.Logger) {
	if c.filePath == "" {
		return
	}
	info, err := os.Stat(c.filePath)
	if err != nil {
		return
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		logger.Warn("config file is readable by group/others; consider chmod 600",
			"path", c.filePath,
			"mode", fmt.Sprintf("%04o", perm),
		)
	}
}
