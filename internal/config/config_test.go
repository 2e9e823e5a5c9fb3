package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testSecret = "change_me_to_a_long_random_secret_32_chars_minimum"

// cliWithPath returns a CLI struct pointing at the given config file.
func cliWithPath(path string) *CLI {
	return &CLI{Config: path}
}

// writeConfig writes a TOML config to a temp dir and returns its path.
func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func validConfig() string {
	return `
[server]
host = "127.0.0.1"
port = 9000

[upstreams]
auth_url = "https://auth.example.com"
payments_url = "https://payments.example.com"
kyc_url = "https://kyc.example.com"
timeout_seconds = 15

[auth]
cookie_name = "nl_auth"
cookie_secure = true
signing_secret = "` + testSecret + `"

[log]
level = "debug"
format = "text"
`
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, validConfig())

	cfg, err := Load(cliWithPath(path))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9000)
	}
	if cfg.Upstreams.AuthURL != "https://auth.example.com" {
		t.Errorf("Upstreams.AuthURL = %q", cfg.Upstreams.AuthURL)
	}
	if cfg.Upstreams.TimeoutSeconds != 15 {
		t.Errorf("Upstreams.TimeoutSeconds = %d, want 15", cfg.Upstreams.TimeoutSeconds)
	}
	if cfg.Auth.SigningSecret != testSecret {
		t.Errorf("Auth.SigningSecret = %q", cfg.Auth.SigningSecret)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
[upstreams]
auth_url = "https://auth.example.com"
payments_url = "https://payments.example.com"
kyc_url = "https://kyc.example.com"

[auth]
signing_secret = "`+testSecret+`"
`)

	cfg, err := Load(cliWithPath(path))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("default Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.BodyMaxBytes != 10*1024*1024 {
		t.Errorf("default Server.BodyMaxBytes = %d", cfg.Server.BodyMaxBytes)
	}
	if cfg.Auth.CookieName != "nl_auth" {
		t.Errorf("default Auth.CookieName = %q, want %q", cfg.Auth.CookieName, "nl_auth")
	}
	if cfg.Upstreams.TimeoutSeconds != 30 {
		t.Errorf("default Upstreams.TimeoutSeconds = %d, want 30", cfg.Upstreams.TimeoutSeconds)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("default log settings = %q/%q, want info/json", cfg.Log.Level, cfg.Log.Format)
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("default Metrics.Path = %q, want /metrics", cfg.Metrics.Path)
	}
	if cfg.App.Env != "local" {
		t.Errorf("default App.Env = %q, want local", cfg.App.Env)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{
			name: "missing auth upstream",
			data: `
[upstreams]
payments_url = "https://payments.example.com"
kyc_url = "https://kyc.example.com"
[auth]
signing_secret = "` + testSecret + `"
`,
			wantErr: "upstreams.auth_url is required",
		},
		{
			name: "http upstream outside dev mode",
			data: `
[upstreams]
auth_url = "http://auth.example.com"
payments_url = "https://payments.example.com"
kyc_url = "https://kyc.example.com"
[auth]
signing_secret = "` + testSecret + `"
`,
			wantErr: "must use HTTPS",
		},
		{
			name: "short signing secret",
			data: `
[upstreams]
auth_url = "https://auth.example.com"
payments_url = "https://payments.example.com"
kyc_url = "https://kyc.example.com"
[auth]
signing_secret = "too-short"
`,
			wantErr: "auth.signing_secret must be at least 32 bytes",
		},
		{
			name: "port out of range",
			data: `
[server]
port = 70000
[upstreams]
auth_url = "https://auth.example.com"
payments_url = "https://payments.example.com"
kyc_url = "https://kyc.example.com"
[auth]
signing_secret = "` + testSecret + `"
`,
			wantErr: "server.port",
		},
		{
			name: "bad log level",
			data: `
[upstreams]
auth_url = "https://auth.example.com"
payments_url = "https://payments.example.com"
kyc_url = "https://kyc.example.com"
[auth]
signing_secret = "` + testSecret + `"
[log]
level = "verbose"
`,
			wantErr: "log.level",
		},
		{
			name: "metrics path conflicts with api",
			data: `
[upstreams]
auth_url = "https://auth.example.com"
payments_url = "https://payments.example.com"
kyc_url = "https://kyc.example.com"
[auth]
signing_secret = "` + testSecret + `"
[metrics]
enabled = true
path = "/api/metrics"
`,
			wantErr: "conflicts with reserved route",
		},
		{
			name: "rate limit enabled without rps",
			data: `
[server.rate_limit]
enabled = true
[upstreams]
auth_url = "https://auth.example.com"
payments_url = "https://payments.example.com"
kyc_url = "https://kyc.example.com"
[auth]
signing_secret = "` + testSecret + `"
`,
			wantErr: "requests_per_second",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.data)
			_, err := Load(cliWithPath(path))
			if err == nil {
				t.Fatal("Load() error = nil, want validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_DevModeAllowsHTTP(t *testing.T) {
	path := writeConfig(t, `
[upstreams]
auth_url = "http://localhost:9001"
payments_url = "http://localhost:9002"
kyc_url = "http://localhost:9003"

[auth]
signing_secret = "`+testSecret+`"
dev_mode = true
`)

	cfg, err := Load(cliWithPath(path))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Auth.DevMode {
		t.Error("Auth.DevMode = false, want true")
	}
}

func TestLoad_CLIOverrides(t *testing.T) {
	path := writeConfig(t, validConfig())

	cli := &CLI{
		Config:        path,
		Host:          "10.0.0.1",
		Port:          7777,
		SigningSecret: "cli_override_secret_that_is_long_enough_123",
		LogLevel:      "warn",
		DevMode:       true,
	}

	cfg, err := Load(cli)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "10.0.0.1" {
		t.Errorf("Server.Host = %q, want CLI override", cfg.Server.Host)
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("Server.Port = %d, want 7777", cfg.Server.Port)
	}
	if cfg.Auth.SigningSecret != cli.SigningSecret {
		t.Errorf("Auth.SigningSecret not overridden")
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
	if !cfg.Auth.DevMode {
		t.Error("Auth.DevMode = false, want CLI override true")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(cliWithPath(filepath.Join(t.TempDir(), "nope.toml")))
	if err == nil {
		t.Fatal("Load() error = nil, want read error")
	}
}

func TestLoad_MalformedTOML(t *testing.T) {
	path := writeConfig(t, "[server\nport = ???")
	_, err := Load(cliWithPath(path))
	if err == nil {
		t.Fatal("Load() error = nil, want parse error")
	}
	if !strings.Contains(err.Error(), "parse") {
		t.Errorf("Load() error = %q, want parse error", err)
	}
}

func TestAddr(t *testing.T) {
	s := &ServerConfig{Host: "0.0.0.0", Port: 8080}
	if got := s.Addr(); got != "0.0.0.0:8080" {
		t.Errorf("Addr() = %q, want %q", got, "0.0.0.0:8080")
	}
}
