package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
server:
  port: 9090
db:
  uri: mongodb://db.internal:27017/clausea_prod
email:
  api_key: re_secret
  from: Alerts <alerts@example.com>
  to: ops@example.com
http:
  timeout_seconds: 45
retry:
  max_attempts: 5
  backoff_initial_ms: 100
  backoff_max_ms: 500
logging:
  development: false
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.DB.URI != "mongodb://db.internal:27017/clausea_prod" {
		t.Fatalf("expected db uri override, got %q", cfg.DB.URI)
	}
	if cfg.Email.APIKey != "re_secret" || cfg.Email.To != "ops@example.com" {
		t.Fatalf("expected email overrides to apply")
	}
	if cfg.HTTP.TimeoutSeconds != 45 {
		t.Fatalf("expected timeout 45, got %d", cfg.HTTP.TimeoutSeconds)
	}
	if cfg.Retry.MaxAttempts != 5 {
		t.Fatalf("expected 5 retry attempts, got %d", cfg.Retry.MaxAttempts)
	}
	if cfg.Logging.Development {
		t.Fatal("expected production logging")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Email.From == "" || cfg.Email.To == "" {
		t.Fatal("expected fallback email addresses")
	}
	if cfg.RequestTimeout() != 60*time.Second {
		t.Fatalf("expected 60s request timeout, got %s", cfg.RequestTimeout())
	}
}

func TestDatabaseName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		uri      string
		explicit string
		want     string
	}{
		{name: "explicit wins", uri: "mongodb://h/ignored", explicit: "admin_db", want: "admin_db"},
		{name: "from uri path", uri: "mongodb://host:27017/clausea_prod", want: "clausea_prod"},
		{name: "query params stripped", uri: "mongodb://host:27017/mydb?retryWrites=true", want: "mydb"},
		{name: "no path segment", uri: "mongodb://host:27017", want: "clausea"},
		{name: "trailing slash", uri: "mongodb://host:27017/", want: "clausea"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := Config{DB: DBConfig{URI: tc.uri, Database: tc.explicit}}
			if got := cfg.DatabaseName(); got != tc.want {
				t.Fatalf("DatabaseName() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Server: ServerConfig{Port: 0},
		DB:     DBConfig{URI: "mongodb://h"},
		HTTP:   HTTPConfig{TimeoutSeconds: 30},
		Retry:  RetryConfig{MaxAttempts: 3},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero port")
	}

	cfg.Server.Port = 8080
	cfg.DB.URI = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty db uri")
	}
}
