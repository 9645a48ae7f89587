package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/arbiter/internal/config"
)

const baseConfig = `
shutdown_timeout = "30s"
version = "0.1.0"

[server]
host = "0.0.0.0"
port = 8080
read_timeout = "1m"
write_timeout = "5m"

[database]
host = "localhost"
port = 5432
name = "arbiter"
user = "arbiter"
password = "arbiter"
max_open_conns = 25
max_idle_conns = 5

[storage]
container_name = "documents"
connection_string = "UseDevelopmentStorage=true"

[api]
base_path = "/api"

[api.pagination]
default_page_size = 25
max_page_size = 50

[logging]
level = "debug"
format = "json"

[models]
provider = "ollama"
chat_model = "llama3.1:8b"

[classification]
primary_threshold = 0.8

[summaries]
executive_summary_length = 60
section_detection = false
`

const overlayConfig = `
[server]
port = 9090

[database]
host = "prodhost"
`

const minimalConfig = `
[database]
name = "arbiter"
user = "arbiter"

[storage]
connection_string = "conn"
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func load(t *testing.T, content string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, content)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	return cfg
}

func TestLoad(t *testing.T) {
	cfg := load(t, baseConfig)

	if cfg.Server.Port != 8080 {
		t.Errorf("server port: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("db max_open_conns: got %d, want 25", cfg.Database.MaxOpenConns)
	}
	if cfg.Storage.ContainerName != "documents" {
		t.Errorf("storage container: got %s, want documents", cfg.Storage.ContainerName)
	}
	if cfg.API.Pagination.DefaultPageSize != 25 {
		t.Errorf("pagination default_page_size: got %d, want 25", cfg.API.Pagination.DefaultPageSize)
	}
	if cfg.Logging.SlogLevel() != slog.LevelDebug {
		t.Errorf("logging level: got %v, want debug", cfg.Logging.SlogLevel())
	}
	if cfg.Models.Provider != config.ProviderOllama {
		t.Errorf("models provider: got %s, want ollama", cfg.Models.Provider)
	}
	if cfg.Classification.PrimaryThreshold != 0.8 {
		t.Errorf("primary threshold: got %v, want 0.8", cfg.Classification.PrimaryThreshold)
	}
	if cfg.Classification.SecondaryThreshold != 0.5 {
		t.Errorf("secondary threshold: got %v, want 0.5", cfg.Classification.SecondaryThreshold)
	}
	if cfg.Summaries.ExecutiveSummaryLength != 60 {
		t.Errorf("executive_summary_length: got %d, want 60", cfg.Summaries.ExecutiveSummaryLength)
	}
	if *cfg.Summaries.SectionDetection {
		t.Error("section_detection: got true, want false")
	}
	if !*cfg.Summaries.ExtractLegalTerms {
		t.Error("extract_legal_terms: got false, want default true")
	}
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)
	chdir(t, dir)

	t.Setenv(config.EnvArbiterEnv, "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want 9090 (from overlay)", cfg.Server.Port)
	}
	if cfg.Database.Host != "prodhost" {
		t.Errorf("db host: got %s, want prodhost (from overlay)", cfg.Database.Host)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("db port: got %d, want 5432 (from base)", cfg.Database.Port)
	}
}

func TestLoadEnvVarOverrides(t *testing.T) {
	t.Setenv("ARBITER_VERSION", "2.0.0")
	t.Setenv("ARBITER_SERVER_PORT", "3000")
	t.Setenv("ARBITER_DB_AUTO_MIGRATE", "true")
	t.Setenv("ARBITER_CLASSIFICATION_REVIEW_THRESHOLD", "0.3")
	t.Setenv("ARBITER_MAIL_SENDER", "registry@example.org")

	cfg := load(t, baseConfig)

	if cfg.Version != "2.0.0" {
		t.Errorf("version: got %s, want 2.0.0", cfg.Version)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("server port: got %d, want 3000", cfg.Server.Port)
	}
	if !cfg.Database.AutoMigrate {
		t.Error("auto_migrate: got false, want true")
	}
	if cfg.Classification.ReviewThreshold != 0.3 {
		t.Errorf("review threshold: got %v, want 0.3", cfg.Classification.ReviewThreshold)
	}
	if cfg.Mail.Sender != "registry@example.org" {
		t.Errorf("mail sender: got %s", cfg.Mail.Sender)
	}
}

func TestLoadNoConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	t.Setenv("ARBITER_DB_NAME", "testdb")
	t.Setenv("ARBITER_DB_USER", "testuser")
	t.Setenv("ARBITER_STORAGE_CONNECTION_STRING", "conn")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load without config.toml failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port default: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "testdb" {
		t.Errorf("db name from env: got %s, want testdb", cfg.Database.Name)
	}
	if cfg.Models.Provider != config.ProviderMock {
		t.Errorf("models provider default: got %s, want mock", cfg.Models.Provider)
	}
	if cfg.Events.SubjectPrefix != "arbiter" {
		t.Errorf("events subject prefix default: got %s", cfg.Events.SubjectPrefix)
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, `[server`)
	chdir(t, dir)

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestEnv(t *testing.T) {
	cfg := load(t, minimalConfig)
	if cfg.Env() != "local" {
		t.Errorf("env: got %s, want local", cfg.Env())
	}

	t.Setenv(config.EnvArbiterEnv, "production")
	if cfg.Env() != "production" {
		t.Errorf("env: got %s, want production", cfg.Env())
	}
}

func TestDurations(t *testing.T) {
	cfg := load(t, minimalConfig)

	if d := cfg.ShutdownTimeoutDuration(); d != 30*time.Second {
		t.Errorf("shutdown timeout: got %v, want 30s", d)
	}
	if d := cfg.Models.TimeoutDuration(); d != 2*time.Minute {
		t.Errorf("models timeout: got %v, want 2m", d)
	}
	if d := cfg.Summaries.CacheTTLDuration(); d != 10*time.Minute {
		t.Errorf("summaries cache ttl: got %v, want 10m", d)
	}
	if addr := cfg.Server.Addr(); addr != "0.0.0.0:8080" {
		t.Errorf("addr: got %s, want 0.0.0.0:8080", addr)
	}
}

func TestAPIDefaults(t *testing.T) {
	cfg := load(t, minimalConfig)

	if got := cfg.API.MaxUploadSizeBytes(); got != 10*1024*1024 {
		t.Errorf("MaxUploadSizeBytes() = %d, want 10MB", got)
	}
	if cfg.API.MaxBatchSize != 10 {
		t.Errorf("max_batch_size: got %d, want 10", cfg.API.MaxBatchSize)
	}
	if len(cfg.API.AllowedContentTypes) == 0 {
		t.Error("allowed content types: got none")
	}
	if cfg.API.Pagination.DefaultPageSize != 20 {
		t.Errorf("pagination default_page_size: got %d, want 20", cfg.API.Pagination.DefaultPageSize)
	}
}

func TestMaxUploadSizeBytes(t *testing.T) {
	tests := []struct {
		name string
		size string
		want int64
	}{
		{"valid 10MB", "10MB", 10 * 1024 * 1024},
		{"valid 1GB", "1GB", 1024 * 1024 * 1024},
		{"invalid falls back to 10MB", "bad", 10 * 1024 * 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.APIConfig{MaxUploadSize: tt.size}
			if got := cfg.MaxUploadSizeBytes(); got != tt.want {
				t.Errorf("MaxUploadSizeBytes() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		wantErr string
	}{
		{
			name:    "invalid port",
			config:  minimalConfig + "\n[server]\nport = 99999\n",
			wantErr: "invalid port",
		},
		{
			name:    "missing database name",
			config:  "[database]\nuser = \"arbiter\"\n[storage]\nconnection_string = \"conn\"\n",
			wantErr: "name required",
		},
		{
			name:    "missing storage",
			config:  "[database]\nname = \"a\"\nuser = \"a\"\n",
			wantErr: "connection_string or service_url required",
		},
		{
			name:    "unordered thresholds",
			config:  minimalConfig + "\n[classification]\nreview_threshold = 0.6\n",
			wantErr: "thresholds must satisfy",
		},
		{
			name:    "unknown model provider",
			config:  minimalConfig + "\n[models]\nprovider = \"gpt\"\n",
			wantErr: "unknown provider",
		},
		{
			name:    "invalid log format",
			config:  minimalConfig + "\n[logging]\nformat = \"xml\"\n",
			wantErr: "invalid format",
		},
		{
			name:    "mail enabled without host",
			config:  minimalConfig + "\n[mail]\nenabled = true\n",
			wantErr: "host required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, config.BaseConfigFile, tt.config)
			chdir(t, dir)

			_, err := config.Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}
