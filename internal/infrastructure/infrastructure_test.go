package infrastructure_test

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JaimeStill/arbiter/internal/config"
	"github.com/JaimeStill/arbiter/internal/infrastructure"
	"github.com/JaimeStill/arbiter/pkg/database"
	"github.com/JaimeStill/arbiter/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

func validConfig() *config.Config {
	return &config.Config{
		Database: database.Config{
			Host:            "localhost",
			Port:            5432,
			Name:            "arbiter",
			User:            "arbiter",
			Password:        "arbiter",
			SSLMode:         "disable",
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: "30m",
			ConnTimeout:     "5s",
		},
		Storage: storage.Config{
			ContainerName:    "case-documents",
			ConnectionString: azuriteConnString,
		},
		Models: config.ModelsConfig{
			Provider:   config.ProviderMock,
			Dimensions: 768,
		},
		Version: "0.1.0",
	}
}

func TestNew(t *testing.T) {
	infra, err := infrastructure.New(validConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { infra.Database.Connection().Close() })

	if infra.Lifecycle == nil {
		t.Error("Lifecycle is nil")
	}
	if infra.Logger == nil {
		t.Error("Logger is nil")
	}
	if infra.Database == nil {
		t.Error("Database is nil")
	}
	if infra.Storage == nil {
		t.Error("Storage is nil")
	}
	if infra.Events == nil {
		t.Error("Events is nil")
	}
	if infra.Mail == nil {
		t.Error("Mail is nil")
	}
	if infra.Model == nil {
		t.Error("Model is nil")
	}
}

func TestNewInvalidStorageConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.ConnectionString = "not-a-connection-string"

	if _, err := infrastructure.New(cfg); err == nil {
		t.Fatal("expected error for invalid storage connection string")
	}
}

func TestNewUnknownModelProvider(t *testing.T) {
	cfg := validConfig()
	cfg.Models.Provider = "unknown"

	if _, err := infrastructure.New(cfg); err == nil {
		t.Fatal("expected error for unknown model provider")
	}
}

func TestNewLogger(t *testing.T) {
	t.Run("json format honours level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := infrastructure.NewLogger(&config.LoggingConfig{Level: "warn", Format: "json"}, &buf)

		logger.Info("hidden")
		logger.Warn("shown", "case", "ARB-1")

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 1 {
			t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if entry["msg"] != "shown" || entry["case"] != "ARB-1" {
			t.Errorf("entry = %v", entry)
		}
	})

	t.Run("file sink", func(t *testing.T) {
		var buf bytes.Buffer
		path := filepath.Join(t.TempDir(), "arbiter.log")
		logger := infrastructure.NewLogger(&config.LoggingConfig{
			Level:     "info",
			Format:    "text",
			File:      path,
			MaxSizeMB: 1,
		}, &buf)

		logger.Info("written twice")
		if !strings.Contains(buf.String(), "written twice") {
			t.Errorf("stdout sink missing entry: %q", buf.String())
		}
	})
}
