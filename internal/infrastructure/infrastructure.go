// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, storage, events, mail and
// the language model) that domain systems require.
package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/JaimeStill/arbiter/internal/config"
	"github.com/JaimeStill/arbiter/internal/models"
	"github.com/JaimeStill/arbiter/migrations"
	"github.com/JaimeStill/arbiter/pkg/database"
	"github.com/JaimeStill/arbiter/pkg/events"
	"github.com/JaimeStill/arbiter/pkg/lifecycle"
	"github.com/JaimeStill/arbiter/pkg/mail"
	"github.com/JaimeStill/arbiter/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Events    events.System
	Mail      mail.Sender
	Model     models.Model
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := NewLogger(&cfg.Logging, os.Stderr)

	db, err := database.New(&cfg.Database, migrations.FS, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	model, err := models.New(&cfg.Models, logger)
	if err != nil {
		return nil, fmt.Errorf("model init failed: %w", err)
	}

	var forwarder events.Forwarder
	if cfg.Events.NATSURL != "" {
		forwarder, err = events.NewNATSForwarder(context.Background(), &cfg.Events)
		if err != nil {
			logger.Warn("nats forwarding disabled", "error", err)
			forwarder = nil
		}
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   store,
		Events:    events.NewBus(forwarder, logger),
		Mail:      mail.New(&cfg.Mail, logger),
		Model:     model,
	}, nil
}

// NewLogger builds the root logger. Output goes to w and, when cfg.File is
// set, to a size-rotated log file.
func NewLogger(cfg *config.LoggingConfig, w io.Writer) *slog.Logger {
	if cfg.File != "" {
		w = io.MultiWriter(w, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		})
	}

	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Start registers all infrastructure systems with the lifecycle coordinator.
// Domain subscriptions must be registered on Events before Start runs.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	if err := i.Events.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("events start failed: %w", err)
	}

	i.Lifecycle.OnShutdown(func() {
		<-i.Lifecycle.Context().Done()
		if err := i.Model.Cleanup(); err != nil {
			i.Logger.Error("model cleanup failed", "error", err)
		}
	})
	return nil
}
