package api

import (
	"github.com/JaimeStill/arbiter/internal/config"
	"github.com/JaimeStill/arbiter/internal/infrastructure"
	"github.com/JaimeStill/arbiter/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination     pagination.Config
	Classification config.ClassificationConfig
	Summaries      config.SummariesConfig
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Storage:   infra.Storage,
			Events:    infra.Events,
			Mail:      infra.Mail,
			Model:     infra.Model,
		},
		Pagination:     cfg.API.Pagination,
		Classification: cfg.Classification,
		Summaries:      cfg.Summaries,
	}
}
