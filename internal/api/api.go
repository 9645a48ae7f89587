// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/arbiter/internal/config"
	"github.com/JaimeStill/arbiter/internal/infrastructure"
	"github.com/JaimeStill/arbiter/pkg/middleware"
	"github.com/JaimeStill/arbiter/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)

	domain, err := NewDomain(runtime)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	if err := registerRoutes(mux, domain, cfg); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.RequestID())
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	return m, nil
}
