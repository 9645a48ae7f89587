package api

import (
	"net/http"

	"github.com/JaimeStill/arbiter/internal/awards"
	"github.com/JaimeStill/arbiter/internal/config"
	"github.com/JaimeStill/arbiter/internal/documents"
	"github.com/JaimeStill/arbiter/pkg/openapi"
	"github.com/JaimeStill/arbiter/pkg/routes"
)

func routeGroups(domain *Domain, cfg *config.Config) []routes.Group {
	return []routes.Group{
		domain.Cases.Handler().Routes(),
		domain.Documents.Handler(documents.UploadLimits{
			MaxSize:      cfg.API.MaxUploadSizeBytes(),
			AllowedTypes: cfg.API.AllowedContentTypes,
			MaxBatch:     cfg.API.MaxBatchSize,
		}).Routes(),
		domain.Classifications.Handler().Routes(),
		domain.Summaries.Handler().Routes(),
		domain.Templates.Handler().Routes(),
		domain.Awards.Handler().Routes(),
		domain.Requests.Handler().Routes(),
	}
}

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
) error {
	groups := routeGroups(domain, cfg)
	routes.Register(mux, groups...)

	spec, err := buildSpec(cfg, groups)
	if err != nil {
		return err
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(spec))
	return nil
}

func buildSpec(cfg *config.Config, groups []routes.Group) ([]byte, error) {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)
	spec.Components.AddSchemas(awards.Schemas())

	routes.Describe(spec, groups...)
	return openapi.MarshalJSON(spec)
}
