package api

import (
	"net/http"

	"github.com/JaimeStill/intake/internal/config"
	"github.com/JaimeStill/intake/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
) []string {
	return routes.Register(
		mux,
		domain.Pipeline.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
		domain.Documents.Handler().Routes(),
		domain.Parties.Handler().Routes(),
		domain.Interactions.Handler().Routes(),
	)
}
