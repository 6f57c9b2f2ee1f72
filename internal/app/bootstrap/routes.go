// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	healthfeature "github.com/dalemusser/admithub/internal/app/features/health"
	institutionsfeature "github.com/dalemusser/admithub/internal/app/features/institutions"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. AdmitHub mounts the health check and the
// institutions API, which carries the curriculum configuration endpoints.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Institutions and their curriculum configuration
	instHandler := institutionsfeature.NewHandler(deps.MongoDatabase, appCfg.DefaultInstitutionType, logger)
	r.Mount("/institutions", institutionsfeature.Routes(instHandler))

	return r, nil
}
