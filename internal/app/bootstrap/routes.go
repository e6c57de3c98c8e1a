// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	folderapifeature "github.com/dalemusser/snipsave/internal/app/features/folderapi"
	healthfeature "github.com/dalemusser/snipsave/internal/app/features/health"
	snippetapifeature "github.com/dalemusser/snipsave/internal/app/features/snippetapi"
	"github.com/dalemusser/snipsave/internal/app/store/snippet"
	"github.com/dalemusser/snipsave/internal/app/system/auth"
	"github.com/dalemusser/snipsave/internal/app/vault"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connection, and schema setup
// have completed. The API is headless: every /api/* route authenticates via
// signed bearer token, and /health serves orchestrator probes.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	vaultSvc := vault.New(snippet.New(deps.MongoDatabase), logger)

	// A typed nil inside the interface would defeat the middleware's nil
	// check, so only assign when a verifier actually exists.
	var verifier auth.Verifier
	if hv := auth.NewHMACVerifier(appCfg.AuthTokenSecret); hv != nil {
		verifier = hv
	}

	r := chi.NewRouter()

	// Global middleware: request timeout, CORS, security headers.
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.CORSFromConfig(coreCfg))
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	// Snippet API
	snippetHandler := snippetapifeature.NewHandler(vaultSvc, logger)
	r.Mount("/api/snippets", snippetapifeature.Routes(snippetHandler, verifier, logger))

	// Folder API
	folderHandler := folderapifeature.NewHandler(vaultSvc, logger)
	r.Mount("/api/folders", folderapifeature.Routes(folderHandler, verifier, logger))

	// Health check endpoints for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	return r, nil
}
