package main

import (
	"net/http"

	"go.uber.org/zap"

	httphandlers "pricetrack/internal/interfaces/http"
	"pricetrack/internal/shared/config"
	"pricetrack/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config, log *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", httphandlers.HandleHealth)

	// Public pages and GitHub login
	mux.Handle("GET /", middleware.OptionalSession(deps.Sessions)(http.HandlerFunc(deps.Pages.HandleHome)))
	mux.HandleFunc("GET /auth/github", deps.AuthHandler.HandleLogin)
	mux.HandleFunc("GET /auth/github/callback", deps.AuthHandler.HandleCallback)
	mux.HandleFunc("GET /logout", deps.AuthHandler.HandleLogout)

	// Protected pages
	pageAuth := middleware.SessionAuth(deps.Sessions, "You are not logged in")

	mux.Handle("GET /dashboard", pageAuth(http.HandlerFunc(deps.Pages.HandleDashboard)))
	mux.Handle("GET /submit-url", pageAuth(http.HandlerFunc(deps.Pages.HandleSubmitURL)))
	mux.Handle("GET /submit-description", pageAuth(http.HandlerFunc(deps.Pages.HandleSubmitDescription)))
	mux.Handle("GET /submit-item", pageAuth(http.HandlerFunc(deps.Pages.HandleSubmitItem)))

	// Protected API routes
	apiAuth := middleware.SessionAuth(deps.Sessions, "Unauthorized")

	mux.Handle("POST /add-item", apiAuth(http.HandlerFunc(deps.ItemHandler.HandleAddItem)))
	mux.Handle("POST /add-url", apiAuth(http.HandlerFunc(deps.ItemHandler.HandleAddURL)))
	mux.Handle("POST /add-description", apiAuth(http.HandlerFunc(deps.ItemHandler.HandleAddDescription)))
	mux.Handle("GET /api/items", apiAuth(http.HandlerFunc(deps.ItemHandler.HandleListItems)))
	mux.Handle("GET /api/me", apiAuth(http.HandlerFunc(deps.UserHandler.HandleMe)))

	// Apply global middleware
	handler := middleware.Logging(log)(middleware.CORS(cfg.Server.AllowedHosts)(mux))
	handler = middleware.Telemetry(middleware.Tracing(handler))

	// Apply security middleware when TLS is enabled
	if cfg.TLS.Enabled {
		handler = middleware.HSTS(middleware.SecureCookies(handler))
		log.Info("TLS security middleware enabled (HSTS + SecureCookies)")
	}

	return handler
}
