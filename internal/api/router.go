package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ndewijer/testnet-portfolio-panel/internal/api/handlers"
	custommiddleware "github.com/ndewijer/testnet-portfolio-panel/internal/api/middleware"
	"github.com/ndewijer/testnet-portfolio-panel/internal/config"
	"github.com/ndewijer/testnet-portfolio-panel/internal/service"
)

// Services bundles the services the HTTP layer depends on.
type Services struct {
	System      *service.SystemService
	History     *service.HistoryService
	Snapshot    *service.SnapshotService
	Valuation   *service.ValuationService
	Broadcaster *service.Broadcaster
}

// NewRouter creates and configures the HTTP router
func NewRouter(services Services, cfg *config.Config, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(log))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(services.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/portfolio", func(r chi.Router) {
			historyHandler := handlers.NewHistoryHandler(services.History)
			snapshotHandler := handlers.NewSnapshotHandler(services.Snapshot, services.Valuation, log)
			streamHandler := handlers.NewStreamHandler(
				services.Broadcaster,
				services.Valuation,
				custommiddleware.OriginPatterns(cfg.CORS.AllowedOrigins),
				log,
			)

			r.Get("/history", historyHandler.History)
			r.Get("/metadata", historyHandler.Metadata)
			r.Get("/latest", snapshotHandler.Latest)
			r.Post("/snapshot", snapshotHandler.CreateSnapshot)
			r.Get("/stream", streamHandler.Stream)
		})
	})

	return r
}
