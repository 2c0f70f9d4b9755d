package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/ocrdesk/ocrdesk/internal/config"
	"github.com/ocrdesk/ocrdesk/internal/gateway"
	"github.com/ocrdesk/ocrdesk/internal/history"
	"github.com/ocrdesk/ocrdesk/internal/middleware"
	"github.com/ocrdesk/ocrdesk/internal/processing"
	"github.com/ocrdesk/ocrdesk/internal/routes"
	"github.com/ocrdesk/ocrdesk/internal/storage"
)

// buildHandler registers all HTTP routes and wraps them in the service
// middleware chain.
func buildHandler(
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
	store storage.System,
	gw *gateway.Client,
	records history.System,
	processor processing.System,
) (http.Handler, error) {
	r := routes.New(logger)

	maxUpload := cfg.Storage.MaxUploadSizeBytes()

	historyHandler := history.NewHandler(records, store, logger, cfg.Pagination, maxUpload)
	r.RegisterGroup(historyHandler.Routes())
	r.RegisterRoute(historyHandler.UploadRoute())
	r.RegisterRoute(historyHandler.DownloadRoute())

	processingHandler := processing.NewHandler(processor, records, gw, cfg.Gateway.APIKey, maxUpload, logger)
	for _, route := range processingHandler.Routes() {
		r.RegisterRoute(route)
	}

	r.RegisterRoute(routes.Route{
		Method:  "GET",
		Pattern: "/healthz",
		Handler: handleHealthCheck,
	})

	r.RegisterRoute(routes.Route{
		Method:  "GET",
		Pattern: "/readyz",
		Handler: func(w http.ResponseWriter, req *http.Request) {
			handleReadinessCheck(w, req, db)
		},
	})

	chain := middleware.New()
	chain.Use(middleware.RequestID())
	chain.Use(middleware.Logger(logger))
	chain.Use(middleware.CORS(&cfg.CORS))
	chain.Use(middleware.TrimSlash())

	return chain.Wrap(r.Build()), nil
}

// handleHealthCheck responds with OK status for health monitoring.
func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func handleReadinessCheck(w http.ResponseWriter, r *http.Request, db *sql.DB) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("NOT READY"))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("READY"))
}
