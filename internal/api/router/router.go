// Package router assembles the public HTTP surface.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/andesalud/citas-platform/internal/booking"
	"github.com/andesalud/citas-platform/internal/catalog"
	httpmiddleware "github.com/andesalud/citas-platform/internal/http/middleware"
	"github.com/andesalud/citas-platform/internal/slots"
	"github.com/andesalud/citas-platform/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	BookingHandler     *booking.Handler
	CatalogHandler     *catalog.Handler
	ImportHandler      *slots.ImportHandler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	if cfg.BookingHandler != nil {
		cfg.BookingHandler.Register(r)
	}
	if cfg.CatalogHandler != nil {
		r.Mount("/catalog", cfg.CatalogHandler.Routes())
	}
	if cfg.ImportHandler != nil {
		r.Post("/schedules/import", cfg.ImportHandler.Handle)
	}

	return r
}
