package catalog

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/andesalud/citas-platform/pkg/logging"
)

// Handler serves the read-only catalogue endpoints.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a catalog handler.
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if repo == nil {
		panic("catalog: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// Routes mounts the catalogue endpoints on a chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/regions", h.listRegions)
	r.Get("/communes", h.listCommunes)
	r.Get("/areas", h.listAreas)
	r.Get("/medics", h.listMedics)
	return r
}

func (h *Handler) listRegions(w http.ResponseWriter, r *http.Request) {
	h.respondList(w, r, func(ctx context.Context) (any, error) {
		return h.repo.ListRegions(ctx)
	})
}

func (h *Handler) listCommunes(w http.ResponseWriter, r *http.Request) {
	h.respondList(w, r, func(ctx context.Context) (any, error) {
		return h.repo.ListCommunes(ctx)
	})
}

func (h *Handler) listAreas(w http.ResponseWriter, r *http.Request) {
	h.respondList(w, r, func(ctx context.Context) (any, error) {
		return h.repo.ListAreas(ctx)
	})
}

func (h *Handler) listMedics(w http.ResponseWriter, r *http.Request) {
	h.respondList(w, r, func(ctx context.Context) (any, error) {
		return h.repo.ListMedics(ctx)
	})
}

func (h *Handler) respondList(w http.ResponseWriter, r *http.Request, load func(context.Context) (any, error)) {
	value, err := load(r.Context())
	if err != nil {
		h.logger.Error("catalog lookup failed", "path", r.URL.Path, "error", err)
		http.Error(w, "catalog unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(value)
}
