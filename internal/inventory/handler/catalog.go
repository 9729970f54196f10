package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/isabelayared/pharmastock-system/internal/inventory/catalog"
	"github.com/isabelayared/pharmastock-system/pkg/errors"
	"github.com/isabelayared/pharmastock-system/pkg/httputil"
	"github.com/isabelayared/pharmastock-system/pkg/logger"
)

// CatalogHandler serves reference catalog lookups
type CatalogHandler struct {
	resolver catalog.Resolver
	logger   *logger.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(resolver catalog.Resolver, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{resolver: resolver, logger: log}
}

// RegisterRoutes registers catalog routes on the router
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Route("/catalog", func(r chi.Router) {
		r.Get("/search", h.Search)
		r.Get("/{code}", h.Lookup)
	})
}

// Lookup handles GET /catalog/{code}
func (h *CatalogHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	entry, err := h.resolver.Resolve(r.Context(), code)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	if entry == nil {
		httputil.Error(w, errors.NotFound("catalog entry"))
		return
	}

	httputil.JSON(w, http.StatusOK, entry)
}

// Search handles GET /catalog/search?q=
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		httputil.Error(w, errors.BadRequest("query parameter q is required"))
		return
	}

	entries, err := h.resolver.Search(r.Context(), query)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, entries)
}
