package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/isabelayared/pharmastock-system/internal/inventory/service"
	"github.com/isabelayared/pharmastock-system/pkg/httputil"
	"github.com/isabelayared/pharmastock-system/pkg/logger"
)

// DashboardHandler serves the expiry bucket stats
type DashboardHandler struct {
	service *service.InventoryService
	logger  *logger.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(svc *service.InventoryService, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{service: svc, logger: log}
}

// RegisterRoutes registers dashboard routes on the router
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard/stats", h.Stats)
}

// Stats handles GET /dashboard/stats
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.DashboardStats(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, stats)
}
