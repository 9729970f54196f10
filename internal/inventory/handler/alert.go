package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/isabelayared/pharmastock-system/internal/inventory/service"
	"github.com/isabelayared/pharmastock-system/pkg/errors"
	"github.com/isabelayared/pharmastock-system/pkg/httputil"
	"github.com/isabelayared/pharmastock-system/pkg/logger"
)

// AlertHandler serves expiry alerts
type AlertHandler struct {
	service     *service.InventoryService
	horizonDays int
	logger      *logger.Logger
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(svc *service.InventoryService, horizonDays int, log *logger.Logger) *AlertHandler {
	return &AlertHandler{service: svc, horizonDays: horizonDays, logger: log}
}

// RegisterRoutes registers alert routes on the router
func (h *AlertHandler) RegisterRoutes(r chi.Router) {
	r.Get("/alerts", h.List)
}

// List handles GET /alerts. An optional ?days= query overrides the
// configured horizon.
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	horizon := h.horizonDays

	if raw := r.URL.Query().Get("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days <= 0 {
			httputil.Error(w, errors.BadRequest("days must be a positive integer"))
			return
		}
		horizon = days
	}

	alerts, err := h.service.Alerts(r.Context(), horizon)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, alerts)
}
