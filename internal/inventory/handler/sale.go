package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/isabelayared/pharmastock-system/internal/inventory/service"
	"github.com/isabelayared/pharmastock-system/pkg/httputil"
	"github.com/isabelayared/pharmastock-system/pkg/logger"
	"github.com/isabelayared/pharmastock-system/pkg/metrics"
)

// SaleHandler serves sale allocation requests
type SaleHandler struct {
	service *service.InventoryService
	metrics *metrics.Metrics
	logger  *logger.Logger
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(svc *service.InventoryService, m *metrics.Metrics, log *logger.Logger) *SaleHandler {
	return &SaleHandler{service: svc, metrics: m, logger: log}
}

// RegisterRoutes registers sale routes on the router
func (h *SaleHandler) RegisterRoutes(r chi.Router) {
	r.Post("/products/sell", h.Sell)
}

type sellRequest struct {
	Code      string `json:"code" validate:"required,min=3,max=64"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
	BatchID   string `json:"batch_id" validate:"omitempty,uuid"`
	BatchCode string `json:"batch_code" validate:"max=64"`
}

// Sell handles POST /products/sell. The allocation outcome is always in
// the body; the status code reflects it so plain HTTP clients can branch
// without parsing.
func (h *SaleHandler) Sell(w http.ResponseWriter, r *http.Request) {
	var req sellRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	outcome, err := h.service.Sell(r.Context(), service.AllocationRequest{
		ProductCode: req.Code,
		Quantity:    req.Quantity,
		BatchID:     req.BatchID,
		BatchCode:   req.BatchCode,
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}

	h.metrics.ObserveAllocation(string(outcome.Status), outcome.DebitedTotal())

	h.logger.Info().
		Str("request_id", httputil.GetRequestID(r.Context())).
		Str("product_code", req.Code).
		Int("quantity", req.Quantity).
		Str("status", string(outcome.Status)).
		Msg("sale allocation processed")

	httputil.JSON(w, statusCodeFor(outcome.Status), outcome)
}

func statusCodeFor(status service.AllocationStatus) int {
	switch status {
	case service.StatusNotFound:
		return http.StatusNotFound
	case service.StatusError:
		return http.StatusConflict
	default:
		return http.StatusOK
	}
}
