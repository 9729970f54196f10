package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/isabelayared/pharmastock-system/internal/inventory/service"
	"github.com/isabelayared/pharmastock-system/pkg/errors"
	"github.com/isabelayared/pharmastock-system/pkg/httputil"
	"github.com/isabelayared/pharmastock-system/pkg/logger"
)

// ProductHandler serves stock registration and product reads
type ProductHandler struct {
	service *service.InventoryService
	logger  *logger.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(svc *service.InventoryService, log *logger.Logger) *ProductHandler {
	return &ProductHandler{service: svc, logger: log}
}

// RegisterRoutes registers product routes on the router
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Register)
		r.Get("/{id}", h.Get)
		r.Get("/code/{code}", h.GetByCode)
		r.Delete("/{id}", h.Delete)
	})
}

type registerStockRequest struct {
	Code           string `json:"code" validate:"required,min=3,max=64"`
	Name           string `json:"name" validate:"max=255"`
	Category       string `json:"category" validate:"max=100"`
	Quantity       int    `json:"quantity" validate:"required,gt=0"`
	ExpirationDate string `json:"expiration_date" validate:"required,datetime=2006-01-02"`
	BatchCode      string `json:"batch_code" validate:"max=64"`
}

// Register handles POST /products
func (h *ProductHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerStockRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	expiration, err := time.Parse("2006-01-02", req.ExpirationDate)
	if err != nil {
		httputil.Error(w, errors.BadRequest("expiration_date must be a date in 2006-01-02 format"))
		return
	}

	batch, err := h.service.RegisterStock(r.Context(), service.RegisterRequest{
		Code:           req.Code,
		Name:           req.Name,
		Category:       req.Category,
		Quantity:       req.Quantity,
		ExpirationDate: expiration,
		BatchCode:      req.BatchCode,
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, batch)
}

// List handles GET /products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, products)
}

// Get handles GET /products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, product)
}

// GetByCode handles GET /products/code/{code}
func (h *ProductHandler) GetByCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	product, err := h.service.GetProductByCode(r.Context(), code)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, product)
}

// Delete handles DELETE /products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
