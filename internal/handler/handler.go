// Package handler exposes the catalog data-access layer over a small JSON
// REST API consumed by the admin panel.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/vailshop/catalog-admin/internal/domain/catalog"
	"github.com/vailshop/catalog-admin/internal/domain/product"
)

const (
	defaultPageSize = 12
	maxPageSize     = 100
)

// ProductService is the product-side contract the handler depends on.
type ProductService interface {
	List(ctx context.Context, page, pageSize int) (catalog.Page[product.Product], error)
	Get(ctx context.Context, id string) (*product.Product, error)
	Create(ctx context.Context, in product.CreateParams) (*product.Product, error)
	Update(ctx context.Context, id string, in product.UpdateParams) (*product.Product, error)
	Delete(ctx context.Context, id string) error
}

// Handler routes admin API requests to the catalog repositories and the
// product service.
type Handler struct {
	categories catalog.Repository[catalog.Category]
	carriers   catalog.Repository[catalog.Carrier]
	products   ProductService
}

// New constructs a Handler with the required dependencies.
func New(
	categories catalog.Repository[catalog.Category],
	carriers catalog.Repository[catalog.Carrier],
	products ProductService,
) *Handler {
	return &Handler{
		categories: categories,
		carriers:   carriers,
		products:   products,
	}
}

// Routes builds the API router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Route("/categories", resourceRoutes(h.categories, "category"))
		r.Route("/carriers", resourceRoutes(h.carriers, "carrier"))
		r.Route("/products", h.productRoutes)
	})
	return r
}

// pagination parses ?page= and ?page_size=, applying the admin panel's
// defaults and caps.
func pagination(r *http.Request) (page, pageSize int) {
	page = 1
	pageSize = defaultPageSize
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v >= 1 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil && v >= 1 {
		pageSize = min(v, maxPageSize)
	}
	return page, pageSize
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type errorBody struct {
	Error string `json:"error"`
}

// respondError maps the failure taxonomy to HTTP statuses: missing records
// are 404, store-rejected writes 422, bad input 400, and transport or upload
// failures 502.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, catalog.ErrConstraint):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, product.ErrInvalidPrice):
		status = http.StatusBadRequest
	case errors.Is(err, catalog.ErrUpload):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		zctx.From(r.Context()).Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}

	respondJSON(w, status, errorBody{Error: err.Error()})
}

func respondBadRequest(w http.ResponseWriter, msg string) {
	respondJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}
