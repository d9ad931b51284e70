package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/image-captioner/captioner/internal/domain/model"
	"github.com/image-captioner/captioner/internal/service"
)

// ProductLister returns one classified view of a shop's catalog.
type ProductLister interface {
	ListProducts(
		ctx context.Context,
		shopID string,
		filter service.ProductFilter,
		query string,
	) ([]model.AnnotatedProduct, error)
}

// ProductHandlers provides HTTP handlers for product views.
type ProductHandlers struct {
	Svc    ProductLister
	Logger *slog.Logger
}

// List handles GET /api/shops/{shop}/products?filter=&query=.
func (h *ProductHandlers) List(w http.ResponseWriter, r *http.Request) {
	shop, ok := shopFromPath(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter, err := service.ParseProductFilter(q.Get("filter"))
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_filter", Err: err, Field: "filter"})
		return
	}

	products, err := h.Svc.ListProducts(r.Context(), shop, filter, strings.TrimSpace(q.Get("query")))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"products": products,
		"filter":   filter,
		"count":    len(products),
	})
}
