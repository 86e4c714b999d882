package httpx

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Sereska7/Project-Shop/internal/catalog"
)

// ProductHandler serves the public catalog.
type ProductHandler struct {
	Catalog *catalog.Service
	Log     *zap.Logger
}

func (h *ProductHandler) Register(r chi.Router) {
	r.Get("/product/get_all_products", h.list)
	r.Get("/product/get_product/{id}", h.get)
	r.Get("/product/by_category/{category_id}", h.byCategory)
	r.Get("/product/categories", h.categories)
}

func (h *ProductHandler) list(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", catalog.DefaultPageSize)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	ps, err := h.Catalog.ListProducts(ctx, limit, offset)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *ProductHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	p, err := h.Catalog.GetProduct(ctx, id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) byCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "category_id")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	ps, err := h.Catalog.ListByCategory(ctx, id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *ProductHandler) categories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	cs, err := h.Catalog.ListCategories(ctx)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}
