package httpx

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Sereska7/Project-Shop/internal/auth"
	"github.com/Sereska7/Project-Shop/internal/basket"
)

type BasketHandler struct {
	Basket      *basket.Service
	RequireUser func(http.Handler) http.Handler
	Log         *zap.Logger
}

func (h *BasketHandler) Register(r chi.Router) {
	r.Route("/basket", func(r chi.Router) {
		r.Use(h.RequireUser)
		r.Post("/add_in_basket/{product_id}", h.add)
		r.Get("/get_basket_items", h.list)
		r.Patch("/decrease_quantity/{product_id}", h.decrease)
		r.Delete("/delete_from_basket/{product_id}", h.remove)
	})
}

func (h *BasketHandler) add(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "product_id")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	qty, err := queryInt(r, "quantity", 1)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	u, _ := auth.UserFrom(r.Context())
	it, err := h.Basket.Add(ctx, u.ID, productID, qty)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *BasketHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	u, _ := auth.UserFrom(r.Context())
	v, err := h.Basket.List(ctx, u.ID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// decrease answers null when the line was removed.
func (h *BasketHandler) decrease(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "product_id")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	qty, err := queryInt(r, "quantity", 1)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	u, _ := auth.UserFrom(r.Context())
	it, err := h.Basket.Decrease(ctx, u.ID, productID, qty)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *BasketHandler) remove(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "product_id")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	u, _ := auth.UserFrom(r.Context())
	if err := h.Basket.Remove(ctx, u.ID, productID); err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"process": true})
}
