package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Sereska7/Project-Shop/internal/auth"
	"github.com/Sereska7/Project-Shop/internal/checkout"
	"github.com/Sereska7/Project-Shop/internal/shop"
)

const checkoutTimeout = 10 * time.Second

// OrdersHandler serves /buy.
type OrdersHandler struct {
	Checkout    *checkout.Service
	RequireUser func(http.Handler) http.Handler
	Log         *zap.Logger
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Route("/buy", func(r chi.Router) {
		r.Use(h.RequireUser)
		r.Post("/items", h.buy)
		r.Get("/orders", h.listOrders)
		r.Get("/orders/{id}", h.getOrder)
	})
}

func (h *OrdersHandler) buy(w http.ResponseWriter, r *http.Request) {
	method, err := shop.ParsePaymentMethod(r.URL.Query().Get("payment_method"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), checkoutTimeout)
	defer cancel()

	u, _ := auth.UserFrom(r.Context())
	o, err := h.Checkout.Checkout(ctx, u, method)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	u, _ := auth.UserFrom(r.Context())
	list, err := h.Checkout.History(ctx, u.ID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	u, _ := auth.UserFrom(r.Context())
	o, err := h.Checkout.Order(ctx, u.ID, id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
