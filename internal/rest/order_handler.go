package rest

import (
	"net/http"

	"suitup-be/internal/order"

	"github.com/go-chi/chi/v5"
)

func orderList(orders []*order.Order) []*order.Order {
	if orders == nil {
		return []*order.Order{}
	}
	return orders
}

// POST /orders
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var input order.PlaceOrderInput
	if err := decodeJSON(w, r, &input); err != nil {
		respondError(w, r, err)
		return
	}

	o, err := h.orders.PlaceOrder(r.Context(), input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, o)
}

// GET /orders
func (h *Handler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListMine(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orderList(orders))
}

// GET /orders/{orderId}
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

// GET /admin/orders
func (h *Handler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orderList(orders))
}

// PATCH /admin/orders
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var input order.UpdateStatusInput
	if err := decodeJSON(w, r, &input); err != nil {
		respondError(w, r, err)
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}
