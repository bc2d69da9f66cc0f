// Package rest is the JSON HTTP surface of the storefront.
package rest

import (
	"net/http"
	"time"

	"suitup-be/internal/apperr"
	"suitup-be/internal/brand"
	"suitup-be/internal/chatbot"
	"suitup-be/internal/media"
	"suitup-be/internal/order"
	"suitup-be/internal/product"
	"suitup-be/internal/tryon"
	"suitup-be/internal/user"
)

// Deps are the services the handlers call into.
type Deps struct {
	Users    user.Service
	Brands   brand.Service
	Products product.Service
	Orders   order.Service
	Uploader media.Uploader
	Chatbot  chatbot.Service
	TryOn    tryon.Service

	// SessionTTL sets the session cookie lifetime.
	SessionTTL   time.Duration
	SecureCookie bool
}

type Handler struct {
	users    user.Service
	brands   brand.Service
	products product.Service
	orders   order.Service
	uploader media.Uploader
	chatbot  chatbot.Service
	tryon    tryon.Service

	sessionTTL   time.Duration
	secureCookie bool
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		users:        d.Users,
		brands:       d.Brands,
		products:     d.Products,
		orders:       d.Orders,
		uploader:     d.Uploader,
		chatbot:      d.Chatbot,
		tryon:        d.TryOn,
		sessionTTL:   d.SessionTTL,
		secureCookie: d.SecureCookie,
	}
}

// adminOnly checks the caller's stored role before running next.
func (h *Handler) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := h.users.RequireAdmin(r.Context()); err != nil {
			respondError(w, r, err)
			return
		}
		next(w, r)
	}
}

// authenticated rejects anonymous callers and callers whose account is gone.
func (h *Handler) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := h.users.Current(r.Context()); err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				err = apperr.Unauthenticated()
			}
			respondError(w, r, err)
			return
		}
		next(w, r)
	}
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
