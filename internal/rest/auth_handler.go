package rest

import (
	"net/http"

	"suitup-be/internal/apperr"
	"suitup-be/internal/auth"
	"suitup-be/internal/user"
)

type registeredUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type registerResponse struct {
	Message string         `json:"message"`
	User    registeredUser `json:"user"`
}

type loginResponse struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

// POST /auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var input user.RegisterInput
	if err := decodeValid(w, r, &input); err != nil {
		respondError(w, r, err)
		return
	}

	u, err := h.users.Register(r.Context(), input)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, registerResponse{
		Message: "User registered successfully",
		User:    registeredUser{ID: u.ID, Email: u.Email},
	})
}

// POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var input user.LoginInput
	if err := decodeValid(w, r, &input); err != nil {
		respondError(w, r, err)
		return
	}

	token, u, err := h.users.Login(r.Context(), input)
	if err != nil {
		respondError(w, r, err)
		return
	}

	http.SetCookie(w, h.sessionCookie(token, int(h.sessionTTL.Seconds())))
	respondJSON(w, http.StatusOK, loginResponse{Token: token, User: u})
}

// POST /auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.sessionCookie("", -1))
	respondJSON(w, http.StatusOK, messageResponse{Message: "Logged out"})
}

// GET /auth/session
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Current(r.Context())
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			err = apperr.Unauthenticated()
		}
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (h *Handler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     auth.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}
