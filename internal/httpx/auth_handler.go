package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Sereska7/Project-Shop/internal/auth"
)

type credentialsReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}

type passwordReq struct {
	Password string `json:"password" validate:"required,max=72"`
}

// AuthHandler serves /auth and /user.
type AuthHandler struct {
	Auth         *auth.Service
	RequireUser  func(http.Handler) http.Handler
	CookieSecure bool
	Log          *zap.Logger
}

func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/auth/register", h.register)
	r.Post("/auth/login", h.login)
	r.Post("/auth/logout", h.logout)
	r.Group(func(r chi.Router) {
		r.Use(h.RequireUser)
		r.Get("/user/me", h.me)
		r.Patch("/user/change_password", h.changePassword)
	})
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := decode(r, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	u, err := h.Auth.Register(ctx, req.Email, req.Password)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := decode(r, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	token, _, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.Auth.Tokens.TTL),
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged in"})
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFrom(r.Context())
	writeJSON(w, http.StatusOK, u)
}

// changePassword takes the new password from ?password= or a JSON body.
func (h *AuthHandler) changePassword(w http.ResponseWriter, r *http.Request) {
	req := passwordReq{Password: r.URL.Query().Get("password")}
	var err error
	if req.Password != "" {
		err = validate.Struct(req)
	} else {
		err = decode(r, &req)
	}
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	u, _ := auth.UserFrom(r.Context())
	updated, err := h.Auth.ChangePassword(ctx, u.ID, req.Password)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
