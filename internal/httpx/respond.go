package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Sereska7/Project-Shop/internal/shop"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(err error) int {
	var verr validator.ValidationErrors
	switch {
	case errors.Is(err, shop.ErrNotFound), errors.Is(err, shop.ErrEmptyBasket):
		return http.StatusNotFound
	case errors.Is(err, shop.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, shop.ErrInsufficientStock):
		return http.StatusBadRequest
	case errors.Is(err, shop.ErrInvalidCredentials),
		errors.Is(err, shop.ErrTokenInvalid),
		errors.Is(err, shop.ErrTokenExpired),
		errors.Is(err, shop.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, shop.ErrInvalidInput), errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// writeError maps err to a status. Internal errors are logged and hidden.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		if log != nil {
			log.Error("request failed", zap.Error(err))
		}
		msg = "internal error"
	}
	writeJSON(w, code, map[string]string{"error": msg})
}

// decode reads a JSON body into v and validates its struct tags.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid json", shop.ErrInvalidInput)
	}
	return validate.Struct(v)
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad %s", shop.ErrInvalidInput, name)
	}
	return id, nil
}

// queryInt returns def when the parameter is absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: bad %s", shop.ErrInvalidInput, name)
	}
	return n, nil
}
