package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sereska7/Project-Shop/internal/shop"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{shop.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("product 3: %w", shop.ErrNotFound), http.StatusNotFound},
		{shop.ErrEmptyBasket, http.StatusNotFound},
		{shop.ErrConflict, http.StatusConflict},
		{shop.ErrInsufficientStock, http.StatusBadRequest},
		{shop.ErrInvalidCredentials, http.StatusUnauthorized},
		{shop.ErrTokenInvalid, http.StatusUnauthorized},
		{shop.ErrTokenExpired, http.StatusUnauthorized},
		{shop.ErrUnauthenticated, http.StatusUnauthorized},
		{shop.ErrInvalidInput, http.StatusUnprocessableEntity},
		{validate.Struct(struct {
			A string `validate:"required"`
		}{}), http.StatusUnprocessableEntity},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
