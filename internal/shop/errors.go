package shop

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrEmptyBasket        = errors.New("basket is empty")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("user is not authenticated")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidInput       = errors.New("invalid input")
)
