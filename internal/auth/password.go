package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/Sereska7/Project-Shop/internal/shop"
)

type Hasher struct {
	Cost int // zero means bcrypt.DefaultCost
}

func (h Hasher) Hash(raw string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(raw), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Check returns shop.ErrInvalidCredentials when raw does not match hash.
func (Hasher) Check(hash, raw string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return shop.ErrInvalidCredentials
	}
	return err
}
