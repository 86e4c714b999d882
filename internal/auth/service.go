// Package auth registers users, checks their passwords and resolves session
// tokens back to users.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Sereska7/Project-Shop/internal/shop"
)

// CookieName is the http-only cookie carrying the session token.
const CookieName = "access_token"

type Service struct {
	Users  shop.UserRepository
	Tokens *Tokens
	Hasher Hasher
}

// Register creates a user and its basket. Taken emails fail with
// shop.ErrConflict.
func (s *Service) Register(ctx context.Context, email, password string) (shop.User, error) {
	email = strings.TrimSpace(email)
	_, err := s.Users.ByEmail(ctx, email)
	if err == nil {
		return shop.User{}, fmt.Errorf("user %s: %w", email, shop.ErrConflict)
	}
	if !errors.Is(err, shop.ErrNotFound) {
		return shop.User{}, err
	}
	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return shop.User{}, err
	}
	return s.Users.Create(ctx, email, hash)
}

// Login returns a session token for valid credentials.
func (s *Service) Login(ctx context.Context, email, password string) (string, shop.User, error) {
	u, err := s.Users.ByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return "", shop.User{}, err
	}
	if err := s.Hasher.Check(u.PasswordHash, password); err != nil {
		return "", shop.User{}, err
	}
	token, err := s.Tokens.Issue(u.ID)
	if err != nil {
		return "", shop.User{}, err
	}
	return token, u, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID int64, password string) (shop.User, error) {
	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return shop.User{}, err
	}
	return s.Users.UpdatePassword(ctx, userID, hash)
}

// Authenticate resolves a session token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (shop.User, error) {
	if token == "" {
		return shop.User{}, shop.ErrUnauthenticated
	}
	id, err := s.Tokens.Parse(token)
	if err != nil {
		return shop.User{}, err
	}
	return s.Users.ByID(ctx, id)
}

type ctxKey struct{}

func WithUser(ctx context.Context, u shop.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

func UserFrom(ctx context.Context) (shop.User, bool) {
	u, ok := ctx.Value(ctxKey{}).(shop.User)
	return u, ok
}
