package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sereska7/Project-Shop/internal/shop"
)

type UserRepo struct{ DB *pgxpool.Pool }

// Create inserts the user and its basket in one transaction.
func (r *UserRepo) Create(ctx context.Context, email, passwordHash string) (shop.User, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return shop.User{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var u shop.User
	err = tx.QueryRow(ctx, `
		INSERT INTO users(email, hash_password) VALUES ($1, $2)
		RETURNING id, email, hash_password, created_at`, email, passwordHash,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return shop.User{}, translate(err, "user "+email)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO baskets(user_id) VALUES ($1)`, u.ID); err != nil {
		return shop.User{}, translate(err, "basket")
	}
	if err := tx.Commit(ctx); err != nil {
		return shop.User{}, err
	}
	return u, nil
}

func (r *UserRepo) ByID(ctx context.Context, id int64) (shop.User, error) {
	return r.one(ctx, fmt.Sprintf("user %d", id), `WHERE id=$1`, id)
}

func (r *UserRepo) ByEmail(ctx context.Context, email string) (shop.User, error) {
	return r.one(ctx, "user "+email, `WHERE lower(email)=lower($1)`, email)
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) (shop.User, error) {
	var u shop.User
	err := r.DB.QueryRow(ctx, `
		UPDATE users SET hash_password=$2 WHERE id=$1
		RETURNING id, email, hash_password, created_at`, id, passwordHash,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return shop.User{}, translate(err, fmt.Sprintf("user %d", id))
	}
	return u, nil
}

func (r *UserRepo) one(ctx context.Context, what, where string, arg any) (shop.User, error) {
	var u shop.User
	err := r.DB.QueryRow(ctx, `SELECT id, email, hash_password, created_at FROM users `+where, arg).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return shop.User{}, translate(err, what)
	}
	return u, nil
}
