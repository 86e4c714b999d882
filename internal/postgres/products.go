package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sereska7/Project-Shop/internal/shop"
)

type ProductRepo struct{ DB *pgxpool.Pool }

const productColumns = `id, name, description, price, quantity, category_id`

func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]shop.Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func (r *ProductRepo) ByID(ctx context.Context, id int64) (shop.Product, error) {
	var p shop.Product
	err := r.DB.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Quantity, &p.CategoryID)
	if err != nil {
		return shop.Product{}, translate(err, fmt.Sprintf("product %d", id))
	}
	return p, nil
}

func (r *ProductRepo) ByCategory(ctx context.Context, categoryID int64) ([]shop.Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productColumns+` FROM products WHERE category_id=$1 ORDER BY id`, categoryID)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func (r *ProductRepo) Categories(ctx context.Context) ([]shop.Category, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []shop.Category{}
	for rows.Next() {
		var c shop.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func collectProducts(rows pgx.Rows) ([]shop.Product, error) {
	defer rows.Close()

	out := []shop.Product{}
	for rows.Next() {
		var p shop.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Quantity, &p.CategoryID); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
