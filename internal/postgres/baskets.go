package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sereska7/Project-Shop/internal/shop"
)

type BasketRepo struct{ DB *pgxpool.Pool }

const basketItemColumns = `id, basket_id, product_id, quantity, price`

func (r *BasketRepo) ByUser(ctx context.Context, userID int64) (shop.Basket, error) {
	var b shop.Basket
	err := r.DB.QueryRow(ctx, `SELECT id, user_id FROM baskets WHERE user_id=$1`, userID).Scan(&b.ID, &b.UserID)
	if err != nil {
		return shop.Basket{}, translate(err, fmt.Sprintf("basket of user %d", userID))
	}
	return b, nil
}

func (r *BasketRepo) Items(ctx context.Context, basketID int64) ([]shop.BasketItem, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+basketItemColumns+` FROM basket_items WHERE basket_id=$1 ORDER BY id`, basketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []shop.BasketItem{}
	for rows.Next() {
		var it shop.BasketItem
		if err := rows.Scan(&it.ID, &it.BasketID, &it.ProductID, &it.Quantity, &it.Price); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *BasketRepo) Item(ctx context.Context, basketID, productID int64) (shop.BasketItem, error) {
	var it shop.BasketItem
	err := r.DB.QueryRow(ctx, `SELECT `+basketItemColumns+` FROM basket_items WHERE basket_id=$1 AND product_id=$2`, basketID, productID).
		Scan(&it.ID, &it.BasketID, &it.ProductID, &it.Quantity, &it.Price)
	if err != nil {
		return shop.BasketItem{}, translate(err, fmt.Sprintf("basket item for product %d", productID))
	}
	return it, nil
}

func (r *BasketRepo) AddItem(ctx context.Context, item shop.BasketItem) (shop.BasketItem, error) {
	var it shop.BasketItem
	err := r.DB.QueryRow(ctx, `
		INSERT INTO basket_items(basket_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4)
		RETURNING `+basketItemColumns,
		item.BasketID, item.ProductID, item.Quantity, item.Price,
	).Scan(&it.ID, &it.BasketID, &it.ProductID, &it.Quantity, &it.Price)
	if err != nil {
		return shop.BasketItem{}, translate(err, fmt.Sprintf("basket item for product %d", item.ProductID))
	}
	return it, nil
}

func (r *BasketRepo) SetQuantity(ctx context.Context, itemID int64, quantity int) (shop.BasketItem, error) {
	var it shop.BasketItem
	err := r.DB.QueryRow(ctx, `UPDATE basket_items SET quantity=$2 WHERE id=$1 RETURNING `+basketItemColumns, itemID, quantity).
		Scan(&it.ID, &it.BasketID, &it.ProductID, &it.Quantity, &it.Price)
	if err != nil {
		return shop.BasketItem{}, translate(err, fmt.Sprintf("basket item %d", itemID))
	}
	return it, nil
}

func (r *BasketRepo) DeleteItem(ctx context.Context, basketID, productID int64) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM basket_items WHERE basket_id=$1 AND product_id=$2`, basketID, productID)
	return err
}

func (r *BasketRepo) Lines(ctx context.Context, basketID int64) ([]shop.BasketLine, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT bi.product_id, p.name, bi.quantity, bi.price
		FROM basket_items bi JOIN products p ON p.id = bi.product_id
		WHERE bi.basket_id=$1 ORDER BY bi.id`, basketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []shop.BasketLine{}
	for rows.Next() {
		var l shop.BasketLine
		if err := rows.Scan(&l.ProductID, &l.ProductName, &l.Quantity, &l.Price); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
