package postgres

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sereska7/Project-Shop/internal/shop"
)

type OrderRepo struct{ DB *pgxpool.Pool }

const orderColumns = `id, user_id, total_price, status, payment_method, created_at`

// Place runs steps that must not be observed half-done: lock stock rows
// (FOR UPDATE, ascending id) -> insert order and items -> decrement stock ->
// take the ordered lines out of the basket. Lines added after the snapshot
// in p.Items stay in the basket. Any failure rolls the whole unit back.
func (r *OrderRepo) Place(ctx context.Context, p shop.PlaceOrder) (shop.Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return shop.Order{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	need := map[int64]int{}
	ids := make([]int64, 0, len(p.Items))
	for _, it := range p.Items {
		if _, seen := need[it.ProductID]; !seen {
			ids = append(ids, it.ProductID)
		}
		need[it.ProductID] += it.Quantity
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		var name string
		var stock int
		err := tx.QueryRow(ctx, `SELECT name, quantity FROM products WHERE id=$1 FOR UPDATE`, id).Scan(&name, &stock)
		if err != nil {
			return shop.Order{}, translate(err, fmt.Sprintf("product %d", id))
		}
		if stock < need[id] {
			return shop.Order{}, fmt.Errorf("product %s: %w", name, shop.ErrInsufficientStock)
		}
	}

	var (
		o             shop.Order
		status, payBy string
	)
	err = tx.QueryRow(ctx, `
		INSERT INTO orders(user_id, total_price, status, payment_method)
		VALUES ($1, $2, $3, $4)
		RETURNING `+orderColumns,
		p.UserID, p.TotalPrice, string(p.Status), string(p.PaymentMethod),
	).Scan(&o.ID, &o.UserID, &o.TotalPrice, &status, &payBy, &o.CreatedAt)
	if err != nil {
		return shop.Order{}, translate(err, "order")
	}
	o.Status, o.PaymentMethod = shop.OrderStatus(status), shop.PaymentMethod(payBy)

	for _, it := range p.Items {
		oi := shop.OrderItem{BasketID: it.BasketID, ProductID: it.ProductID, OrderID: o.ID, Quantity: it.Quantity, Price: it.Price}
		err := tx.QueryRow(ctx, `
			INSERT INTO order_items(basket_id, product_id, order_id, quantity, price)
			VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			oi.BasketID, oi.ProductID, oi.OrderID, oi.Quantity, oi.Price,
		).Scan(&oi.ID)
		if err != nil {
			return shop.Order{}, translate(err, "order item")
		}
		o.Items = append(o.Items, oi)
	}

	for _, id := range ids {
		ct, err := tx.Exec(ctx, `UPDATE products SET quantity = quantity - $2 WHERE id=$1`, id, need[id])
		if err != nil {
			return shop.Order{}, err
		}
		if ct.RowsAffected() != 1 {
			return shop.Order{}, fmt.Errorf("product %d: %w", id, shop.ErrNotFound)
		}
	}

	for _, it := range p.Items {
		if _, err := tx.Exec(ctx, `
			DELETE FROM basket_items
			WHERE id=$1 AND basket_id=$2 AND quantity <= $3`, it.ID, p.BasketID, it.Quantity); err != nil {
			return shop.Order{}, err
		}
		if _, err := tx.Exec(ctx, `
			UPDATE basket_items SET quantity = quantity - $3
			WHERE id=$1 AND basket_id=$2 AND quantity > $3`, it.ID, p.BasketID, it.Quantity); err != nil {
			return shop.Order{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return shop.Order{}, err
	}
	return o, nil
}

func (r *OrderRepo) ByID(ctx context.Context, id int64) (shop.Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if err != nil {
		return shop.Order{}, translate(err, fmt.Sprintf("order %d", id))
	}
	if o.Items, err = r.items(ctx, id); err != nil {
		return shop.Order{}, err
	}
	return o, nil
}

func (r *OrderRepo) ByUser(ctx context.Context, userID int64) ([]shop.Order, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id=$1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []shop.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Items, err = r.items(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *OrderRepo) items(ctx context.Context, orderID int64) ([]shop.OrderItem, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, basket_id, product_id, order_id, quantity, price
		FROM order_items WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []shop.OrderItem
	for rows.Next() {
		var oi shop.OrderItem
		if err := rows.Scan(&oi.ID, &oi.BasketID, &oi.ProductID, &oi.OrderID, &oi.Quantity, &oi.Price); err != nil {
			return nil, err
		}
		out = append(out, oi)
	}
	return out, rows.Err()
}

func scanOrder(row pgx.Row) (shop.Order, error) {
	var (
		o             shop.Order
		status, payBy string
	)
	if err := row.Scan(&o.ID, &o.UserID, &o.TotalPrice, &status, &payBy, &o.CreatedAt); err != nil {
		return shop.Order{}, err
	}
	o.Status, o.PaymentMethod = shop.OrderStatus(status), shop.PaymentMethod(payBy)
	return o, nil
}
