package shop

import (
	"context"

	"github.com/shopspring/decimal"
)

// UserRepository stores users. Create also opens the user's basket.
type UserRepository interface {
	Create(ctx context.Context, email, passwordHash string) (User, error)
	ByID(ctx context.Context, id int64) (User, error)
	ByEmail(ctx context.Context, email string) (User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) (User, error)
}

type ProductRepository interface {
	List(ctx context.Context, limit, offset int) ([]Product, error)
	ByID(ctx context.Context, id int64) (Product, error)
	ByCategory(ctx context.Context, categoryID int64) ([]Product, error)
	Categories(ctx context.Context) ([]Category, error)
}

type BasketRepository interface {
	ByUser(ctx context.Context, userID int64) (Basket, error)
	Items(ctx context.Context, basketID int64) ([]BasketItem, error)
	Item(ctx context.Context, basketID, productID int64) (BasketItem, error)
	AddItem(ctx context.Context, item BasketItem) (BasketItem, error)
	SetQuantity(ctx context.Context, itemID int64, quantity int) (BasketItem, error)
	DeleteItem(ctx context.Context, basketID, productID int64) error
	Lines(ctx context.Context, basketID int64) ([]BasketLine, error)
}

// PlaceOrder is everything needed to turn a basket into an order.
type PlaceOrder struct {
	UserID        int64
	BasketID      int64
	Status        OrderStatus
	PaymentMethod PaymentMethod
	TotalPrice    decimal.Decimal
	Items         []BasketItem
}

type OrderRepository interface {
	// Place writes the order and its items, decrements stock and removes the
	// ordered quantities from the basket as one unit. Basket lines not in
	// p.Items are left alone. It fails with ErrInsufficientStock if any
	// product no longer has enough stock for the summed quantity.
	Place(ctx context.Context, p PlaceOrder) (Order, error)
	ByID(ctx context.Context, id int64) (Order, error)
	ByUser(ctx context.Context, userID int64) ([]Order, error)
}
