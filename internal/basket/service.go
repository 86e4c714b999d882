// Package basket mutates a user's basket while checking stock availability.
package basket

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Sereska7/Project-Shop/internal/shop"
)

type Service struct {
	Baskets  shop.BasketRepository
	Products shop.ProductRepository
}

// Add puts quantity units of a product into the basket of userID.
//
// A new line is rejected unless stock is strictly greater than the requested
// quantity. Increasing an existing line only requires stock to cover the new
// total. The price is copied from the product when the line is created.
func (s *Service) Add(ctx context.Context, userID, productID int64, quantity int) (shop.BasketItem, error) {
	if quantity < 1 {
		return shop.BasketItem{}, fmt.Errorf("quantity %d: %w", quantity, shop.ErrInvalidInput)
	}
	b, err := s.Baskets.ByUser(ctx, userID)
	if err != nil {
		return shop.BasketItem{}, err
	}
	p, err := s.Products.ByID(ctx, productID)
	if err != nil {
		return shop.BasketItem{}, err
	}
	if p.Quantity <= quantity {
		return shop.BasketItem{}, insufficient(p)
	}

	existing, err := s.Baskets.Item(ctx, b.ID, p.ID)
	switch {
	case errors.Is(err, shop.ErrNotFound):
		return s.Baskets.AddItem(ctx, shop.BasketItem{
			BasketID:  b.ID,
			ProductID: p.ID,
			Quantity:  quantity,
			Price:     p.Price,
		})
	case err != nil:
		return shop.BasketItem{}, err
	}

	if p.Quantity < existing.Quantity+quantity {
		return shop.BasketItem{}, insufficient(p)
	}
	return s.Baskets.SetQuantity(ctx, existing.ID, existing.Quantity+quantity)
}

// Decrease lowers the quantity of a line. When the result drops to zero or
// below the line is deleted and Decrease returns (nil, nil).
func (s *Service) Decrease(ctx context.Context, userID, productID int64, quantity int) (*shop.BasketItem, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantity %d: %w", quantity, shop.ErrInvalidInput)
	}
	b, err := s.Baskets.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	it, err := s.Baskets.Item(ctx, b.ID, productID)
	if err != nil {
		return nil, err
	}
	left := it.Quantity - quantity
	if left <= 0 {
		return nil, s.Baskets.DeleteItem(ctx, b.ID, productID)
	}
	updated, err := s.Baskets.SetQuantity(ctx, it.ID, left)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Service) Remove(ctx context.Context, userID, productID int64) error {
	b, err := s.Baskets.ByUser(ctx, userID)
	if err != nil {
		return err
	}
	if _, err := s.Baskets.Item(ctx, b.ID, productID); err != nil {
		return err
	}
	return s.Baskets.DeleteItem(ctx, b.ID, productID)
}

// List returns the basket contents with product names and the total,
// computed from the stored price snapshots.
func (s *Service) List(ctx context.Context, userID int64) (shop.BasketView, error) {
	b, err := s.Baskets.ByUser(ctx, userID)
	if err != nil {
		return shop.BasketView{}, err
	}
	lines, err := s.Baskets.Lines(ctx, b.ID)
	if err != nil {
		return shop.BasketView{}, err
	}
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return shop.BasketView{Items: lines, TotalPrice: total}, nil
}

func insufficient(p shop.Product) error {
	return fmt.Errorf("not enough %s in stock: %w", p.Name, shop.ErrInsufficientStock)
}
