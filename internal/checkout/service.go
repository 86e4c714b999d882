// Package checkout turns a user's basket into a completed order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	kafkax "github.com/Sereska7/Project-Shop/internal/kafka"
	"github.com/Sereska7/Project-Shop/internal/metrics"
	"github.com/Sereska7/Project-Shop/internal/shop"
)

// Publisher accepts a message without waiting for delivery.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header) error
}

type Service struct {
	Baskets  shop.BasketRepository
	Products shop.ProductRepository
	Orders   shop.OrderRepository
	Producer Publisher
	Service  string // event producer name
	Log      *zap.Logger
	Metrics  *metrics.ServerMetrics
}

// Checkout buys everything in the buyer's basket.
//
// Validation happens before any write: the basket must not be empty, every
// product must exist and have at least the basket quantity in stock. The
// total uses the prices captured when items were added. Persisting the
// order, its items, the stock decrement and emptying the basket is delegated
// to OrderRepository.Place as one unit. The confirmation event is queued
// afterwards and never fails the checkout.
func (s *Service) Checkout(ctx context.Context, buyer shop.User, method shop.PaymentMethod) (shop.Order, error) {
	o, err := s.checkout(ctx, buyer, method)
	switch {
	case err == nil:
		s.Metrics.Checkout("completed")
	case errors.Is(err, shop.ErrEmptyBasket):
		s.Metrics.Checkout("empty_basket")
	case errors.Is(err, shop.ErrInsufficientStock):
		s.Metrics.Checkout("insufficient_stock")
	default:
		s.Metrics.Checkout("failed")
	}
	return o, err
}

func (s *Service) checkout(ctx context.Context, buyer shop.User, method shop.PaymentMethod) (shop.Order, error) {
	b, err := s.Baskets.ByUser(ctx, buyer.ID)
	if err != nil {
		return shop.Order{}, err
	}
	items, err := s.Baskets.Items(ctx, b.ID)
	if err != nil {
		return shop.Order{}, err
	}
	if len(items) == 0 {
		return shop.Order{}, shop.ErrEmptyBasket
	}

	total := decimal.Zero
	for _, it := range items {
		p, err := s.Products.ByID(ctx, it.ProductID)
		if err != nil {
			return shop.Order{}, err
		}
		if p.Quantity < it.Quantity {
			return shop.Order{}, fmt.Errorf("not enough %s in stock: %w", p.Name, shop.ErrInsufficientStock)
		}
		total = total.Add(it.Subtotal())
	}

	placed, err := s.Orders.Place(ctx, shop.PlaceOrder{
		UserID:        buyer.ID,
		BasketID:      b.ID,
		Status:        shop.StatusCompleted,
		PaymentMethod: method,
		TotalPrice:    total,
		Items:         items,
	})
	if err != nil {
		return shop.Order{}, err
	}

	o, err := s.Orders.ByID(ctx, placed.ID)
	if err != nil {
		return shop.Order{}, err
	}
	s.logger().Info("order placed",
		zap.Int64("order_id", o.ID),
		zap.Int64("user_id", buyer.ID),
		zap.String("total_price", o.TotalPrice.StringFixed(2)),
		zap.Int("items", len(o.Items)),
	)
	s.confirm(ctx, o, buyer.Email)
	return o, nil
}

// History lists the user's orders, oldest first.
func (s *Service) History(ctx context.Context, userID int64) ([]shop.Order, error) {
	return s.Orders.ByUser(ctx, userID)
}

// Order returns one of the user's orders; other users' orders are reported
// as not found.
func (s *Service) Order(ctx context.Context, userID, orderID int64) (shop.Order, error) {
	o, err := s.Orders.ByID(ctx, orderID)
	if err != nil {
		return shop.Order{}, err
	}
	if o.UserID != userID {
		return shop.Order{}, fmt.Errorf("order %d: %w", orderID, shop.ErrNotFound)
	}
	return o, nil
}

// confirm queues the OrderConfirmed event for the notifier.
func (s *Service) confirm(ctx context.Context, o shop.Order, emailTo string) {
	if s.Producer == nil {
		return
	}
	ev := shop.Envelope{
		EventID:       uuid.NewString(),
		EventType:     shop.EventOrderConfirmed,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.Service,
		TraceID:       middleware.GetReqID(ctx),
		CorrelationID: fmt.Sprint(o.ID),
		Payload: kafkax.MustMarshal(shop.OrderConfirmedPayload{
			Order:   shop.Summarize(o),
			EmailTo: emailTo,
		}),
	}
	err := s.Producer.Publish(shop.PartitionKey(o.ID), kafkax.MustMarshal(ev), kafkax.EventHeaders(ev.EventType, ev.EventVersion)...)
	if err != nil {
		s.logger().Error("queue order confirmation", zap.Int64("order_id", o.ID), zap.String("event_id", ev.EventID), zap.Error(err))
	}
}

func (s *Service) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}
