package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kafkax "github.com/Sereska7/Project-Shop/internal/kafka"
	"github.com/Sereska7/Project-Shop/internal/shop"
	"github.com/Sereska7/Project-Shop/internal/shop/shoptest"
)

type recorder struct {
	mu   sync.Mutex
	msgs []kafkago.Message
	err  error
}

func (r *recorder) Publish(key, value []byte, headers ...kafkago.Header) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.msgs = append(r.msgs, kafkago.Message{Key: key, Value: value, Headers: headers})
	return nil
}

type fixture struct {
	svc   *Service
	store *shoptest.Store
	pub   *recorder
	buyer shop.User
	a, b  shop.Product
}

func setup(t *testing.T) fixture {
	t.Helper()
	store := shoptest.New()
	u, err := store.Users().Create(context.Background(), "buyer@example.com", "x")
	require.NoError(t, err)
	c := store.AddCategory("misc")
	a := store.AddProduct(shop.Product{Name: "A", Price: decimal.RequireFromString("10.00"), Quantity: 5, CategoryID: c.ID})
	b := store.AddProduct(shop.Product{Name: "B", Price: decimal.RequireFromString("5.00"), Quantity: 3, CategoryID: c.ID})
	pub := &recorder{}
	return fixture{
		svc: &Service{
			Baskets:  store.Baskets(),
			Products: store.Products(),
			Orders:   store.Orders(),
			Producer: pub,
			Service:  "shop-api",
		},
		store: store,
		pub:   pub,
		buyer: u,
		a:     a,
		b:     b,
	}
}

func (f fixture) put(t *testing.T, p shop.Product, qty int) {
	t.Helper()
	bk, err := f.store.Baskets().ByUser(context.Background(), f.buyer.ID)
	require.NoError(t, err)
	_, err = f.store.Baskets().AddItem(context.Background(), shop.BasketItem{
		BasketID: bk.ID, ProductID: p.ID, Quantity: qty, Price: p.Price,
	})
	require.NoError(t, err)
}

func stock(t *testing.T, s *shoptest.Store, id int64) int {
	t.Helper()
	p, ok := s.Product(id)
	require.True(t, ok)
	return p.Quantity
}

func TestCheckoutExample(t *testing.T) {
	f := setup(t)
	f.put(t, f.a, 2)
	f.put(t, f.b, 1)

	o, err := f.svc.Checkout(context.Background(), f.buyer, shop.PaymentCard)
	require.NoError(t, err)

	assert.True(t, o.TotalPrice.Equal(decimal.RequireFromString("25.00")), o.TotalPrice.String())
	assert.Equal(t, shop.StatusCompleted, o.Status)
	assert.Equal(t, shop.PaymentCard, o.PaymentMethod)
	assert.Equal(t, f.buyer.ID, o.UserID)
	require.Len(t, o.Items, 2)
	for _, it := range o.Items {
		assert.Equal(t, o.ID, it.OrderID)
	}

	assert.Equal(t, 3, stock(t, f.store, f.a.ID))
	assert.Equal(t, 2, stock(t, f.store, f.b.ID))
	assert.Empty(t, f.store.BasketItems(f.buyer.ID))
	assert.Equal(t, 1, f.store.OrderCount())
	assert.Equal(t, 2, f.store.OrderItemCount())
}

func TestCheckoutUsesBasketPriceSnapshot(t *testing.T) {
	f := setup(t)
	f.put(t, f.a, 1)
	f.store.SetPrice(f.a.ID, decimal.RequireFromString("99.99"))

	o, err := f.svc.Checkout(context.Background(), f.buyer, shop.PaymentCash)
	require.NoError(t, err)
	assert.True(t, o.TotalPrice.Equal(decimal.RequireFromString("10.00")), o.TotalPrice.String())
	require.Len(t, o.Items, 1)
	assert.True(t, o.Items[0].Price.Equal(decimal.RequireFromString("10.00")))
}

func TestCheckoutEmptyBasket(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Checkout(context.Background(), f.buyer, shop.PaymentCard)
	require.ErrorIs(t, err, shop.ErrEmptyBasket)
	assert.Equal(t, 0, f.store.OrderCount())
	assert.Empty(t, f.pub.msgs)
}

func TestCheckoutInsufficientStockWritesNothing(t *testing.T) {
	f := setup(t)
	f.put(t, f.a, 2)
	f.put(t, f.b, 4)

	_, err := f.svc.Checkout(context.Background(), f.buyer, shop.PaymentPayPal)
	require.ErrorIs(t, err, shop.ErrInsufficientStock)

	assert.Equal(t, 0, f.store.OrderCount())
	assert.Equal(t, 0, f.store.OrderItemCount())
	assert.Equal(t, 5, stock(t, f.store, f.a.ID))
	assert.Equal(t, 3, stock(t, f.store, f.b.ID))
	assert.Len(t, f.store.BasketItems(f.buyer.ID), 2)
	assert.Empty(t, f.pub.msgs)
}

func TestCheckoutAllowsQuantityEqualToStock(t *testing.T) {
	f := setup(t)
	f.put(t, f.b, 3)

	_, err := f.svc.Checkout(context.Background(), f.buyer, shop.PaymentCard)
	require.NoError(t, err)
	assert.Equal(t, 0, stock(t, f.store, f.b.ID))
}

func TestCheckoutMissingProduct(t *testing.T) {
	f := setup(t)
	f.put(t, f.a, 1)
	f.store.DeleteProduct(f.a.ID)

	_, err := f.svc.Checkout(context.Background(), f.buyer, shop.PaymentCard)
	require.ErrorIs(t, err, shop.ErrNotFound)
	assert.Equal(t, 0, f.store.OrderCount())
}

func TestCheckoutPlaceFailure(t *testing.T) {
	f := setup(t)
	f.put(t, f.a, 1)
	f.store.PlaceErr = errors.New("connection reset")

	_, err := f.svc.Checkout(context.Background(), f.buyer, shop.PaymentCard)
	require.Error(t, err)
	assert.Len(t, f.store.BasketItems(f.buyer.ID), 1)
	assert.Empty(t, f.pub.msgs)
}

func TestCheckoutPublishesConfirmation(t *testing.T) {
	f := setup(t)
	f.put(t, f.a, 2)

	o, err := f.svc.Checkout(context.Background(), f.buyer, shop.PaymentPayPal)
	require.NoError(t, err)
	require.Len(t, f.pub.msgs, 1)

	m := f.pub.msgs[0]
	assert.Equal(t, shop.PartitionKey(o.ID), m.Key)
	assert.Equal(t, shop.EventOrderConfirmed, string(m.Headers[0].Value))

	var env shop.Envelope
	require.NoError(t, json.Unmarshal(m.Value, &env))
	assert.Equal(t, shop.EventOrderConfirmed, env.EventType)
	assert.Equal(t, "shop-api", env.Producer)
	assert.NotEmpty(t, env.EventID)

	p, err := kafkax.UnwrapPayload[shop.OrderConfirmedPayload](env.Payload)
	require.NoError(t, err)
	assert.Equal(t, "buyer@example.com", p.EmailTo)
	assert.Equal(t, o.ID, p.Order.OrderID)
	assert.Equal(t, shop.StatusCompleted, p.Order.Status)
	assert.Equal(t, shop.PaymentPayPal, p.Order.PaymentMethod)
	assert.True(t, p.Order.TotalPrice.Equal(decimal.RequireFromString("20")))
}

func TestCheckoutSucceedsWhenQueueRejects(t *testing.T) {
	f := setup(t)
	f.put(t, f.a, 1)
	f.pub.err = kafkax.ErrInboxFull

	_, err := f.svc.Checkout(context.Background(), f.buyer, shop.PaymentCard)
	require.NoError(t, err)
	assert.Equal(t, 1, f.store.OrderCount())
}

func TestHistoryAndOrder(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.put(t, f.a, 1)
	o, err := f.svc.Checkout(ctx, f.buyer, shop.PaymentCard)
	require.NoError(t, err)

	hist, err := f.svc.History(ctx, f.buyer.ID)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, o.ID, hist[0].ID)

	got, err := f.svc.Order(ctx, f.buyer.ID, o.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)

	_, err = f.svc.Order(ctx, f.buyer.ID+1, o.ID)
	require.ErrorIs(t, err, shop.ErrNotFound)
}

// lateBasket lets a test change the basket right after checkout read it.
type lateBasket struct {
	shop.BasketRepository
	after func()
}

func (b *lateBasket) Items(ctx context.Context, basketID int64) ([]shop.BasketItem, error) {
	items, err := b.BasketRepository.Items(ctx, basketID)
	if b.after != nil {
		b.after()
		b.after = nil
	}
	return items, err
}

func TestCheckoutStockDropsBeforePlace(t *testing.T) {
	f := setup(t)
	f.put(t, f.a, 2)
	f.put(t, f.b, 1)
	f.store.BeforePlace = func() { f.store.SetStock(f.a.ID, 1) }

	_, err := f.svc.Checkout(context.Background(), f.buyer, shop.PaymentCard)
	require.ErrorIs(t, err, shop.ErrInsufficientStock)

	assert.Equal(t, 0, f.store.OrderCount())
	assert.Equal(t, 0, f.store.OrderItemCount())
	assert.Equal(t, 1, stock(t, f.store, f.a.ID))
	assert.Equal(t, 3, stock(t, f.store, f.b.ID))
	assert.Len(t, f.store.BasketItems(f.buyer.ID), 2)
	assert.Empty(t, f.pub.msgs)
}

func TestCheckoutKeepsLineAddedDuringCheckout(t *testing.T) {
	f := setup(t)
	f.put(t, f.a, 2)
	f.svc.Baskets = &lateBasket{
		BasketRepository: f.store.Baskets(),
		after:            func() { f.put(t, f.b, 1) },
	}

	o, err := f.svc.Checkout(context.Background(), f.buyer, shop.PaymentCard)
	require.NoError(t, err)
	require.Len(t, o.Items, 1)
	assert.Equal(t, f.a.ID, o.Items[0].ProductID)

	left := f.store.BasketItems(f.buyer.ID)
	require.Len(t, left, 1)
	assert.Equal(t, f.b.ID, left[0].ProductID)
	assert.Equal(t, 3, stock(t, f.store, f.a.ID))
	assert.Equal(t, 3, stock(t, f.store, f.b.ID))
}

func TestCheckoutKeepsQuantityAddedDuringCheckout(t *testing.T) {
	f := setup(t)
	f.put(t, f.a, 2)
	f.svc.Baskets = &lateBasket{
		BasketRepository: f.store.Baskets(),
		after: func() {
			it := f.store.BasketItems(f.buyer.ID)[0]
			_, err := f.store.Baskets().SetQuantity(context.Background(), it.ID, 3)
			require.NoError(t, err)
		},
	}

	o, err := f.svc.Checkout(context.Background(), f.buyer, shop.PaymentCard)
	require.NoError(t, err)
	require.Len(t, o.Items, 1)
	assert.Equal(t, 2, o.Items[0].Quantity)

	left := f.store.BasketItems(f.buyer.ID)
	require.Len(t, left, 1)
	assert.Equal(t, 1, left[0].Quantity)
	assert.Equal(t, 3, stock(t, f.store, f.a.ID))
}
