package basket

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sereska7/Project-Shop/internal/shop"
	"github.com/Sereska7/Project-Shop/internal/shop/shoptest"
)

type fixture struct {
	svc   *Service
	store *shoptest.Store
	user  shop.User
	tea   shop.Product
}

func setup(t *testing.T, stock int) fixture {
	t.Helper()
	store := shoptest.New()
	u, err := store.Users().Create(context.Background(), "a@b.c", "x")
	require.NoError(t, err)
	c := store.AddCategory("drinks")
	tea := store.AddProduct(shop.Product{Name: "tea", Price: decimal.RequireFromString("10.00"), Quantity: stock, CategoryID: c.ID})
	return fixture{
		svc:   &Service{Baskets: store.Baskets(), Products: store.Products()},
		store: store,
		user:  u,
		tea:   tea,
	}
}

func TestAddCreatesItemWithPriceSnapshot(t *testing.T) {
	f := setup(t, 5)
	ctx := context.Background()

	it, err := f.svc.Add(ctx, f.user.ID, f.tea.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, it.Quantity)
	assert.True(t, it.Price.Equal(f.tea.Price))

	items := f.store.BasketItems(f.user.ID)
	require.Len(t, items, 1)
	assert.Equal(t, f.tea.ID, items[0].ProductID)
}

func TestAddTwiceSumsQuantities(t *testing.T) {
	f := setup(t, 5)
	ctx := context.Background()

	_, err := f.svc.Add(ctx, f.user.ID, f.tea.ID, 2)
	require.NoError(t, err)
	it, err := f.svc.Add(ctx, f.user.ID, f.tea.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, it.Quantity)
	assert.Len(t, f.store.BasketItems(f.user.ID), 1)

	_, err = f.svc.Add(ctx, f.user.ID, f.tea.ID, 1)
	require.ErrorIs(t, err, shop.ErrInsufficientStock)
}

func TestAddRejectsQuantityEqualToStock(t *testing.T) {
	f := setup(t, 3)

	_, err := f.svc.Add(context.Background(), f.user.ID, f.tea.ID, 3)
	require.ErrorIs(t, err, shop.ErrInsufficientStock)
	assert.Empty(t, f.store.BasketItems(f.user.ID))
}

func TestAddUnknownProduct(t *testing.T) {
	f := setup(t, 3)

	_, err := f.svc.Add(context.Background(), f.user.ID, 999, 1)
	require.ErrorIs(t, err, shop.ErrNotFound)
}

func TestAddRejectsNonPositiveQuantity(t *testing.T) {
	f := setup(t, 3)

	_, err := f.svc.Add(context.Background(), f.user.ID, f.tea.ID, 0)
	require.ErrorIs(t, err, shop.ErrInvalidInput)
}

func TestDecrease(t *testing.T) {
	f := setup(t, 10)
	ctx := context.Background()
	_, err := f.svc.Add(ctx, f.user.ID, f.tea.ID, 4)
	require.NoError(t, err)

	it, err := f.svc.Decrease(ctx, f.user.ID, f.tea.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, it)
	assert.Equal(t, 3, it.Quantity)

	it, err = f.svc.Decrease(ctx, f.user.ID, f.tea.ID, 5)
	require.NoError(t, err)
	assert.Nil(t, it)
	assert.Empty(t, f.store.BasketItems(f.user.ID))

	_, err = f.svc.Decrease(ctx, f.user.ID, f.tea.ID, 1)
	require.ErrorIs(t, err, shop.ErrNotFound)
}

func TestRemove(t *testing.T) {
	f := setup(t, 10)
	ctx := context.Background()
	_, err := f.svc.Add(ctx, f.user.ID, f.tea.ID, 2)
	require.NoError(t, err)

	require.NoError(t, f.svc.Remove(ctx, f.user.ID, f.tea.ID))
	assert.Empty(t, f.store.BasketItems(f.user.ID))
	require.ErrorIs(t, f.svc.Remove(ctx, f.user.ID, f.tea.ID), shop.ErrNotFound)
}

func TestListComputesTotal(t *testing.T) {
	f := setup(t, 10)
	ctx := context.Background()
	cake := f.store.AddProduct(shop.Product{Name: "cake", Price: decimal.RequireFromString("2.25"), Quantity: 9, CategoryID: f.tea.CategoryID})

	_, err := f.svc.Add(ctx, f.user.ID, f.tea.ID, 2)
	require.NoError(t, err)
	_, err = f.svc.Add(ctx, f.user.ID, cake.ID, 4)
	require.NoError(t, err)

	v, err := f.svc.List(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, v.Items, 2)
	assert.Equal(t, "tea", v.Items[0].ProductName)
	assert.Equal(t, "cake", v.Items[1].ProductName)
	assert.True(t, v.TotalPrice.Equal(decimal.RequireFromString("29.00")), v.TotalPrice.String())
}
