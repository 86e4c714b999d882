// Package shoptest provides an in-memory implementation of the shop
// repositories for tests.
package shoptest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Sereska7/Project-Shop/internal/shop"
)

type Store struct {
	mu         sync.Mutex
	seq        map[string]int64
	users      map[int64]shop.User
	baskets    map[int64]shop.Basket
	items      map[int64]shop.BasketItem
	products   map[int64]shop.Product
	categories map[int64]shop.Category
	orders     map[int64]shop.Order
	orderItems map[int64][]shop.OrderItem

	// ProductReads counts calls made through the product repository.
	ProductReads int
	// PlaceErr, when set, is returned by Orders().Place before any write.
	PlaceErr error
	// BeforePlace, when set, runs at the start of Orders().Place without the
	// store lock held, so it may mutate the store.
	BeforePlace func()
}

func New() *Store {
	return &Store{
		seq:        map[string]int64{},
		users:      map[int64]shop.User{},
		baskets:    map[int64]shop.Basket{},
		items:      map[int64]shop.BasketItem{},
		products:   map[int64]shop.Product{},
		categories: map[int64]shop.Category{},
		orders:     map[int64]shop.Order{},
		orderItems: map[int64][]shop.OrderItem{},
	}
}

func (s *Store) next(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

func (s *Store) Users() *Users       { return &Users{s} }
func (s *Store) Products() *Products { return &Products{s} }
func (s *Store) Baskets() *Baskets   { return &Baskets{s} }
func (s *Store) Orders() *Orders     { return &Orders{s} }

func (s *Store) AddCategory(name string) shop.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := shop.Category{ID: s.next("categories"), Name: name}
	s.categories[c.ID] = c
	return c
}

// AddProduct stores p under a fresh id and returns it.
func (s *Store) AddProduct(p shop.Product) shop.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.next("products")
	s.products[p.ID] = p
	return p
}

func (s *Store) Product(id int64) (shop.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	return p, ok
}

func (s *Store) SetStock(id int64, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.products[id]
	p.Quantity = quantity
	s.products[id] = p
}

func (s *Store) SetPrice(id int64, price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.products[id]
	p.Price = price
	s.products[id] = p
}

func (s *Store) DeleteProduct(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.products, id)
}

// BasketItems returns the items in the basket of userID ordered by id.
func (s *Store) BasketItems(userID int64) []shop.BasketItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.baskets {
		if b.UserID == userID {
			return s.itemsOf(b.ID)
		}
	}
	return nil
}

func (s *Store) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *Store) OrderItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, its := range s.orderItems {
		n += len(its)
	}
	return n
}

func (s *Store) itemsOf(basketID int64) []shop.BasketItem {
	var out []shop.BasketItem
	for _, it := range s.items {
		if it.BasketID == basketID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type Users struct{ s *Store }

func (r *Users) Create(_ context.Context, email, passwordHash string) (shop.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return shop.User{}, fmt.Errorf("user %s: %w", email, shop.ErrConflict)
		}
	}
	u := shop.User{ID: r.s.next("users"), Email: email, PasswordHash: passwordHash, CreatedAt: time.Now().UTC()}
	r.s.users[u.ID] = u
	b := shop.Basket{ID: r.s.next("baskets"), UserID: u.ID}
	r.s.baskets[b.ID] = b
	return u, nil
}

func (r *Users) ByID(_ context.Context, id int64) (shop.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return shop.User{}, fmt.Errorf("user %d: %w", id, shop.ErrNotFound)
	}
	return u, nil
}

func (r *Users) ByEmail(_ context.Context, email string) (shop.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return shop.User{}, fmt.Errorf("user %s: %w", email, shop.ErrNotFound)
}

func (r *Users) UpdatePassword(_ context.Context, id int64, passwordHash string) (shop.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return shop.User{}, fmt.Errorf("user %d: %w", id, shop.ErrNotFound)
	}
	u.PasswordHash = passwordHash
	r.s.users[id] = u
	return u, nil
}

type Products struct{ s *Store }

func (r *Products) List(_ context.Context, limit, offset int) ([]shop.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.ProductReads++
	all := r.sorted(func(shop.Product) bool { return true })
	if offset >= len(all) {
		return []shop.Product{}, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *Products) ByID(_ context.Context, id int64) (shop.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.ProductReads++
	p, ok := r.s.products[id]
	if !ok {
		return shop.Product{}, fmt.Errorf("product %d: %w", id, shop.ErrNotFound)
	}
	return p, nil
}

func (r *Products) ByCategory(_ context.Context, categoryID int64) ([]shop.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.ProductReads++
	return r.sorted(func(p shop.Product) bool { return p.CategoryID == categoryID }), nil
}

func (r *Products) Categories(_ context.Context) ([]shop.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]shop.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Products) sorted(keep func(shop.Product) bool) []shop.Product {
	out := []shop.Product{}
	for _, p := range r.s.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type Baskets struct{ s *Store }

func (r *Baskets) ByUser(_ context.Context, userID int64) (shop.Basket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.baskets {
		if b.UserID == userID {
			return b, nil
		}
	}
	return shop.Basket{}, fmt.Errorf("basket of user %d: %w", userID, shop.ErrNotFound)
}

func (r *Baskets) Items(_ context.Context, basketID int64) ([]shop.BasketItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.itemsOf(basketID), nil
}

func (r *Baskets) Item(_ context.Context, basketID, productID int64) (shop.BasketItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, it := range r.s.items {
		if it.BasketID == basketID && it.ProductID == productID {
			return it, nil
		}
	}
	return shop.BasketItem{}, fmt.Errorf("basket item for product %d: %w", productID, shop.ErrNotFound)
}

func (r *Baskets) AddItem(_ context.Context, item shop.BasketItem) (shop.BasketItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, it := range r.s.items {
		if it.BasketID == item.BasketID && it.ProductID == item.ProductID {
			return shop.BasketItem{}, fmt.Errorf("basket item for product %d: %w", item.ProductID, shop.ErrConflict)
		}
	}
	item.ID = r.s.next("basket_items")
	r.s.items[item.ID] = item
	return item, nil
}

func (r *Baskets) SetQuantity(_ context.Context, itemID int64, quantity int) (shop.BasketItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.items[itemID]
	if !ok {
		return shop.BasketItem{}, fmt.Errorf("basket item %d: %w", itemID, shop.ErrNotFound)
	}
	it.Quantity = quantity
	r.s.items[itemID] = it
	return it, nil
}

func (r *Baskets) DeleteItem(_ context.Context, basketID, productID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, it := range r.s.items {
		if it.BasketID == basketID && it.ProductID == productID {
			delete(r.s.items, id)
		}
	}
	return nil
}

func (r *Baskets) Lines(_ context.Context, basketID int64) ([]shop.BasketLine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	items := r.s.itemsOf(basketID)
	out := make([]shop.BasketLine, 0, len(items))
	for _, it := range items {
		out = append(out, shop.BasketLine{
			ProductID:   it.ProductID,
			ProductName: r.s.products[it.ProductID].Name,
			Quantity:    it.Quantity,
			Price:       it.Price,
		})
	}
	return out, nil
}

type Orders struct{ s *Store }

func (r *Orders) Place(_ context.Context, p shop.PlaceOrder) (shop.Order, error) {
	if r.s.BeforePlace != nil {
		r.s.BeforePlace()
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.PlaceErr != nil {
		return shop.Order{}, r.s.PlaceErr
	}
	need := map[int64]int{}
	for _, it := range p.Items {
		need[it.ProductID] += it.Quantity
	}
	for id, n := range need {
		prod, ok := r.s.products[id]
		if !ok {
			return shop.Order{}, fmt.Errorf("product %d: %w", id, shop.ErrNotFound)
		}
		if prod.Quantity < n {
			return shop.Order{}, fmt.Errorf("product %s: %w", prod.Name, shop.ErrInsufficientStock)
		}
	}

	o := shop.Order{
		ID:            r.s.next("orders"),
		UserID:        p.UserID,
		TotalPrice:    p.TotalPrice,
		Status:        p.Status,
		PaymentMethod: p.PaymentMethod,
		CreatedAt:     time.Now().UTC(),
	}
	r.s.orders[o.ID] = o
	for _, it := range p.Items {
		r.s.orderItems[o.ID] = append(r.s.orderItems[o.ID], shop.OrderItem{
			ID:        r.s.next("order_items"),
			BasketID:  it.BasketID,
			ProductID: it.ProductID,
			OrderID:   o.ID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
		prod := r.s.products[it.ProductID]
		prod.Quantity -= it.Quantity
		r.s.products[it.ProductID] = prod
	}
	for _, it := range p.Items {
		cur, ok := r.s.items[it.ID]
		if !ok {
			continue
		}
		if cur.Quantity > it.Quantity {
			cur.Quantity -= it.Quantity
			r.s.items[it.ID] = cur
			continue
		}
		delete(r.s.items, it.ID)
	}
	o.Items = append([]shop.OrderItem(nil), r.s.orderItems[o.ID]...)
	return o, nil
}

func (r *Orders) ByID(_ context.Context, id int64) (shop.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return shop.Order{}, fmt.Errorf("order %d: %w", id, shop.ErrNotFound)
	}
	o.Items = append([]shop.OrderItem(nil), r.s.orderItems[id]...)
	return o, nil
}

func (r *Orders) ByUser(_ context.Context, userID int64) ([]shop.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []shop.Order{}
	for _, o := range r.s.orders {
		if o.UserID == userID {
			o.Items = append([]shop.OrderItem(nil), r.s.orderItems[o.ID]...)
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

var (
	_ shop.UserRepository    = (*Users)(nil)
	_ shop.ProductRepository = (*Products)(nil)
	_ shop.BasketRepository  = (*Baskets)(nil)
	_ shop.OrderRepository   = (*Orders)(nil)
)
