// Package catalog serves read-only product queries through a short-lived
// read-through cache.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Sereska7/Project-Shop/internal/redisx"
	"github.com/Sereska7/Project-Shop/internal/shop"
)

const DefaultPageSize = 5

// Cache stores encoded query results for a limited time.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type Service struct {
	Products shop.ProductRepository
	Cache    Cache // nil disables caching
	TTL      time.Duration
	PageSize int
	Log      *zap.Logger
}

func (s *Service) ListProducts(ctx context.Context, limit, offset int) ([]shop.Product, error) {
	if limit <= 0 {
		limit = s.pageSize()
	}
	if offset < 0 {
		offset = 0
	}
	key := cacheKey("products", fmt.Sprintf("limit=%d&offset=%d", limit, offset))
	return readThrough(ctx, s, key, func() ([]shop.Product, error) {
		return s.Products.List(ctx, limit, offset)
	})
}

func (s *Service) GetProduct(ctx context.Context, id int64) (shop.Product, error) {
	key := cacheKey("product", fmt.Sprintf("id=%d", id))
	return readThrough(ctx, s, key, func() (shop.Product, error) {
		return s.Products.ByID(ctx, id)
	})
}

func (s *Service) ListByCategory(ctx context.Context, categoryID int64) ([]shop.Product, error) {
	key := cacheKey("by_category", fmt.Sprintf("category_id=%d", categoryID))
	return readThrough(ctx, s, key, func() ([]shop.Product, error) {
		return s.Products.ByCategory(ctx, categoryID)
	})
}

func (s *Service) ListCategories(ctx context.Context) ([]shop.Category, error) {
	return readThrough(ctx, s, cacheKey("categories", ""), func() ([]shop.Category, error) {
		return s.Products.Categories(ctx)
	})
}

func (s *Service) pageSize() int {
	if s.PageSize > 0 {
		return s.PageSize
	}
	return DefaultPageSize
}

func (s *Service) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return redisx.TTLCatalog
}

func (s *Service) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func cacheKey(op, params string) string {
	return fmt.Sprintf(redisx.KeyCatalog, op, params)
}

// readThrough serves key from the cache or loads and stores it. Cache
// failures are logged and never fail the query; errors are not cached.
func readThrough[T any](ctx context.Context, s *Service, key string, load func() (T, error)) (T, error) {
	if s.Cache != nil {
		b, ok, err := s.Cache.Get(ctx, key)
		if err != nil {
			s.logger().Warn("catalog cache get", zap.String("key", key), zap.Error(err))
		} else if ok {
			var v T
			decErr := json.Unmarshal(b, &v)
			if decErr == nil {
				return v, nil
			}
			s.logger().Warn("catalog cache decode", zap.String("key", key), zap.Error(decErr))
		}
	}

	v, err := load()
	if err != nil {
		return v, err
	}

	if s.Cache != nil {
		b, err := json.Marshal(v)
		if err == nil {
			err = s.Cache.Set(ctx, key, b, s.ttl())
		}
		if err != nil {
			s.logger().Warn("catalog cache set", zap.String("key", key), zap.Error(err))
		}
	}
	return v, nil
}
