package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/fjod/saree_store/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	productKeyPrefix = "catalog:product:"
	listKeyPrefix    = "catalog:list:"
	listIndexKey     = "catalog:lists"
)

type RedisCatalogCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewRedisCatalogCache(client *redis.Client, baseTTL time.Duration) *RedisCatalogCache {
	if baseTTL <= 0 {
		baseTTL = time.Minute
	}
	return &RedisCatalogCache{
		client:  client,
		baseTTL: baseTTL,
	}
}

func (r *RedisCatalogCache) GetProducts(ctx context.Context, key string) ([]*domain.Product, error) {
	var products []*domain.Product
	if err := r.getJSON(ctx, listKeyPrefix+key, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *RedisCatalogCache) SetProducts(ctx context.Context, key string, products []*domain.Product) error {
	pipe := r.client.TxPipeline()
	if err := r.setJSON(ctx, pipe, listKeyPrefix+key, products); err != nil {
		return err
	}
	pipe.SAdd(ctx, listIndexKey, listKeyPrefix+key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set product list failed: %w", err)
	}
	return nil
}

func (r *RedisCatalogCache) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var product domain.Product
	if err := r.getJSON(ctx, productKeyPrefix+id, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *RedisCatalogCache) SetProduct(ctx context.Context, product *domain.Product) error {
	pipe := r.client.Pipeline()
	if err := r.setJSON(ctx, pipe, productKeyPrefix+product.ID.Hex(), product); err != nil {
		return err
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set product failed: %w", err)
	}
	return nil
}

func (r *RedisCatalogCache) Invalidate(ctx context.Context, id string) error {
	lists, err := r.client.SMembers(ctx, listIndexKey).Result()
	if err != nil {
		return fmt.Errorf("redis list index failed: %w", err)
	}

	keys := append(lists, listIndexKey)
	if id != "" {
		keys = append(keys, productKeyPrefix+id)
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r *RedisCatalogCache) ttl() time.Duration {
	jitter := time.Duration(rand.Int63n(int64(r.baseTTL/4) + 1))
	return r.baseTTL + jitter
}

func (r *RedisCatalogCache) getJSON(ctx context.Context, key string, dst any) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get failed: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("unmarshal %s failed: %w", key, err)
	}
	return nil
}

func (r *RedisCatalogCache) setJSON(ctx context.Context, pipe redis.Pipeliner, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s failed: %w", key, err)
	}
	pipe.Set(ctx, key, data, r.ttl())
	return nil
}
