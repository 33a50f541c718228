package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"custodial-wallet/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

const priceCacheKey = "prices:latest"

// PriceCache implements ports.PriceCache. The last live quote set is stored
// as one JSON document.
type PriceCache struct {
	client goredis.Cmdable
	key    string
}

func NewPriceCache(client goredis.Cmdable) *PriceCache {
	return &PriceCache{client: client, key: priceCacheKey}
}

// Get returns nil, nil on a cache miss.
func (c *PriceCache) Get(ctx context.Context) ([]domain.CryptoPrice, error) {
	val, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis price cache get: %w", err)
	}

	var prices []domain.CryptoPrice
	if err := json.Unmarshal(val, &prices); err != nil {
		return nil, fmt.Errorf("decode cached prices: %w", err)
	}
	return prices, nil
}

func (c *PriceCache) Set(ctx context.Context, prices []domain.CryptoPrice, ttl time.Duration) error {
	data, err := json.Marshal(prices)
	if err != nil {
		return fmt.Errorf("encode prices: %w", err)
	}
	if err := c.client.Set(ctx, c.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis price cache set: %w", err)
	}
	return nil
}
