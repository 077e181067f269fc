package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mkravets/flightdesk/config"
	"github.com/mkravets/flightdesk/internal/domain"
)

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(cfg config.RedisConfig) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
	}
}

// GetItineraries returns the cached result set for key, or nil on a miss.
func (c *RedisCache) GetItineraries(ctx context.Context, key string) ([]domain.Itinerary, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var itineraries []domain.Itinerary
	if err := json.Unmarshal(data, &itineraries); err != nil {
		return nil, err
	}
	return itineraries, nil
}

func (c *RedisCache) SetItineraries(ctx context.Context, key string, itineraries []domain.Itinerary, ttl time.Duration) error {
	payload, err := json.Marshal(itineraries)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
