package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/td-airways/flightdesk/config"
	"github.com/td-airways/flightdesk/internal/domain"
)

type RedisCache struct {
	client     *redis.Client
	flightsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, flightsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		flightsTTL: flightsTTL,
	}
}

func (c *RedisCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	data, err := c.client.Get(ctx, flightsKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var flights []domain.Flight
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, flightsKey(), payload, c.flightsTTL).Err()
}

func (c *RedisCache) InvalidateFlights(ctx context.Context) error {
	return c.client.Del(ctx, flightsKey()).Err()
}

// StoreCode saves a one-time code scoped to (ref, email). Issuing a new code
// for the same scope replaces the previous one.
func (c *RedisCache) StoreCode(ctx context.Context, ref, email, code string, ttl time.Duration) error {
	return c.client.Set(ctx, codeKey(ref, email), code, ttl).Err()
}

// ConsumeCode atomically fetches and deletes the stored code. Returns an
// empty string when no code exists for the scope.
func (c *RedisCache) ConsumeCode(ctx context.Context, ref, email string) (string, error) {
	code, err := c.client.GetDel(ctx, codeKey(ref, email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return code, nil
}

func flightsKey() string {
	return "cache:flights"
}

func codeKey(ref, email string) string {
	return fmt.Sprintf("otp:%s:%s", ref, email)
}
