package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dcastano/aeroops/config"
	"github.com/dcastano/aeroops/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client   *redis.Client
	tripsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, tripsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:   redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		tripsTTL: tripsTTL,
	}
}

func (c *RedisCache) GetTrips(ctx context.Context) ([]domain.Trip, error) {
	data, err := c.client.Get(ctx, tripsKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var trips []domain.Trip
	if err := json.Unmarshal(data, &trips); err != nil {
		return nil, err
	}
	return trips, nil
}

func (c *RedisCache) SetTrips(ctx context.Context, trips []domain.Trip) error {
	payload, err := json.Marshal(trips)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, tripsKey(), payload, c.tripsTTL).Err()
}

func (c *RedisCache) InvalidateTrips(ctx context.Context) error {
	return c.client.Del(ctx, tripsKey()).Err()
}

// AcquireFlightHold takes a short-lived hold on a flight before the seat
// transaction runs, keeping two callers from racing through the booking path
// for the same flight. The database check stays authoritative either way.
func (c *RedisCache) AcquireFlightHold(ctx context.Context, flightID int64, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, flightHoldKey(flightID), "held", ttl).Result()
}

func (c *RedisCache) ReleaseFlightHold(ctx context.Context, flightID int64) error {
	return c.client.Del(ctx, flightHoldKey(flightID)).Err()
}

func tripsKey() string {
	return "cache:trips"
}

func flightHoldKey(flightID int64) string {
	return fmt.Sprintf("hold:flight:%d", flightID)
}
