package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"roadtrip-route-service/internal/domain"
	"roadtrip-route-service/internal/platform/obs"

	"github.com/redis/go-redis/v9"
)

// DefaultRouteKey is the Redis key holding the serialized route snapshot.
const DefaultRouteKey = "route:snapshot"

// RedisRouteCache is a Redis-backed RouteCache. The snapshot is stored as a
// single JSON value; a zero TTL keeps it until the next Put or Invalidate.
type RedisRouteCache struct {
	Client redis.UniversalClient
	Key    string
	TTL    time.Duration
}

func NewRedisRouteCache(client redis.UniversalClient, ttl time.Duration) *RedisRouteCache {
	return &RedisRouteCache{Client: client, Key: DefaultRouteKey, TTL: ttl}
}

type cachedLocation struct {
	Name         string    `json:"name"`
	Lat          float64   `json:"lat"`
	Lon          float64   `json:"lon"`
	Temperatures []float64 `json:"temperatures,omitempty"`
}

type cachedSnapshot struct {
	Stops     []cachedLocation `json:"stops"`
	TempMin   float64          `json:"temp_min"`
	TempMax   float64          `json:"temp_max"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Fetch the cached snapshot. A missing key is a miss, not an error.
func (c *RedisRouteCache) Get(ctx context.Context) (_ *domain.RouteSnapshot, _ bool, err error) {
	defer obs.Time(ctx, "route.cache.Get")(&err)

	if c.Client == nil {
		return nil, false, errors.New("route cache: client is nil")
	}

	raw, err := c.Client.Get(ctx, c.Key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get route cache: %w", err)
	}

	var w cachedSnapshot
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, false, fmt.Errorf("get route cache: decode: %w", err)
	}

	snap := &domain.RouteSnapshot{
		Stops:     make(domain.Route, 0, len(w.Stops)),
		TempRange: domain.TempRange{Min: w.TempMin, Max: w.TempMax},
		UpdatedAt: w.UpdatedAt,
	}
	for _, l := range w.Stops {
		snap.Stops = append(snap.Stops, domain.Location{
			Name:         l.Name,
			Lat:          l.Lat,
			Lon:          l.Lon,
			Temperatures: l.Temperatures,
		})
	}
	return snap, true, nil
}

// Store the snapshot, replacing any previous value.
func (c *RedisRouteCache) Put(ctx context.Context, snap *domain.RouteSnapshot) error {
	if c.Client == nil {
		return errors.New("route cache: client is nil")
	}
	if snap == nil {
		return errors.New("put route cache: snapshot is nil")
	}

	w := cachedSnapshot{
		Stops:     make([]cachedLocation, 0, len(snap.Stops)),
		TempMin:   snap.TempRange.Min,
		TempMax:   snap.TempRange.Max,
		UpdatedAt: snap.UpdatedAt,
	}
	for _, l := range snap.Stops {
		w.Stops = append(w.Stops, cachedLocation{
			Name:         l.Name,
			Lat:          l.Lat,
			Lon:          l.Lon,
			Temperatures: l.Temperatures,
		})
	}

	raw, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("put route cache: encode: %w", err)
	}
	if err := c.Client.Set(ctx, c.Key, raw, c.TTL).Err(); err != nil {
		return fmt.Errorf("put route cache: %w", err)
	}
	return nil
}

func (c *RedisRouteCache) Invalidate(ctx context.Context) error {
	if c.Client == nil {
		return errors.New("route cache: client is nil")
	}
	if err := c.Client.Del(ctx, c.Key).Err(); err != nil {
		return fmt.Errorf("invalidate route cache: %w", err)
	}
	return nil
}
