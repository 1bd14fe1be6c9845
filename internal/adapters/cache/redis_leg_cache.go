package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"fleet-dispatch-service/internal/domain"
	"fleet-dispatch-service/internal/ports"
)

// RedisLegCache decorates a DistanceProvider with a Redis-backed cache of leg
// estimates. Cache failures degrade to the wrapped provider and never fail
// the planning run. Unreachable legs are not cached (the routing backend may
// recover).
type RedisLegCache struct {
	rdb   *redis.Client
	inner ports.DistanceProvider
	ttl   time.Duration
}

func NewRedisLegCache(rdb *redis.Client, inner ports.DistanceProvider, ttl time.Duration) *RedisLegCache {
	return &RedisLegCache{rdb: rdb, inner: inner, ttl: ttl}
}

type cachedLeg struct {
	Km  float64 `json:"km"`
	Min float64 `json:"min"`
}

func legKey(from, to domain.Coordinate) string {
	return "leg:" + from.Key() + "|" + to.Key()
}

func (c *RedisLegCache) Estimate(ctx context.Context, from, to domain.Coordinate) (ports.LegEstimate, error) {
	key := legKey(from, to)

	val, err := c.rdb.Get(ctx, key).Result()
	if err == nil {
		var hit cachedLeg
		if err := json.Unmarshal([]byte(val), &hit); err == nil {
			return ports.LegEstimate{DistanceKm: hit.Km, DurationMinutes: hit.Min}, nil
		}
		log.Printf("leg cache: corrupt entry key=%s, refetching", key)
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("leg cache read failed: %v", err)
	}

	est, err := c.inner.Estimate(ctx, from, to)
	if err != nil {
		return ports.LegEstimate{}, err
	}

	payload, err := json.Marshal(cachedLeg{Km: est.DistanceKm, Min: est.DurationMinutes})
	if err != nil {
		return est, nil
	}
	if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		log.Printf("leg cache write failed: %v", err)
	}
	return est, nil
}

// Estimates serves what it can from cache and fetches the rest, preferring a
// single batched lookup when the wrapped provider supports one.
func (c *RedisLegCache) Estimates(ctx context.Context, origin domain.Coordinate, destinations []domain.Coordinate) (map[string]ports.LegEstimate, error) {
	out := make(map[string]ports.LegEstimate, len(destinations))
	misses := make([]domain.Coordinate, 0, len(destinations))

	keys := make([]string, 0, len(destinations))
	for _, d := range destinations {
		keys = append(keys, legKey(origin, d))
	}

	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		log.Printf("leg cache batch read failed: %v", err)
		vals = make([]interface{}, len(keys))
	}

	for i, d := range destinations {
		s, ok := vals[i].(string)
		if !ok {
			misses = append(misses, d)
			continue
		}
		var hit cachedLeg
		if err := json.Unmarshal([]byte(s), &hit); err != nil {
			misses = append(misses, d)
			continue
		}
		out[d.Key()] = ports.LegEstimate{DistanceKm: hit.Km, DurationMinutes: hit.Min}
	}

	if len(misses) == 0 {
		return out, nil
	}

	var fetched map[string]ports.LegEstimate
	if mp, ok := c.inner.(ports.DistanceMatrixProvider); ok {
		fetched, err = mp.Estimates(ctx, origin, misses)
		if err != nil {
			return nil, fmt.Errorf("leg cache: batched fetch from %s: %w", origin.Key(), err)
		}
	} else {
		fetched = make(map[string]ports.LegEstimate, len(misses))
		for _, d := range misses {
			est, err := c.inner.Estimate(ctx, origin, d)
			if errors.Is(err, domain.ErrUnreachable) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("leg cache: fetch %s -> %s: %w", origin.Key(), d.Key(), err)
			}
			fetched[d.Key()] = est
		}
	}

	for _, d := range misses {
		est, ok := fetched[d.Key()]
		if !ok {
			continue
		}
		out[d.Key()] = est
		if payload, err := json.Marshal(cachedLeg{Km: est.DistanceKm, Min: est.DurationMinutes}); err == nil {
			if err := c.rdb.Set(ctx, legKey(origin, d), payload, c.ttl).Err(); err != nil {
				log.Printf("leg cache write failed: %v", err)
			}
		}
	}

	return out, nil
}

// EstimateWithGeometry delegates without caching; geometry is only fetched
// once per final route leg and the payloads are large.
func (c *RedisLegCache) EstimateWithGeometry(ctx context.Context, from, to domain.Coordinate) (ports.LegEstimate, []domain.Coordinate, error) {
	if gp, ok := c.inner.(ports.RouteGeometryProvider); ok {
		return gp.EstimateWithGeometry(ctx, from, to)
	}
	est, err := c.Estimate(ctx, from, to)
	if err != nil {
		return ports.LegEstimate{}, nil, err
	}
	return est, []domain.Coordinate{from, to}, nil
}
