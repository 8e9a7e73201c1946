package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/andesalud/citas-platform/pkg/logging"
)

// CachedRepository is a read-through Redis cache in front of another
// Repository. The catalogue changes only when reseeded, so entries carry a
// TTL instead of explicit invalidation.
type CachedRepository struct {
	inner  Repository
	redis  *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewCachedRepository wraps inner with a Redis cache.
func NewCachedRepository(inner Repository, redisClient *redis.Client, ttl time.Duration, logger *logging.Logger) *CachedRepository {
	if inner == nil {
		panic("catalog: inner repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CachedRepository{inner: inner, redis: redisClient, ttl: ttl, logger: logger}
}

func (c *CachedRepository) ListRegions(ctx context.Context) ([]Region, error) {
	var regions []Region
	err := c.readThrough(ctx, "catalog:regions", &regions, func() (any, error) {
		return c.inner.ListRegions(ctx)
	})
	return regions, err
}

func (c *CachedRepository) ListCommunes(ctx context.Context) ([]Commune, error) {
	var communes []Commune
	err := c.readThrough(ctx, "catalog:communes", &communes, func() (any, error) {
		return c.inner.ListCommunes(ctx)
	})
	return communes, err
}

func (c *CachedRepository) ListAreas(ctx context.Context) ([]Area, error) {
	var areas []Area
	err := c.readThrough(ctx, "catalog:areas", &areas, func() (any, error) {
		return c.inner.ListAreas(ctx)
	})
	return areas, err
}

func (c *CachedRepository) ListMedics(ctx context.Context) ([]Medic, error) {
	var medics []Medic
	err := c.readThrough(ctx, "catalog:medics", &medics, func() (any, error) {
		return c.inner.ListMedics(ctx)
	})
	return medics, err
}

// MedicIDsMatching is not cached: the filter space is wide and the query is
// already a single indexed lookup.
func (c *CachedRepository) MedicIDsMatching(ctx context.Context, filter MedicFilter) ([]uuid.UUID, error) {
	return c.inner.MedicIDsMatching(ctx, filter)
}

func (c *CachedRepository) readThrough(ctx context.Context, key string, dest any, load func() (any, error)) error {
	if c.redis != nil {
		data, err := c.redis.Get(ctx, key).Bytes()
		if err == nil {
			if jsonErr := json.Unmarshal(data, dest); jsonErr == nil {
				return nil
			}
			// Corrupt entry; fall through and overwrite it.
			c.logger.Warn("catalog cache entry unreadable, reloading", "key", key)
		} else if !errors.Is(err, redis.Nil) {
			c.logger.Warn("catalog cache read failed", "key", key, "error", err)
		}
	}

	value, err := load()
	if err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return err
	}

	if c.redis != nil {
		if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("catalog cache write failed", "key", key, "error", err)
		}
	}
	return nil
}
