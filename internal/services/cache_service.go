package services

import (
	"context"
	"time"

	"swyft/pkg/cache"
	"swyft/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// CacheService is the narrow caching surface the repositories use: ride
// snapshots while a ride is active, plus a geo set of last-known driver
// positions. A nil CacheService is valid and means "no cache".
type CacheService interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	// RecordDriverPosition stores a driver's latest coordinates in the
	// driver geo set.
	RecordDriverPosition(ctx context.Context, driverEmail string, lat, lng float64) error
}

const driverPositionsKey = "driver_positions"

type cacheService struct {
	cache *cache.RedisCache
	log   *logger.Logger
}

func NewCacheService(redisCache *cache.RedisCache, log *logger.Logger) CacheService {
	return &cacheService{
		cache: redisCache,
		log:   log,
	}
}

func (s *cacheService) Get(ctx context.Context, key string, dest interface{}) error {
	return s.cache.Get(ctx, key, dest)
}

func (s *cacheService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return s.cache.Set(ctx, key, value, expiration)
}

func (s *cacheService) Delete(ctx context.Context, keys ...string) error {
	return s.cache.Delete(ctx, keys...)
}

func (s *cacheService) RecordDriverPosition(ctx context.Context, driverEmail string, lat, lng float64) error {
	return s.cache.GeoAdd(ctx, driverPositionsKey, &redis.GeoLocation{
		Name:      driverEmail,
		Latitude:  lat,
		Longitude: lng,
	})
}
