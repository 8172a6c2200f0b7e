package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/susp3kt93/myfleet-sub000/internal/models"
	"github.com/susp3kt93/myfleet-sub000/pkg/redis"
)

const (
	kindVehicle     = "vehicle"
	kindVehicleList = "vehicle_list"
)

var ErrUnavailable = errors.New("cache: redis client unavailable")

// RedisCache implements VehicleCache on Redis strings with tag sets for
// grouped invalidation.
type RedisCache struct {
	client *redis.Client
	config Config
	stats  *cacheStats
}

type cacheStats struct {
	mu            sync.RWMutex
	totalHits     int64
	totalMisses   int64
	evictionCount int64
}

var _ VehicleCache = (*RedisCache)(nil)

func NewRedisCache(client *redis.Client, config Config) *RedisCache {
	return &RedisCache{client: client, config: config, stats: &cacheStats{}}
}

func (r *RedisCache) rdb() (*goredis.Client, error) {
	if r.client == nil {
		return nil, ErrUnavailable
	}
	c := r.client.GetClient()
	if c == nil {
		return nil, ErrUnavailable
	}
	return c, nil
}

func (r *RedisCache) GetVehicle(ctx context.Context, companyID, vehicleID string) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	ok, err := r.get(ctx, r.vehicleKey(companyID, vehicleID), &vehicle)
	if err != nil || !ok {
		return nil, err
	}
	vehicle.Refresh()
	return &vehicle, nil
}

func (r *RedisCache) SetVehicle(ctx context.Context, vehicle *models.Vehicle) error {
	companyID := vehicle.CompanyID.Hex()
	key := r.vehicleKey(companyID, vehicle.ID.Hex())
	if err := r.set(ctx, key, vehicle, r.config.TTLFor(kindVehicle)); err != nil {
		return err
	}
	if err := r.tagKey(ctx, key, vehicleTag(vehicle.ID.Hex())); err != nil {
		log.WithError(err).WithField("key", key).Warn("Failed to tag cache key")
	}
	return nil
}

// InvalidateVehicle removes the vehicle entry and any list that contained it.
func (r *RedisCache) InvalidateVehicle(ctx context.Context, companyID, vehicleID string) error {
	return r.invalidateTag(ctx, vehicleTag(vehicleID))
}

func (r *RedisCache) GetVehicleList(ctx context.Context, companyID, key string) ([]*models.Vehicle, error) {
	var vehicles []*models.Vehicle
	ok, err := r.get(ctx, r.listKey(companyID, key), &vehicles)
	if err != nil || !ok {
		return nil, err
	}
	for _, v := range vehicles {
		v.Refresh()
	}
	return vehicles, nil
}

func (r *RedisCache) SetVehicleList(ctx context.Context, companyID, key string, vehicles []*models.Vehicle) error {
	cacheKey := r.listKey(companyID, key)
	if vehicles == nil {
		vehicles = []*models.Vehicle{}
	}
	if err := r.set(ctx, cacheKey, vehicles, r.config.TTLFor(kindVehicleList)); err != nil {
		return err
	}

	tags := []string{companyTag(companyID)}
	for _, v := range vehicles {
		tags = append(tags, vehicleTag(v.ID.Hex()))
	}
	if err := r.tagKey(ctx, cacheKey, tags...); err != nil {
		log.WithError(err).WithField("key", cacheKey).Warn("Failed to tag cache key")
	}
	return nil
}

func (r *RedisCache) InvalidateCompany(ctx context.Context, companyID string) error {
	return r.invalidateTag(ctx, companyTag(companyID))
}

func (r *RedisCache) Stats() Stats {
	r.stats.mu.RLock()
	defer r.stats.mu.RUnlock()

	s := Stats{
		TotalHits:     r.stats.totalHits,
		TotalMisses:   r.stats.totalMisses,
		EvictionCount: r.stats.evictionCount,
	}
	if total := s.TotalHits + s.TotalMisses; total > 0 {
		s.HitRate = float64(s.TotalHits) / float64(total)
		s.MissRate = float64(s.TotalMisses) / float64(total)
	}
	return s
}

func (r *RedisCache) HealthCheck(ctx context.Context) error {
	c, err := r.rdb()
	if err != nil {
		return err
	}
	return c.Ping(ctx).Err()
}

func (r *RedisCache) get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c, err := r.rdb()
	if err != nil {
		return false, err
	}
	data, err := c.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			r.record(false)
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s from cache: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	r.record(true)
	return true, nil
}

func (r *RedisCache) set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c, err := r.rdb()
	if err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := c.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write %s to cache: %w", key, err)
	}
	return nil
}

func (r *RedisCache) tagKey(ctx context.Context, key string, tags ...string) error {
	c, err := r.rdb()
	if err != nil {
		return err
	}
	ttl := r.config.tagTTL()
	pipe := c.Pipeline()
	for _, tag := range tags {
		tagKeys := r.tagSetKey(tag)
		pipe.SAdd(ctx, tagKeys, key)
		pipe.Expire(ctx, tagKeys, ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisCache) invalidateTag(ctx context.Context, tag string) error {
	c, err := r.rdb()
	if err != nil {
		return err
	}
	tagKeys := r.tagSetKey(tag)
	keys, err := c.SMembers(ctx, tagKeys).Result()
	if err != nil {
		return fmt.Errorf("failed to read keys for tag %s: %w", tag, err)
	}

	pipe := c.Pipeline()
	for _, key := range keys {
		pipe.Del(ctx, key)
	}
	pipe.Del(ctx, tagKeys)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to invalidate tag %s: %w", tag, err)
	}

	r.stats.mu.Lock()
	r.stats.evictionCount += int64(len(keys))
	r.stats.mu.Unlock()
	return nil
}

func (r *RedisCache) record(hit bool) {
	r.stats.mu.Lock()
	if hit {
		r.stats.totalHits++
	} else {
		r.stats.totalMisses++
	}
	r.stats.mu.Unlock()
}

func (r *RedisCache) vehicleKey(companyID, vehicleID string) string {
	return fmt.Sprintf("%s%s:%s:%s", r.config.KeyPrefix, kindVehicle, companyID, vehicleID)
}

func (r *RedisCache) listKey(companyID, key string) string {
	return fmt.Sprintf("%s%s:%s:%s", r.config.KeyPrefix, kindVehicleList, companyID, key)
}

func (r *RedisCache) tagSetKey(tag string) string {
	return r.config.TagPrefix + tag
}

func vehicleTag(vehicleID string) string { return "vehicle:" + vehicleID }

func companyTag(companyID string) string { return "company:" + companyID }
