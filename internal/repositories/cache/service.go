package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"veripay/internal/models"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when a key is absent.
var ErrCacheMiss = errors.New("cache miss")

// CacheService wraps Redis with JSON marshalling for model types. It
// only ever holds read copies; the ledger invalidates entries after
// every settlement.
type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{client: client, ttl: defaultTTL}
}

func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, s.ttl).Err()
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("failed to get cache value: %w", err)
	}
	return json.Unmarshal(data, dest)
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

func accountKey(userID uint) string {
	return fmt.Sprintf("account:user:%d", userID)
}

func pricingKey(serviceName string) string {
	return fmt.Sprintf("pricing:service:%s", serviceName)
}

// Account caching

func (s *CacheService) CacheAccount(ctx context.Context, acct *models.VirtualAccount) error {
	if acct == nil {
		return errors.New("cannot cache nil account")
	}
	return s.Set(ctx, accountKey(acct.UserID), acct)
}

func (s *CacheService) GetAccount(ctx context.Context, userID uint) (*models.VirtualAccount, error) {
	var acct models.VirtualAccount
	if err := s.Get(ctx, accountKey(userID), &acct); err != nil {
		return nil, err
	}
	return &acct, nil
}

func (s *CacheService) InvalidateAccount(ctx context.Context, userID uint) error {
	return s.Delete(ctx, accountKey(userID))
}

// Pricing caching

func (s *CacheService) CachePricing(ctx context.Context, p *models.Pricing) error {
	if p == nil {
		return errors.New("cannot cache nil pricing")
	}
	return s.Set(ctx, pricingKey(p.ServiceName), p)
}

func (s *CacheService) GetPricing(ctx context.Context, serviceName string) (*models.Pricing, error) {
	var p models.Pricing
	if err := s.Get(ctx, pricingKey(serviceName), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *CacheService) InvalidatePricing(ctx context.Context, serviceName string) error {
	return s.Delete(ctx, pricingKey(serviceName))
}

// FlushAll clears the cache, used on startup.
func (s *CacheService) FlushAll(ctx context.Context) error {
	return s.client.FlushAll(ctx).Err()
}

// Close closes the underlying Redis connection.
func (s *CacheService) Close() error {
	return s.client.Close()
}
