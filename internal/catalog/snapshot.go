// Package catalog maintains a cached snapshot of the reseller's package
// catalog for slug validation and fallback search.
package catalog

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"esim-service/internal/domain"
	"esim-service/internal/infra/reseller"

	"github.com/go-redis/redis/v8"
	"golang.org/x/sync/singleflight"
)

const (
	cacheKey = "reseller:catalog"
	cacheTTL = 15 * time.Minute
)

type Snapshot struct {
	client      reseller.ClientInterface
	redisClient *redis.Client
	group       singleflight.Group
}

func NewSnapshot(client reseller.ClientInterface) *Snapshot {
	return &Snapshot{client: client}
}

// SetRedisClient enables the shared cache. The snapshot works without it;
// every Get then goes upstream (still coalesced).
func (s *Snapshot) SetRedisClient(client *redis.Client) {
	s.redisClient = client
}

// Get returns the current catalog snapshot, from cache when fresh. Concurrent
// callers share a single upstream fetch.
func (s *Snapshot) Get(ctx context.Context) ([]domain.ResellerPackage, error) {
	if s.redisClient != nil {
		cached, err := s.redisClient.Get(ctx, cacheKey).Result()
		if err == nil {
			var pkgs []domain.ResellerPackage
			if err := json.Unmarshal([]byte(cached), &pkgs); err == nil {
				return pkgs, nil
			}
		}
	}

	v, err, _ := s.group.Do(cacheKey, func() (interface{}, error) {
		return s.fetch(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.ResellerPackage), nil
}

// Refresh bypasses the cache and repopulates it.
func (s *Snapshot) Refresh(ctx context.Context) ([]domain.ResellerPackage, error) {
	return s.fetch(ctx)
}

func (s *Snapshot) fetch(ctx context.Context) ([]domain.ResellerPackage, error) {
	pkgs, err := s.client.ListPackages(ctx)
	if err != nil {
		return nil, err
	}

	if s.redisClient != nil {
		if data, err := json.Marshal(pkgs); err == nil {
			if err := s.redisClient.Set(ctx, cacheKey, data, cacheTTL).Err(); err != nil {
				log.Printf("catalog: cache write failed: %v", err)
			}
		}
	}
	return pkgs, nil
}
