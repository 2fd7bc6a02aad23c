package cache

import (
	"context"
	"sync"
	"time"
)

// ServiceConfig configures the cache service.
type ServiceConfig struct {
	Capacity        int           // maximum entries (default: 1000)
	DefaultTTL      time.Duration // default entry lifetime (default: 5m)
	CleanupInterval time.Duration // expired-entry sweep interval (default: 1m)
}

// Service implements CacheService with LRU eviction and a background
// expiry sweep.
type Service struct {
	lru *lru

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

var _ CacheService = (*Service)(nil)

// NewService creates a cache service and starts its cleanup loop.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 1000
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = 5 * time.Minute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		lru:    newLRU(cfg.Capacity, cfg.DefaultTTL),
		cancel: cancel,
	}

	s.wg.Add(1)
	go s.cleanupLoop(ctx, cfg.CleanupInterval)

	return s
}

// Close stops the cleanup loop.
func (s *Service) Close() {
	s.cancel()
	s.wg.Wait()
}

// Get retrieves a value from cache.
func (s *Service) Get(_ context.Context, key string) ([]byte, bool) {
	return s.lru.get(key)
}

// Set stores a value in cache.
func (s *Service) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.lru.set(key, value, ttl)
	return nil
}

// Invalidate removes entries matching the pattern.
func (s *Service) Invalidate(_ context.Context, pattern string) error {
	s.lru.invalidate(pattern)
	return nil
}

// Size returns the number of live entries.
func (s *Service) Size() int {
	return s.lru.size()
}

func (s *Service) cleanupLoop(ctx context.Context, interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.lru.cleanupExpired()
		}
	}
}
