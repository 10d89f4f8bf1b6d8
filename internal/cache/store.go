package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tickzi/tickzi/internal/config"
)

// Store is a fail-open JSON cache over Redis. A Store built with a nil
// client (Redis unreachable or caching disabled) is fully functional:
// Get always misses, Set and invalidation are no-ops, and callers fall
// through to the database. Redis errors are logged and swallowed; they
// never fail the surrounding request.
type Store struct {
	rdb       *redis.Client
	listTTL   time.Duration
	detailTTL time.Duration
	searchTTL time.Duration
}

// New builds a Store from the given client and cache configuration.
func New(rdb *redis.Client, cfg config.CacheConfig) *Store {
	if !cfg.Enabled {
		rdb = nil
	}
	return &Store{
		rdb:       rdb,
		listTTL:   cfg.ListTTL,
		detailTTL: cfg.DetailTTL,
		searchTTL: cfg.SearchTTL,
	}
}

// Enabled reports whether a cache backend is actually in use.
func (s *Store) Enabled() bool { return s != nil && s.rdb != nil }

// Get loads the cached JSON payload for key into dest and reports
// whether it was a hit. Any backend or decode error counts as a miss.
func (s *Store) Get(ctx context.Context, key string, dest any) bool {
	if !s.Enabled() {
		return false
	}
	b, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("cache: get %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(b, dest); err != nil {
		log.Printf("cache: decode %s: %v", key, err)
		return false
	}
	return true
}

// SetList stores a paginated listing payload.
func (s *Store) SetList(ctx context.Context, key string, v any) { s.set(ctx, key, v, s.listTTL) }

// SetDetail stores a single-entity payload.
func (s *Store) SetDetail(ctx context.Context, key string, v any) { s.set(ctx, key, v, s.detailTTL) }

// SetSearch stores a search result payload with the short TTL.
func (s *Store) SetSearch(ctx context.Context, key string, v any) { s.set(ctx, key, v, s.searchTTL) }

func (s *Store) set(ctx context.Context, key string, v any, ttl time.Duration) {
	if !s.Enabled() {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("cache: encode %s: %v", key, err)
		return
	}
	if err := s.rdb.SetEx(ctx, key, b, ttl).Err(); err != nil {
		log.Printf("cache: set %s: %v", key, err)
	}
}

// deletePatterns removes every key matching any of the given patterns.
// SCAN is used instead of KEYS so invalidation never blocks the
// backend. Best-effort: a failure here leaves stale entries behind
// until their TTL expires, which is the documented staleness bound.
func (s *Store) deletePatterns(ctx context.Context, patterns []string) {
	if !s.Enabled() {
		return
	}
	for _, p := range patterns {
		iter := s.rdb.Scan(ctx, 0, p, 100).Iterator()
		keys := make([]string, 0, 16)
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
			if len(keys) == 100 {
				s.del(ctx, keys)
				keys = keys[:0]
			}
		}
		if err := iter.Err(); err != nil {
			log.Printf("cache: scan %s: %v", p, err)
		}
		if len(keys) > 0 {
			s.del(ctx, keys)
		}
	}
}

func (s *Store) del(ctx context.Context, keys []string) {
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Printf("cache: del: %v", err)
	}
}
