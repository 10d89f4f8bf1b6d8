package config

import "time"

// CacheConfig defines settings for the entity cache layered in front of
// list/detail/search reads. When Enabled is false or no Redis client is
// configured, caching is disabled and every read goes to the database.
//
// TTLs differ by volatility: paginated lists and detail views change only
// on mutations (which also invalidate them), so they tolerate longer TTLs;
// search results get a short TTL so that staleness stays bounded even when
// an invalidation pattern misses a key.
type CacheConfig struct {
	Enabled   bool
	ListTTL   time.Duration // paginated event/ticket lists
	DetailTTL time.Duration // single event detail
	SearchTTL time.Duration // search results
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
// Defaults are used when variables are not set.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:   envBool("CACHE_ENABLED", true),
		ListTTL:   envDur("CACHE_LIST_TTL", time.Minute),
		DetailTTL: envDur("CACHE_DETAIL_TTL", 5*time.Minute),
		SearchTTL: envDur("CACHE_SEARCH_TTL", 30*time.Second),
	}
}

func envBool(k string, d bool) bool {
	switch v := getenv(k, ""); v {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	case "0", "false", "FALSE", "False", "no", "off":
		return false
	default:
		return d
	}
}

func envDur(k string, d time.Duration) time.Duration {
	v := getenv(k, "")
	if v == "" {
		return d
	}
	dur, err := time.ParseDuration(v)
	if err != nil || dur <= 0 {
		return d
	}
	return dur
}
