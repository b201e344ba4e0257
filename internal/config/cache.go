package config

import "time"

// CacheConfig drives the response cache middleware placed in front of
// the availability endpoint.  When Enabled is false or no Redis client
// is available, caching is a no-op.  The TTL is intentionally short:
// availability is a live projection and stale entries show seats that a
// concurrent checkout has just taken.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
// Defaults are used when variables are unset.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		TTL:          envDur("CACHE_TTL", 5*time.Second),
		Prefix:       getenv("CACHE_PREFIX", "availability"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}
