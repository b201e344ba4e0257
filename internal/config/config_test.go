package config

import (
	"testing"
	"time"
)

// Malformed tunables must keep the documented defaults.  A capacity of
// zero would turn the fallback limiter into a reject-everything bucket.
func TestLoadRateLimitConfigIgnoresMalformedValues(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "twenty")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-3")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "soon")

	cfg := LoadRateLimitConfig()
	if cfg.Capacity != 20 {
		t.Errorf("Capacity = %d, want default 20", cfg.Capacity)
	}
	if cfg.RefillTokens != 10 {
		t.Errorf("RefillTokens = %d, want default 10", cfg.RefillTokens)
	}
	if cfg.RefillInterval != time.Second {
		t.Errorf("RefillInterval = %v, want default 1s", cfg.RefillInterval)
	}
}

func TestLoadRateLimitConfigReadsValidValues(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "50")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "25")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "5m")

	cfg := LoadRateLimitConfig()
	if cfg.Capacity != 50 || cfg.RefillTokens != 25 {
		t.Errorf("bucket = %d/%d, want 50/25", cfg.Capacity, cfg.RefillTokens)
	}
	if cfg.RefillInterval != 2*time.Second {
		t.Errorf("RefillInterval = %v, want 2s", cfg.RefillInterval)
	}
	if cfg.TTL != 5*time.Minute {
		t.Errorf("TTL = %v, want 5m", cfg.TTL)
	}
}

func TestLoadCacheConfigIgnoresMalformedValues(t *testing.T) {
	t.Setenv("CACHE_MAX_BODY_BYTES", "big")
	t.Setenv("CACHE_TTL", "0s")

	cfg := LoadCacheConfig()
	if cfg.MaxBodyBytes != 1<<20 {
		t.Errorf("MaxBodyBytes = %d, want default %d", cfg.MaxBodyBytes, 1<<20)
	}
	if cfg.TTL != 5*time.Second {
		t.Errorf("TTL = %v, want default 5s", cfg.TTL)
	}
}
