package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/iliyamo/movie-theater-booking/internal/config"
)

// tokenBucketScript refills and consumes one token atomically.  Keeping
// the refill math inside Redis means every app instance shares the same
// bucket per client without extra coordination.
//
// KEYS[1] = bucket key
// ARGV[1] = capacity
// ARGV[2] = tokens added per refill interval
// ARGV[3] = refill interval in milliseconds
// ARGV[4] = now in milliseconds
// ARGV[5] = key TTL in seconds
//
// Returns {allowed(0|1), remaining}.
var tokenBucketScript = redis.NewScript(`
local key      = KEYS[1]
local capacity = tonumber(ARGV[1])
local refill   = tonumber(ARGV[2])
local interval = tonumber(ARGV[3])
local now      = tonumber(ARGV[4])
local ttl      = tonumber(ARGV[5])

local data   = redis.call('HMGET', key, 'tokens', 'ts')
local tokens = tonumber(data[1])
local ts     = tonumber(data[2])

if tokens == nil then
  tokens = capacity
  ts = now
end

local elapsed = now - ts
if elapsed > 0 then
  local added = math.floor(elapsed / interval) * refill
  if added > 0 then
    tokens = math.min(capacity, tokens + added)
    ts = ts + math.floor(elapsed / interval) * interval
  end
end

local allowed = 0
if tokens > 0 then
  tokens = tokens - 1
  allowed = 1
end

redis.call('HMSET', key, 'tokens', tokens, 'ts', ts)
redis.call('EXPIRE', key, ttl)

return {allowed, tokens}
`)

// localLimiters is the in-process fallback used when Redis is absent.
// One rate.Limiter per client IP; good enough for a single instance.
type localLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func (l *localLimiters) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[ip]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[ip] = lim
	}
	return lim
}

// RateLimit limits requests per client IP using a Redis token bucket,
// falling back to an in-process golang.org/x/time limiter when no Redis
// client is configured.  On Redis errors the request is allowed through:
// rate limiting protects capacity, it must never take the API down.
func RateLimit(rdb *redis.Client, cfg config.RateLimitConfig) echo.MiddlewareFunc {
	local := &localLimiters{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(float64(cfg.RefillTokens) / cfg.RefillInterval.Seconds()),
		burst:    cfg.Capacity,
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Enabled {
				return next(c)
			}
			ip := c.RealIP()

			if rdb == nil {
				if !local.get(ip).Allow() {
					return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "rate limit exceeded"})
				}
				return next(c)
			}

			key := cfg.Prefix + ":" + ip
			ctx, cancel := context.WithTimeout(c.Request().Context(), 200*time.Millisecond)
			defer cancel()

			res, err := tokenBucketScript.Run(ctx, rdb, []string{key},
				cfg.Capacity,
				cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(),
				time.Now().UnixMilli(),
				int(cfg.TTL.Seconds()),
			).Slice()
			if err != nil || len(res) != 2 {
				return next(c) // fail open
			}
			allowed, _ := res[0].(int64)
			if allowed != 1 {
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "rate limit exceeded"})
			}
			return next(c)
		}
	}
}
