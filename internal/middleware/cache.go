package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/movie-theater-booking/internal/config"
)

// cachedResponse is the envelope stored in Redis for a cached GET.
type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// captureWriter buffers the response body so it can be stored after the
// handler has run, while still streaming it to the client.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (w *captureWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *captureWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	return w.ResponseWriter.Write(p)
}

// ResponseCache caches successful GET responses in Redis for cfg.TTL.
// The availability endpoint is the main beneficiary: seat maps are read
// far more often than they change, and a few seconds of staleness is
// acceptable for browsing.  Mutations never pass through this
// middleware, so correctness-critical reads (the transactional checks
// inside the booking service) are unaffected.
//
// When rdb is nil or caching is disabled the middleware is a no-op
// pass-through, which keeps the router wiring unconditional.
func ResponseCache(rdb *redis.Client, cfg config.CacheConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if rdb == nil || !cfg.Enabled || c.Request().Method != http.MethodGet {
				return next(c)
			}

			key := cfg.Prefix + ":" + c.Request().URL.RequestURI()
			ctx, cancel := context.WithTimeout(c.Request().Context(), 200*time.Millisecond)
			defer cancel()

			if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
				var cached cachedResponse
				if json.Unmarshal(raw, &cached) == nil && cached.Status != 0 {
					c.Response().Header().Set(echo.HeaderContentType, cached.ContentType)
					c.Response().Header().Set("X-Cache", "HIT")
					return c.Blob(cached.Status, cached.ContentType, cached.Body)
				}
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}

			// Only cache successful responses; errors should always
			// be recomputed.
			if cw.status != http.StatusOK || cw.buf.Len() == 0 || cw.buf.Len() > cfg.MaxBodyBytes {
				return nil
			}

			entry := cachedResponse{
				Status:      cw.status,
				ContentType: c.Response().Header().Get(echo.HeaderContentType),
				Body:        cw.buf.Bytes(),
			}
			if raw, err := json.Marshal(entry); err == nil {
				storeCtx, storeCancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
				defer storeCancel()
				_ = rdb.Set(storeCtx, key, raw, cfg.TTL).Err()
			}
			return nil
		}
	}
}
