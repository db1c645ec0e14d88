package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/travel-agency/internal/config"
)

// cachedResponse is the Redis value for one cached reply.
type cachedResponse struct {
	Status int         `json:"s"`
	Header http.Header `json:"h"`
	Body   []byte      `json:"b"`
}

// bodyRecorder tees the response body into a buffer until limit bytes were
// seen.  Past that the reply is marked oversized and not stored.
type bodyRecorder struct {
	http.ResponseWriter
	status    int
	buf       bytes.Buffer
	limit     int
	oversized bool
}

func (w *bodyRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	if !w.oversized {
		if w.limit > 0 && w.buf.Len()+len(b) > w.limit {
			w.oversized = true
			w.buf.Reset()
		} else {
			w.buf.Write(b)
		}
	}
	return w.ResponseWriter.Write(b)
}

// hop-by-hop and per-reply headers that must not be replayed
var skipHeaders = map[string]bool{
	"Content-Length": true,
	"X-Cache":        true,
	"X-Request-Id":   true,
}

// cacheKey hashes the parts selected by KeyStrategy.  The concrete URL
// path is used, never the route pattern, so each share token has its own
// entry.
func cacheKey(cfg config.CacheConfig, method, path, query string) string {
	var parts []string
	switch strings.ToLower(cfg.KeyStrategy) {
	case "route":
		parts = []string{path}
	case "method_route":
		parts = []string{method, path}
	case "method_route_query":
		parts = []string{method, path, query}
	default: // route_query
		parts = []string{path, query}
	}
	sum := sha1.Sum([]byte(strings.Join(parts, "\x00")))
	return cfg.Prefix + ":" + hex.EncodeToString(sum[:])
}

// pathIndexKey names the Redis set holding every entry key stored for
// path, whatever its method or query string.
func pathIndexKey(cfg config.CacheConfig, path string) string {
	sum := sha1.Sum([]byte(path))
	return cfg.Prefix + ":path:" + hex.EncodeToString(sum[:])
}

// ResponseCache keeps successful GET replies in Redis.  Used for the
// public share-token preview, which is fetched far more often than the
// booking behind it changes.
type ResponseCache struct {
	cfg config.CacheConfig
	rdb *redis.Client
}

// NewResponseCache returns a cache; a nil client or a disabled config makes
// every method a no-op.
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client) *ResponseCache {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	return &ResponseCache{cfg: cfg, rdb: rdb}
}

func (rc *ResponseCache) enabled() bool { return rc != nil && rc.cfg.Enabled && rc.rdb != nil }

// Evict drops every cached variant of path, any method and any query
// string, e.g. after the booking behind a share link was cancelled.
func (rc *ResponseCache) Evict(ctx context.Context, path string) {
	if !rc.enabled() {
		return
	}
	idx := pathIndexKey(rc.cfg, path)
	keys, err := rc.rdb.SMembers(ctx, idx).Result()
	if err != nil {
		log.Printf("cache: evict %s: %v", path, err)
		return
	}
	if err := rc.rdb.Del(ctx, append(keys, idx)...).Err(); err != nil {
		log.Printf("cache: evict %s: %v", path, err)
	}
}

// Middleware serves hits from Redis and stores 200 replies on a miss.
// Redis failures fall through to the handler.
func (rc *ResponseCache) Middleware() echo.MiddlewareFunc {
	if !rc.enabled() {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	cfg, rdb := rc.cfg, rc.rdb

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			r := c.Request()
			method := strings.ToUpper(r.Method)
			if !cfg.Methods[method] {
				return next(c)
			}
			key := cacheKey(cfg, method, r.URL.Path, r.URL.RawQuery)

			if raw, err := rdb.Get(r.Context(), key).Bytes(); err == nil {
				var hit cachedResponse
				if json.Unmarshal(raw, &hit) == nil && hit.Status != 0 {
					h := c.Response().Header()
					for k, vals := range hit.Header {
						h[k] = vals
					}
					h.Set("X-Cache", "HIT")
					return c.Blob(hit.Status, h.Get(echo.HeaderContentType), hit.Body)
				}
			}

			rec := &bodyRecorder{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
			c.Response().Writer = rec
			c.Response().Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}
			if rec.status != http.StatusOK || rec.oversized {
				return nil
			}

			entry := cachedResponse{Status: rec.status, Header: http.Header{}, Body: rec.buf.Bytes()}
			for k, vals := range c.Response().Header() {
				if !skipHeaders[http.CanonicalHeaderKey(k)] {
					entry.Header[k] = append([]string(nil), vals...)
				}
			}
			if raw, err := json.Marshal(entry); err == nil {
				// the request context may already be done once the reply is written
				ctx := context.Background()
				idx := pathIndexKey(cfg, r.URL.Path)
				if _, err := rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Set(ctx, key, raw, cfg.TTL)
					pipe.SAdd(ctx, idx, key)
					pipe.Expire(ctx, idx, cfg.TTL)
					return nil
				}); err != nil {
					c.Logger().Warnf("cache: store %s: %v", r.URL.Path, err)
				}
			}
			return nil
		}
	}
}
