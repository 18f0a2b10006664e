package middleware

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Hycient195/academia-pro-cache/cache"
	"github.com/Hycient195/academia-pro-cache/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// HeaderCache reports whether the response came from the cache
	HeaderCache = "X-Cache"

	CacheHit  = "HIT"
	CacheMiss = "MISS"

	// UserIDKey gin context key read by the default identity function
	UserIDKey = "user_id"

	anonymousIdentity = "anonymous"
)

// ResponseCacheConfig HTTP response cache configuration
type ResponseCacheConfig struct {
	Prefix       string                      // key prefix, default "http"
	TTL          time.Duration               // 0 uses the service APIResponseTTL
	SkipPaths    []string                    // path prefixes never cached
	IdentityFunc func(c *gin.Context) string // partitions entries per caller
	Logger       *logger.CtxZapLogger
}

func (cfg ResponseCacheConfig) withDefaults(svc *cache.Service) ResponseCacheConfig {
	if cfg.Prefix == "" {
		cfg.Prefix = "http"
	}
	if cfg.TTL <= 0 && svc != nil {
		cfg.TTL = svc.Config().APIResponseTTL
	}
	if cfg.IdentityFunc == nil {
		cfg.IdentityFunc = identityFromContext
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}
	return cfg
}

// cachedResponse is what gets stored for a 200 response
type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// bodyRecorder tees the response body so it can be stored after the handler ran
type bodyRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// ResponseCache caches successful GET responses
// Keys are partitioned by caller identity, method, path, path params and the
// sorted query string. Any cache failure lets the request through uncached.
//
//	engine.Use(middleware.ResponseCache(svc, middleware.ResponseCacheConfig{}))
func ResponseCache(svc *cache.Service, cfg ResponseCacheConfig) gin.HandlerFunc {
	cfg = cfg.withDefaults(svc)

	return func(c *gin.Context) {
		if svc == nil || c.Request.Method != http.MethodGet || skipPath(c.Request.URL.Path, cfg.SkipPaths) {
			c.Next()
			return
		}
		serveCached(c, svc, cfg, requestKey(c, cfg.IdentityFunc(c)))
	}
}

// CacheEndpoint caches a single route under an explicit key
//
//	r.GET("/schools/:id/summary", middleware.CacheEndpoint(svc, "school-summary", time.Minute), handler)
func CacheEndpoint(svc *cache.Service, key string, ttl time.Duration) gin.HandlerFunc {
	cfg := ResponseCacheConfig{Prefix: "http:" + key, TTL: ttl}.withDefaults(svc)

	return func(c *gin.Context) {
		if svc == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}
		serveCached(c, svc, cfg, requestKey(c, cfg.IdentityFunc(c)))
	}
}

func serveCached(c *gin.Context, svc *cache.Service, cfg ResponseCacheConfig, key string) {
	ctx := c.Request.Context()

	var hit cachedResponse
	if svc.Get(ctx, key, &hit, cache.WithPrefix(cfg.Prefix)) {
		c.Header(HeaderCache, CacheHit)
		c.Data(hit.Status, hit.ContentType, hit.Body)
		c.Abort()
		return
	}

	c.Header(HeaderCache, CacheMiss)
	rec := &bodyRecorder{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
	c.Writer = rec

	c.Next()

	if rec.Status() != http.StatusOK || len(c.Errors) > 0 {
		return
	}

	entry := cachedResponse{
		Status:      http.StatusOK,
		ContentType: rec.Header().Get("Content-Type"),
		Body:        rec.body.Bytes(),
	}
	if err := svc.Set(ctx, key, entry, cache.WithPrefix(cfg.Prefix), cache.WithTTL(cfg.TTL)); err != nil {
		cfg.Logger.WarnCtx(ctx, "response not cached", zap.String("key", key), zap.Error(err))
	}
}

// requestKey builds <identity>:<METHOD>:<escaped path>[?<query>][#<path params>]
// Identity, query and path params are URL-encoded so none of them can
// contain an unescaped separator.
func requestKey(c *gin.Context, identity string) string {
	key := url.QueryEscape(identity) + ":" + c.Request.Method + ":" + c.Request.URL.EscapedPath()
	if query := c.Request.URL.Query(); len(query) > 0 {
		key += "?" + query.Encode()
	}
	if len(c.Params) > 0 {
		params := make(url.Values, len(c.Params))
		for _, p := range c.Params {
			params.Add(p.Key, p.Value)
		}
		key += "#" + params.Encode()
	}
	return key
}

func identityFromContext(c *gin.Context) string {
	if v, ok := c.Get(UserIDKey); ok {
		if id := fmt.Sprint(v); id != "" {
			return id
		}
	}
	return anonymousIdentity
}

func skipPath(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
