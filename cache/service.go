package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Hycient195/academia-pro-cache/logger"
	"github.com/Hycient195/academia-pro-cache/redis"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// KeyValueStore is the store surface the service needs; *redis.Store satisfies it
type KeyValueStore interface {
	SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest interface{}) bool
	Del(ctx context.Context, keys ...string)
	Exists(ctx context.Context, key string) bool
	TTL(ctx context.Context, key string) int64
	Expire(ctx context.Context, key string, ttl time.Duration)
	Keys(ctx context.Context, pattern string) []string
	InvalidatePattern(ctx context.Context, pattern string) int64
	FlushDB(ctx context.Context)
	Ping(ctx context.Context) bool
	MemoryUsage(ctx context.Context) string
	DefaultTTL() time.Duration
}

var _ KeyValueStore = (*redis.Store)(nil)

// Stats snapshot of the cache
type Stats struct {
	TotalKeys   int    `json:"total_keys"`
	MemoryUsage string `json:"memory_usage"`
	Connected   bool   `json:"connected"`
	Hits        int64  `json:"hits"`
	Misses      int64  `json:"misses"`
}

// Service namespacing and TTL policy on top of a KeyValueStore
// Cache-aside only: no single-flight, concurrent misses all run their loader
type Service struct {
	store  KeyValueStore
	cfg    Config
	log    *logger.CtxZapLogger
	hits   atomic.Int64
	misses atomic.Int64
}

// NewService creates the service; zero config values are defaulted
func NewService(store KeyValueStore, cfg Config, log *logger.CtxZapLogger) (*Service, error) {
	cfg.ApplyDefaults(store.DefaultTTL())
	if err := cfg.Validate(); err != nil {
		return nil, ErrConfigInvalid.Wrap(err)
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{store: store, cfg: cfg, log: log}, nil
}

// Store underlying key-value store
func (s *Service) Store() KeyValueStore {
	return s.store
}

// Config effective configuration
func (s *Service) Config() Config {
	return s.cfg
}

// GenerateKey returns "<prefix>:<key>", prefix defaults to "cache"
func (s *Service) GenerateKey(key, prefix string) string {
	if prefix == "" {
		prefix = s.cfg.DefaultPrefix
	}
	return prefix + ":" + key
}

// Set stores value as JSON under the namespaced key
// Only ErrSerialize is returned, store outages are absorbed
func (s *Service) Set(ctx context.Context, key string, value interface{}, opts ...Option) error {
	o := s.resolve(opts)
	fullKey := s.GenerateKey(key, o.Prefix)
	if err := s.store.SetJSON(ctx, fullKey, value, o.TTL); err != nil {
		return ErrSerialize.WithMsgf("cache value for %s is not serializable", fullKey).Wrap(err)
	}
	return nil
}

// Get decodes the cached value into dest and reports a hit
func (s *Service) Get(ctx context.Context, key string, dest interface{}, opts ...Option) bool {
	o := s.resolve(opts)
	fullKey := s.GenerateKey(key, o.Prefix)

	if s.store.GetJSON(ctx, fullKey, dest) {
		s.hits.Add(1)
		s.log.DebugCtx(ctx, "cache hit", zap.String("key", fullKey))
		return true
	}
	s.misses.Add(1)
	s.log.DebugCtx(ctx, "cache miss", zap.String("key", fullKey))
	return false
}

// Get typed read, the zero value on miss
func Get[T any](ctx context.Context, s *Service, key string, opts ...Option) (T, bool) {
	var value T
	if s == nil || !s.Get(ctx, key, &value, opts...) {
		var zero T
		return zero, false
	}
	return value, true
}

// Del removes one entry
func (s *Service) Del(ctx context.Context, key string, opts ...Option) {
	o := s.resolve(opts)
	s.store.Del(ctx, s.GenerateKey(key, o.Prefix))
}

// Exists reports whether the entry is present
func (s *Service) Exists(ctx context.Context, key string, opts ...Option) bool {
	o := s.resolve(opts)
	return s.store.Exists(ctx, s.GenerateKey(key, o.Prefix))
}

// GetTTL remaining seconds (-1 no expiry, -2 missing)
func (s *Service) GetTTL(ctx context.Context, key string, opts ...Option) int64 {
	o := s.resolve(opts)
	return s.store.TTL(ctx, s.GenerateKey(key, o.Prefix))
}

// SetTTL resets the expiry without touching the value; ttl <= 0 is a no-op
func (s *Service) SetTTL(ctx context.Context, key string, ttl time.Duration, opts ...Option) {
	o := s.resolve(opts)
	s.store.Expire(ctx, s.GenerateKey(key, o.Prefix), ttl)
}

// GetOrSet cache-aside read
// A hit never runs fallback. A fallback error is returned unchanged and
// nothing is written. A failed write is logged and the computed value is
// still returned.
func GetOrSet[T any](ctx context.Context, s *Service, key string, fallback func(ctx context.Context) (T, error), opts ...Option) (T, error) {
	if s == nil {
		return fallback(ctx)
	}

	if cached, ok := Get[T](ctx, s, key, opts...); ok {
		return cached, nil
	}

	value, err := fallback(ctx)
	if err != nil {
		return value, err
	}

	if err := s.Set(ctx, key, value, opts...); err != nil {
		s.log.WarnCtx(ctx, "cache write failed, returning uncached value",
			zap.String("key", key), zap.Error(err))
	}
	return value, nil
}

// GetOrSet untyped variant; hits decode into generic JSON values
func (s *Service) GetOrSet(ctx context.Context, key string, fallback func(ctx context.Context) (interface{}, error), opts ...Option) (interface{}, error) {
	return GetOrSet[interface{}](ctx, s, key, fallback, opts...)
}

// InvalidatePattern deletes every entry matching the glob pattern
// The pattern is anchored under the global key prefix by the store, not
// under a namespace: entries written with Set live under "<prefix>:" so
// their patterns must include it, e.g. "cache:user:1:*"
func (s *Service) InvalidatePattern(ctx context.Context, pattern string) int64 {
	deleted := s.store.InvalidatePattern(ctx, pattern)
	s.log.InfoCtx(ctx, "cache invalidated by pattern", zap.String("pattern", pattern), zap.Int64("deleted", deleted))
	return deleted
}

// ClearAll flushes the whole store; admin use only
func (s *Service) ClearAll(ctx context.Context) {
	s.log.WarnCtx(ctx, "clearing entire cache")
	s.store.FlushDB(ctx)
}

// Ping reports store liveness
func (s *Service) Ping(ctx context.Context) bool {
	return s.store.Ping(ctx)
}

// Stats collects key count, memory usage and liveness concurrently
func (s *Service) Stats(ctx context.Context) Stats {
	stats := Stats{
		Hits:   s.hits.Load(),
		Misses: s.misses.Load(),
	}

	var g errgroup.Group
	g.Go(func() error {
		stats.TotalKeys = len(s.store.Keys(ctx, "*"))
		return nil
	})
	g.Go(func() error {
		stats.MemoryUsage = s.store.MemoryUsage(ctx)
		return nil
	})
	g.Go(func() error {
		stats.Connected = s.store.Ping(ctx)
		return nil
	})
	_ = g.Wait()

	if stats.MemoryUsage == "" {
		stats.MemoryUsage = "N/A"
	}
	return stats
}

// ============================================
// User and school namespaces
// ============================================

func (s *Service) userPrefix(userID string) string {
	return s.cfg.UserPrefix + ":" + userID
}

func (s *Service) schoolPrefix(schoolID string) string {
	return s.cfg.SchoolPrefix + ":" + schoolID
}

// GetUserCache reads key from the user:<id> namespace
func (s *Service) GetUserCache(ctx context.Context, userID, key string, dest interface{}) bool {
	return s.Get(ctx, key, dest, WithPrefix(s.userPrefix(userID)))
}

// SetUserCache writes key into the user:<id> namespace
func (s *Service) SetUserCache(ctx context.Context, userID, key string, value interface{}, ttl time.Duration) error {
	return s.Set(ctx, key, value, WithPrefix(s.userPrefix(userID)), WithTTL(ttl))
}

// ClearUserCache drops every entry of the user
func (s *Service) ClearUserCache(ctx context.Context, userID string) int64 {
	return s.InvalidatePattern(ctx, s.userPrefix(userID)+":*")
}

// GetSchoolCache reads key from the school:<id> namespace
func (s *Service) GetSchoolCache(ctx context.Context, schoolID, key string, dest interface{}) bool {
	return s.Get(ctx, key, dest, WithPrefix(s.schoolPrefix(schoolID)))
}

// SetSchoolCache writes key into the school:<id> namespace
func (s *Service) SetSchoolCache(ctx context.Context, schoolID, key string, value interface{}, ttl time.Duration) error {
	return s.Set(ctx, key, value, WithPrefix(s.schoolPrefix(schoolID)), WithTTL(ttl))
}

// ClearSchoolCache drops every entry of the school
func (s *Service) ClearSchoolCache(ctx context.Context, schoolID string) int64 {
	return s.InvalidatePattern(ctx, s.schoolPrefix(schoolID)+":*")
}

// ============================================
// API responses and query results
// ============================================

// APIResponseKey "<METHOD>:<url>:<query>" with params query-encoded and
// sorted by name; maps, slices and structs are encoded with StableKey
func APIResponseKey(method, target string, params map[string]interface{}) string {
	query := make(url.Values, len(params))
	for name, v := range params {
		query.Set(name, paramValue(v))
	}
	return strings.ToUpper(method) + ":" + target + ":" + query.Encode()
}

func paramValue(v interface{}) string {
	switch reflect.Indirect(reflect.ValueOf(v)).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		return StableKey(v)
	}
	return fmt.Sprint(v)
}

// CacheAPIResponse stores a response under api:<key>; ttl <= 0 uses APIResponseTTL
func (s *Service) CacheAPIResponse(ctx context.Context, method, target string, params map[string]interface{}, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.cfg.APIResponseTTL
	}
	return s.Set(ctx, APIResponseKey(method, target, params), value, WithPrefix("api"), WithTTL(ttl))
}

// GetAPIResponse reads a cached response
func (s *Service) GetAPIResponse(ctx context.Context, method, target string, params map[string]interface{}, dest interface{}) bool {
	return s.Get(ctx, APIResponseKey(method, target, params), dest, WithPrefix("api"))
}

// QueryResultKey "<query>:<md5 hex of JSON(params)>"
func QueryResultKey(query string, params interface{}) (string, error) {
	data, err := json.Marshal(params)
	if err != nil {
		return "", ErrSerialize.WithMsg("query params are not serializable").Wrap(err)
	}
	sum := md5.Sum(data)
	return query + ":" + hex.EncodeToString(sum[:]), nil
}

// CacheQueryResult stores a result under query:<key>; ttl <= 0 uses QueryResultTTL
func (s *Service) CacheQueryResult(ctx context.Context, query string, params, value interface{}, ttl time.Duration) error {
	key, err := QueryResultKey(query, params)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = s.cfg.QueryResultTTL
	}
	return s.Set(ctx, key, value, WithPrefix("query"), WithTTL(ttl))
}

// GetQueryResult reads a cached result; unserializable params are a miss
func (s *Service) GetQueryResult(ctx context.Context, query string, params, dest interface{}) bool {
	key, err := QueryResultKey(query, params)
	if err != nil {
		s.log.WarnCtx(ctx, "query cache key failed", zap.String("query", query), zap.Error(err))
		return false
	}
	return s.Get(ctx, key, dest, WithPrefix("query"))
}

// IsSerializeError reports whether err came from a value that cannot be stored
func IsSerializeError(err error) bool {
	return errors.Is(err, ErrSerialize) || errors.Is(err, redis.ErrSerialize)
}
