package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/Hycient195/academia-pro-cache/logger"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const scanBatch = 100

// Store best-effort key-value store over Redis
// Every physical key is KeyPrefix + logical key. Verbs never return backend
// errors: failures are logged and converted to a neutral value.
type Store struct {
	client  goredis.UniversalClient
	prefix  string
	ttl     time.Duration
	log     *logger.CtxZapLogger
	breaker *gobreaker.CircuitBreaker
	owned   bool // client created by NewStore, closed by Close
}

// Option configures a Store
type Option func(*Store)

// WithMetrics records every command through a go-redis hook
func WithMetrics(m *StoreMetrics) Option {
	return func(s *Store) {
		if m == nil {
			return
		}
		s.client.AddHook(NewMetricsHook(m))
		m.observePool(s.client)
	}
}

// NewStore creates the client described by cfg; it does not dial
// An unreachable backend is not a construction error
func NewStore(cfg Config, log *logger.CtxZapLogger, opts ...Option) (*Store, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, ErrInvalidConfig.Wrap(err)
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	s := NewStoreWithClient(client, cfg, log, opts...)
	s.owned = true
	return s, nil
}

// NewStoreWithClient wraps an existing client (tests, shared clients)
// The caller keeps ownership of the client
func NewStoreWithClient(client goredis.UniversalClient, cfg Config, log *logger.CtxZapLogger, opts ...Option) *Store {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.NewNop()
	}

	s := &Store{
		client: client,
		prefix: cfg.KeyPrefix,
		ttl:    cfg.DefaultTTL(),
		log:    log,
	}
	if cfg.Breaker.Enabled {
		s.breaker = newBreaker(cfg.Breaker, log)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newBreaker(cfg BreakerConfig, log *logger.CtxZapLogger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "redis",
		MaxRequests: cfg.HalfOpenRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("redis circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		// A miss is a successful round-trip
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, goredis.Nil)
		},
	})
}

// Prefix global key prefix
func (s *Store) Prefix() string {
	return s.prefix
}

// DefaultTTL applied when a write passes ttl <= 0
func (s *Store) DefaultTTL() time.Duration {
	return s.ttl
}

// Client underlying go-redis client
func (s *Store) Client() goredis.UniversalClient {
	return s.client
}

func (s *Store) key(k string) string {
	return s.prefix + k
}

func (s *Store) expiry(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return s.ttl
	}
	return ttl
}

// exec runs fn inside the failure boundary and logs what went wrong
// The error is returned only so the verb can pick its neutral value
func (s *Store) exec(ctx context.Context, op, key string, fn func() error) error {
	var err error
	if s.breaker != nil {
		_, err = s.breaker.Execute(func() (interface{}, error) {
			return nil, fn()
		})
	} else {
		err = fn()
	}

	switch {
	case err == nil, errors.Is(err, goredis.Nil):
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		s.log.DebugCtx(ctx, "redis command rejected by breaker", zap.String("op", op), zap.String("key", key))
	default:
		s.log.WarnCtx(ctx, "redis command failed", zap.String("op", op), zap.String("key", key), zap.Error(err))
	}
	return err
}

// ============================================
// Strings
// ============================================

// Get returns the value and whether it was found
func (s *Store) Get(ctx context.Context, key string) (string, bool) {
	var val string
	err := s.exec(ctx, "get", key, func() (err error) {
		val, err = s.client.Get(ctx, s.key(key)).Result()
		return err
	})
	if err != nil {
		return "", false
	}
	return val, true
}

// Set writes value; ttl <= 0 applies the default TTL
func (s *Store) Set(ctx context.Context, key, value string, ttl time.Duration) {
	_ = s.exec(ctx, "set", key, func() error {
		return s.client.Set(ctx, s.key(key), value, s.expiry(ttl)).Err()
	})
}

// Del removes keys
func (s *Store) Del(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	physical := make([]string, len(keys))
	for i, k := range keys {
		physical[i] = s.key(k)
	}
	_ = s.exec(ctx, "del", strings.Join(keys, ","), func() error {
		return s.client.Del(ctx, physical...).Err()
	})
}

// Exists reports whether the key is present
func (s *Store) Exists(ctx context.Context, key string) bool {
	var n int64
	err := s.exec(ctx, "exists", key, func() (err error) {
		n, err = s.client.Exists(ctx, s.key(key)).Result()
		return err
	})
	return err == nil && n > 0
}

// TTL remaining seconds; -1 when the key has no expiry, -2 when missing or unknown
func (s *Store) TTL(ctx context.Context, key string) int64 {
	var d time.Duration
	err := s.exec(ctx, "ttl", key, func() (err error) {
		d, err = s.client.TTL(ctx, s.key(key)).Result()
		return err
	})
	if err != nil {
		return -2
	}
	// go-redis passes -1/-2 through as raw durations
	if d < 0 {
		return int64(d)
	}
	return int64(d / time.Second)
}

// Expire sets or overwrites the TTL of an existing key
// A non-positive ttl is ignored; Redis would delete the key instead
func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration) {
	if ttl <= 0 {
		s.log.DebugCtx(ctx, "non-positive ttl ignored", zap.String("key", key), zap.Duration("ttl", ttl))
		return
	}
	_ = s.exec(ctx, "expire", key, func() error {
		return s.client.Expire(ctx, s.key(key), ttl).Err()
	})
}

// Keys returns the logical keys matching a glob pattern
// Uses SCAN, still a maintenance primitive rather than a hot-path call
func (s *Store) Keys(ctx context.Context, pattern string) []string {
	var physical []string
	err := s.exec(ctx, "scan", pattern, func() (err error) {
		physical, err = s.scan(ctx, s.key(pattern))
		return err
	})
	if err != nil {
		return nil
	}

	keys := make([]string, len(physical))
	for i, k := range physical {
		keys[i] = strings.TrimPrefix(k, s.prefix)
	}
	return keys
}

// InvalidatePattern deletes every key matching the pattern in one DEL
// Scan and delete are not atomic, keys written in between may survive
func (s *Store) InvalidatePattern(ctx context.Context, pattern string) int64 {
	var deleted int64
	err := s.exec(ctx, "invalidate", pattern, func() error {
		physical, err := s.scan(ctx, s.key(pattern))
		if err != nil || len(physical) == 0 {
			return err
		}
		deleted, err = s.client.Del(ctx, physical...).Result()
		return err
	})
	if err != nil {
		return 0
	}
	if deleted > 0 {
		s.log.DebugCtx(ctx, "cache pattern invalidated", zap.String("pattern", pattern), zap.Int64("deleted", deleted))
	}
	return deleted
}

func (s *Store) scan(ctx context.Context, match string) ([]string, error) {
	var (
		cursor uint64
		keys   []string
	)
	for {
		batch, next, err := s.client.Scan(ctx, cursor, match, scanBatch).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}

// ============================================
// Hashes
// ============================================

// HGet returns a hash field
func (s *Store) HGet(ctx context.Context, key, field string) (string, bool) {
	var val string
	err := s.exec(ctx, "hget", key, func() (err error) {
		val, err = s.client.HGet(ctx, s.key(key), field).Result()
		return err
	})
	if err != nil {
		return "", false
	}
	return val, true
}

// HSet sets a hash field
func (s *Store) HSet(ctx context.Context, key, field, value string) {
	_ = s.exec(ctx, "hset", key, func() error {
		return s.client.HSet(ctx, s.key(key), field, value).Err()
	})
}

// HGetAll returns every field; empty on miss or failure
func (s *Store) HGetAll(ctx context.Context, key string) map[string]string {
	var val map[string]string
	err := s.exec(ctx, "hgetall", key, func() (err error) {
		val, err = s.client.HGetAll(ctx, s.key(key)).Result()
		return err
	})
	if err != nil || val == nil {
		return map[string]string{}
	}
	return val
}

// HDel removes hash fields
func (s *Store) HDel(ctx context.Context, key string, fields ...string) {
	_ = s.exec(ctx, "hdel", key, func() error {
		return s.client.HDel(ctx, s.key(key), fields...).Err()
	})
}

// ============================================
// Lists
// ============================================

// LPush prepends values
func (s *Store) LPush(ctx context.Context, key string, values ...string) {
	_ = s.exec(ctx, "lpush", key, func() error {
		return s.client.LPush(ctx, s.key(key), toArgs(values)...).Err()
	})
}

// RPush appends values
func (s *Store) RPush(ctx context.Context, key string, values ...string) {
	_ = s.exec(ctx, "rpush", key, func() error {
		return s.client.RPush(ctx, s.key(key), toArgs(values)...).Err()
	})
}

// LRange returns list elements between start and stop (inclusive)
func (s *Store) LRange(ctx context.Context, key string, start, stop int64) []string {
	var val []string
	err := s.exec(ctx, "lrange", key, func() (err error) {
		val, err = s.client.LRange(ctx, s.key(key), start, stop).Result()
		return err
	})
	if err != nil {
		return []string{}
	}
	return val
}

// LPop removes and returns the first element
func (s *Store) LPop(ctx context.Context, key string) (string, bool) {
	var val string
	err := s.exec(ctx, "lpop", key, func() (err error) {
		val, err = s.client.LPop(ctx, s.key(key)).Result()
		return err
	})
	if err != nil {
		return "", false
	}
	return val, true
}

// ============================================
// Sets
// ============================================

// SAdd adds members
func (s *Store) SAdd(ctx context.Context, key string, members ...string) {
	_ = s.exec(ctx, "sadd", key, func() error {
		return s.client.SAdd(ctx, s.key(key), toArgs(members)...).Err()
	})
}

// SRem removes members
func (s *Store) SRem(ctx context.Context, key string, members ...string) {
	_ = s.exec(ctx, "srem", key, func() error {
		return s.client.SRem(ctx, s.key(key), toArgs(members)...).Err()
	})
}

// SMembers returns every member
func (s *Store) SMembers(ctx context.Context, key string) []string {
	var val []string
	err := s.exec(ctx, "smembers", key, func() (err error) {
		val, err = s.client.SMembers(ctx, s.key(key)).Result()
		return err
	})
	if err != nil {
		return []string{}
	}
	return val
}

// SIsMember reports set membership
func (s *Store) SIsMember(ctx context.Context, key, member string) bool {
	var ok bool
	err := s.exec(ctx, "sismember", key, func() (err error) {
		ok, err = s.client.SIsMember(ctx, s.key(key), member).Result()
		return err
	})
	return err == nil && ok
}

func toArgs(values []string) []interface{} {
	args := make([]interface{}, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

// ============================================
// Server
// ============================================

// FlushDB clears the whole database, not only the prefixed keyspace
func (s *Store) FlushDB(ctx context.Context) {
	s.log.WarnCtx(ctx, "flushing redis database")
	_ = s.exec(ctx, "flushdb", "*", func() error {
		return s.client.FlushDB(ctx).Err()
	})
}

// Ping reports whether the backend answers
func (s *Store) Ping(ctx context.Context) bool {
	return s.exec(ctx, "ping", "", func() error {
		return s.client.Ping(ctx).Err()
	}) == nil
}

// MemoryUsage returns used_memory_human from INFO memory, "" when unavailable
func (s *Store) MemoryUsage(ctx context.Context) string {
	var info string
	err := s.exec(ctx, "info", "memory", func() (err error) {
		info, err = s.client.Info(ctx, "memory").Result()
		return err
	})
	if err != nil {
		return ""
	}
	return parseInfoField(info, "used_memory_human")
}

func parseInfoField(info, field string) string {
	for _, line := range strings.Split(info, "\n") {
		name, value, ok := strings.Cut(strings.TrimSpace(line), ":")
		if ok && name == field {
			return value
		}
	}
	return ""
}

// ============================================
// JSON
// ============================================

// SetJSON encodes v and writes it
// Only an encoding failure is returned (ErrSerialize), backend failures are absorbed
func (s *Store) SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return ErrSerialize.Wrap(err)
	}
	s.Set(ctx, key, string(data), ttl)
	return nil
}

// GetJSON decodes the stored value into dest
// false on miss, backend failure, stored JSON null or decode failure
func (s *Store) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	raw, ok := s.Get(ctx, key)
	if !ok || raw == "null" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		s.log.WarnCtx(ctx, "cached value is not valid JSON", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// ============================================
// Lifecycle
// ============================================

// Close releases the client when the store created it
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}

// Shutdown is called by the DI container on process exit
func (s *Store) Shutdown() error {
	s.log.Info("closing redis store")
	return s.Close()
}
