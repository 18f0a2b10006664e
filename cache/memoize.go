package cache

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Func is the shape of an operation the combinators wrap
type Func[A, R any] func(ctx context.Context, arg A) (R, error)

// ScopedFunc takes an explicit scope id (user or school)
type ScopedFunc[A, R any] func(ctx context.Context, scopeID string, arg A) (R, error)

// KeyFunc derives a cache key from the argument
type KeyFunc[A any] func(arg A) string

// PatternFunc derives an invalidation pattern from the argument
type PatternFunc[A any] func(arg A) string

// Pattern returns a PatternFunc that always yields pattern
func Pattern[A any](pattern string) PatternFunc[A] {
	return func(A) string { return pattern }
}

// Memoize caches fn under "<keyPrefix>:<name>:<StableKey(arg)>"
// ttl <= 0 uses the service default. A nil service runs fn uncached.
func Memoize[A, R any](svc *Service, keyPrefix, name string, ttl time.Duration, fn Func[A, R]) Func[A, R] {
	return func(ctx context.Context, arg A) (R, error) {
		key := name + ":" + StableKey(arg)
		return GetOrSet(ctx, svc, key, func(ctx context.Context) (R, error) {
			return fn(ctx, arg)
		}, WithPrefix(keyPrefix), WithTTL(ttl))
	}
}

// MemoizeWithKey caches fn under the key produced by keyFn (in the default namespace)
func MemoizeWithKey[A, R any](svc *Service, keyFn KeyFunc[A], ttl time.Duration, fn Func[A, R]) Func[A, R] {
	return func(ctx context.Context, arg A) (R, error) {
		return GetOrSet(ctx, svc, keyFn(arg), func(ctx context.Context) (R, error) {
			return fn(ctx, arg)
		}, WithTTL(ttl))
	}
}

// UserScoped caches fn in the user:<id> namespace
// The id is the scopeID argument, else the CacheContext user; without one fn runs uncached
func UserScoped[A, R any](svc *Service, name string, ttl time.Duration, fn ScopedFunc[A, R]) ScopedFunc[A, R] {
	return scoped(svc, name, ttl, fn, func(cc CacheContext) string { return cc.UserID }, func(id string) string {
		return svc.userPrefix(id)
	})
}

// SchoolScoped caches fn in the school:<id> namespace
func SchoolScoped[A, R any](svc *Service, name string, ttl time.Duration, fn ScopedFunc[A, R]) ScopedFunc[A, R] {
	return scoped(svc, name, ttl, fn, func(cc CacheContext) string { return cc.SchoolID }, func(id string) string {
		return svc.schoolPrefix(id)
	})
}

func scoped[A, R any](svc *Service, name string, ttl time.Duration, fn ScopedFunc[A, R],
	fromContext func(CacheContext) string, prefix func(id string) string) ScopedFunc[A, R] {
	return func(ctx context.Context, scopeID string, arg A) (R, error) {
		id := scopeID
		if id == "" {
			id = fromContext(CacheContextFrom(ctx))
		}
		if svc == nil || id == "" {
			return fn(ctx, scopeID, arg)
		}

		key := name + ":" + StableKey(arg)
		return GetOrSet(ctx, svc, key, func(ctx context.Context) (R, error) {
			return fn(ctx, id, arg)
		}, WithPrefix(prefix(id)), WithTTL(ttl))
	}
}

// InvalidateAfter invalidates pattern(arg) once fn succeeds; a failed fn invalidates nothing
func InvalidateAfter[A, R any](svc *Service, pattern PatternFunc[A], fn Func[A, R]) Func[A, R] {
	return func(ctx context.Context, arg A) (R, error) {
		result, err := fn(ctx, arg)
		if err != nil || svc == nil {
			return result, err
		}

		p := pattern(arg)
		if p == "" {
			svc.log.DebugCtx(ctx, "empty invalidation pattern skipped")
			return result, nil
		}
		svc.InvalidatePattern(ctx, p)
		return result, nil
	}
}

// InvalidateUserAfter invalidates the whole user namespace once fn succeeds
func InvalidateUserAfter[A, R any](svc *Service, fn ScopedFunc[A, R]) ScopedFunc[A, R] {
	return func(ctx context.Context, scopeID string, arg A) (R, error) {
		result, err := fn(ctx, scopeID, arg)
		if err != nil || svc == nil {
			return result, err
		}
		id := scopeID
		if id == "" {
			id = CacheContextFrom(ctx).UserID
		}
		if id == "" {
			svc.log.DebugCtx(ctx, "user invalidation skipped, no user scope", zap.String("op", "invalidate_user"))
			return result, nil
		}
		svc.ClearUserCache(ctx, id)
		return result, nil
	}
}
