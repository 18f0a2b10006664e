package cache

import "context"

// CacheContext carries the identities that scope cached data
type CacheContext struct {
	UserID   string
	SchoolID string
}

type cacheContextKey struct{}

// WithCacheContext attaches cc to ctx
func WithCacheContext(ctx context.Context, cc CacheContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, cacheContextKey{}, cc)
}

// CacheContextFrom returns the attached CacheContext (zero value when absent)
func CacheContextFrom(ctx context.Context) CacheContext {
	if ctx == nil {
		return CacheContext{}
	}
	cc, _ := ctx.Value(cacheContextKey{}).(CacheContext)
	return cc
}

// WithUserScope sets the user id, keeping any school id already attached
func WithUserScope(ctx context.Context, userID string) context.Context {
	cc := CacheContextFrom(ctx)
	cc.UserID = userID
	return WithCacheContext(ctx, cc)
}

// WithSchoolScope sets the school id, keeping any user id already attached
func WithSchoolScope(ctx context.Context, schoolID string) context.Context {
	cc := CacheContextFrom(ctx)
	cc.SchoolID = schoolID
	return WithCacheContext(ctx, cc)
}
