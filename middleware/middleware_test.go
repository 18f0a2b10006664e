package middleware

import (
	"testing"

	"github.com/Hycient195/academia-pro-cache/cache"
	"github.com/Hycient195/academia-pro-cache/logger"
	"github.com/Hycient195/academia-pro-cache/redis"
	"github.com/Hycient195/academia-pro-cache/testutil"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	svc   *cache.Service
	store *redis.Store
	mr    *miniredis.Miniredis
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	mr, client := testutil.NewRedis(t)
	store := redis.NewStoreWithClient(client, redis.Config{}, logger.NewNop())
	svc, err := cache.NewService(store, cache.Config{}, logger.NewNop())
	require.NoError(t, err)
	return testEnv{svc: svc, store: store, mr: mr}
}
