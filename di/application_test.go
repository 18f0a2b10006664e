package di

import (
	"context"
	"testing"

	"github.com/Hycient195/academia-pro-cache/cache"
	"github.com/Hycient195/academia-pro-cache/health"
	"github.com/Hycient195/academia-pro-cache/logger"
	"github.com/Hycient195/academia-pro-cache/redis"
	"github.com/alicebob/miniredis/v2"
	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pointRedisAt(t *testing.T, mr *miniredis.Miniredis) {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("REDIS_HOST", mr.Host())
	t.Setenv("REDIS_PORT", mr.Port())
}

func TestAppState_String(t *testing.T) {
	assert.Equal(t, "Init", StateInit.String())
	assert.Equal(t, "Running", StateRunning.String())
	assert.Equal(t, "Stopped", StateStopped.String())
	assert.Equal(t, "Unknown", AppState(99).String())
}

func TestApplication_Lifecycle(t *testing.T) {
	mr := miniredis.RunT(t)
	pointRedisAt(t, mr)

	var readyCalled, shutdownCalled bool
	app := NewApplication(
		WithConfigPath(t.TempDir()),
		WithName("cache-test"),
		WithOnReady(func(*Application) error { readyCalled = true; return nil }),
		WithOnShutdown(func(context.Context) error { shutdownCalled = true; return nil }),
	)
	assert.Equal(t, StateInit, app.State())

	require.NoError(t, app.Setup())
	require.NotNil(t, app.Config())
	assert.Equal(t, mr.Host(), app.Config().Redis.Host)
	assert.NotNil(t, app.Logger())

	require.NoError(t, app.Start())
	assert.Equal(t, StateRunning, app.State())
	assert.True(t, readyCalled)

	svc, err := app.CacheService()
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, svc.Set(ctx, "dashboard:1", map[string]int{"total": 3}))
	assert.True(t, mr.Exists("academia_pro:cache:dashboard:1"))

	require.NoError(t, app.Shutdown(ctx))
	assert.Equal(t, StateStopped, app.State())
	assert.True(t, shutdownCalled)
	assert.Error(t, app.Context().Err())
}

func TestApplication_StartsWithRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	pointRedisAt(t, mr)
	mr.Close()

	app := NewApplication(WithConfigPath(t.TempDir()))
	require.NoError(t, app.Setup())
	require.NoError(t, app.Start())

	svc, err := app.CacheService()
	require.NoError(t, err)
	v, ok := cache.Get[string](context.Background(), svc, "missing")
	assert.False(t, ok)
	assert.Empty(t, v)

	require.NoError(t, app.Shutdown(context.Background()))
}

func TestApplication_SetupRejectsInvalidConfig(t *testing.T) {
	mr := miniredis.RunT(t)
	pointRedisAt(t, mr)
	t.Setenv("REDIS_DB", "16")

	app := NewApplication(WithConfigPath(t.TempDir()))
	err := app.Setup()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestProviders_Graph(t *testing.T) {
	mr := miniredis.RunT(t)
	pointRedisAt(t, mr)

	injector := NewContainer(ConfigOptions{ConfigPath: t.TempDir()})
	defer injector.Shutdown()

	metrics, err := do.Invoke[*redis.StoreMetrics](injector)
	require.NoError(t, err)
	assert.Nil(t, metrics, "metrics are disabled by default")

	store := do.MustInvoke[*redis.Store](injector)
	assert.Equal(t, "academia_pro:", store.Prefix())

	agg := do.MustInvoke[*health.Aggregator](injector)
	resp := agg.Check(context.Background())
	assert.Equal(t, health.StatusHealthy, resp.Status)
	assert.Contains(t, resp.Checks, "redis")
	assert.Equal(t, mr.Addr(), resp.Metadata["redis"])
}

func TestProvideLoggerManager_DefaultsWithoutConfig(t *testing.T) {
	injector := do.New()
	defer injector.Shutdown()
	do.Provide(injector, ProvideLoggerManager)
	do.Provide(injector, ProvideCtxLogger("orders"))

	log := do.MustInvoke[*logger.CtxZapLogger](injector)
	assert.Equal(t, "orders", log.Module())
}
