package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Hycient195/academia-pro-cache/di"
	"github.com/Hycient195/academia-pro-cache/httpx"
	"github.com/Hycient195/academia-pro-cache/jobs"
	"github.com/Hycient195/academia-pro-cache/testutil"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func pointRedisAt(t *testing.T, mr *miniredis.Miniredis) {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("REDIS_HOST", mr.Host())
	t.Setenv("REDIS_PORT", mr.Port())
}

func newTestRouter(t *testing.T, mr *miniredis.Miniredis) (*gin.Engine, *di.Application) {
	t.Helper()
	pointRedisAt(t, mr)

	app := di.NewApplication(di.WithConfigPath(t.TempDir()), di.WithEnvPrefix("ACADEMIA"))
	require.NoError(t, app.Setup())
	t.Cleanup(func() { _ = app.Shutdown(context.Background()) })

	deps, err := resolveRouterDeps(app)
	require.NoError(t, err)
	return newRouter(deps), app
}

func serve(r http.Handler, method, target string) (*httptest.ResponseRecorder, httpx.Response) {
	rh := testutil.NewRequest(method, target).Do(r)
	var resp httpx.Response
	_ = rh.JSON(&resp)
	return rh.Recorder, resp
}

func TestAdmin_Stats(t *testing.T) {
	mr := miniredis.RunT(t)
	r, app := newTestRouter(t, mr)
	svc, err := app.CacheService()
	require.NoError(t, err)
	require.NoError(t, svc.Set(context.Background(), "dashboard:1", 1))

	w, resp := serve(r, http.MethodGet, "/admin/cache/stats")
	require.Equal(t, http.StatusOK, w.Code)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, true, data["connected"])
	assert.Equal(t, float64(1), data["total_keys"])
}

func TestAdmin_Invalidate(t *testing.T) {
	mr := miniredis.RunT(t)
	r, app := newTestRouter(t, mr)
	svc, _ := app.CacheService()
	ctx := context.Background()
	require.NoError(t, svc.Set(ctx, "report:1", 1))
	require.NoError(t, svc.Set(ctx, "report:2", 2))
	require.NoError(t, svc.Set(ctx, "other", 3))

	w, resp := serve(r, http.MethodDelete, "/admin/cache?pattern=cache:report:*")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), resp.Data.(map[string]interface{})["deleted"])
	assert.True(t, mr.Exists("academia_pro:cache:other"))

	w, resp = serve(r, http.MethodDelete, "/admin/cache")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp.Msg, "pattern")

	w, resp = serve(r, http.MethodDelete, "/admin/cache?all=true")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp.Data.(map[string]interface{})["cleared"])
	assert.Empty(t, mr.Keys())
}

func TestAdmin_ClearScopes(t *testing.T) {
	mr := miniredis.RunT(t)
	r, app := newTestRouter(t, mr)
	svc, _ := app.CacheService()
	ctx := context.Background()
	require.NoError(t, svc.SetUserCache(ctx, "7", "profile", "x", 0))
	require.NoError(t, svc.SetSchoolCache(ctx, "3", "summary", "y", 0))
	require.NoError(t, svc.SetSchoolCache(ctx, "3", "roster", "z", 0))

	_, resp := serve(r, http.MethodDelete, "/admin/cache/users/7")
	assert.Equal(t, float64(1), resp.Data.(map[string]interface{})["deleted"])

	_, resp = serve(r, http.MethodDelete, "/admin/cache/schools/3")
	assert.Equal(t, float64(2), resp.Data.(map[string]interface{})["deleted"])
}

func TestRouter_HealthAndNoRoute(t *testing.T) {
	mr := miniredis.RunT(t)
	r, _ := newTestRouter(t, mr)

	w, _ := serve(r, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))

	w, _ = serve(r, http.MethodGet, "/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = serve(r, http.MethodPost, "/admin/cache/stats")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--config", t.TempDir()}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCLI_PingGetDelInvalidate(t *testing.T) {
	mr := miniredis.RunT(t)
	pointRedisAt(t, mr)
	require.NoError(t, mr.Set("academia_pro:cache:dashboard:1", `{"total":5}`))
	require.NoError(t, mr.Set("academia_pro:reports:weekly", `"w"`))

	out, err := runCLI(t, "ping")
	require.NoError(t, err)
	assert.Equal(t, "PONG\n", out)

	out, err = runCLI(t, "get", "dashboard:1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":5}`, out)

	out, err = runCLI(t, "get", "weekly", "--prefix", "reports")
	require.NoError(t, err)
	assert.JSONEq(t, `"w"`, out)

	out, err = runCLI(t, "get", "missing")
	require.NoError(t, err)
	assert.Equal(t, "(nil)\n", out)

	_, err = runCLI(t, "del", "dashboard:1")
	require.NoError(t, err)
	assert.False(t, mr.Exists("academia_pro:cache:dashboard:1"))

	out, err = runCLI(t, "invalidate", "reports:*")
	require.NoError(t, err)
	assert.Equal(t, "deleted 1 keys\n", out)
}

func TestCLI_FlushRequiresConfirmation(t *testing.T) {
	mr := miniredis.RunT(t)
	pointRedisAt(t, mr)
	require.NoError(t, mr.Set("academia_pro:cache:a", "1"))

	_, err := runCLI(t, "flush")
	require.Error(t, err)
	assert.True(t, mr.Exists("academia_pro:cache:a"))

	_, err = runCLI(t, "flush", "--yes")
	require.NoError(t, err)
	assert.Empty(t, mr.Keys())
}

func TestCLI_FlagOverridesEnv(t *testing.T) {
	mr := miniredis.RunT(t)
	pointRedisAt(t, mr)
	t.Setenv("REDIS_PORT", "1")

	_, err := runCLI(t, "ping")
	require.Error(t, err)

	out, err := runCLI(t, "--redis-port", mr.Port(), "ping")
	require.NoError(t, err)
	assert.Equal(t, "PONG\n", out)
}

func TestCLI_Stats(t *testing.T) {
	mr := miniredis.RunT(t)
	pointRedisAt(t, mr)
	require.NoError(t, mr.Set("academia_pro:cache:a", "1"))

	out, err := runCLI(t, "stats")
	require.NoError(t, err)

	var stats map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, float64(1), stats["total_keys"])
	assert.Equal(t, true, stats["connected"])
}

func TestRouter_MetricsEnabled(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("ACADEMIA_METRICS_ENABLED", "true")
	t.Setenv("ACADEMIA_METRICS_INTERVAL", "1h")
	r, _ := newTestRouter(t, mr)

	w, _ := serve(r, http.MethodGet, "/admin/cache/stats")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStartJobs_RegistersStatsReport(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("ACADEMIA_JOBS_STATS_INTERVAL", "1h")
	_, app := newTestRouter(t, mr)

	svc, err := app.CacheService()
	require.NoError(t, err)
	require.NoError(t, startJobs(app, svc))

	sched := do.MustInvoke[*jobs.Scheduler](app.Injector())
	require.Len(t, sched.Jobs(), 1)
	assert.Equal(t, jobs.StatsJobName, sched.Jobs()[0].Name())
}
