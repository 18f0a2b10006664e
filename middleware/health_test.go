package middleware

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/Hycient195/academia-pro-cache/health"
	"github.com/Hycient195/academia-pro-cache/redis"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthRoutes(t *testing.T) {
	env := newTestEnv(t)
	agg := health.NewAggregator(0)
	agg.RegisterAdvisory(redis.NewHealthChecker(env.store))

	r := gin.New()
	RegisterHealthRoutes(r, agg)

	w := doRequest(r, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp health.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, health.StatusHealthy, resp.Status)

	w = doRequest(r, http.MethodGet, "/health/liveness", "")
	assert.Equal(t, http.StatusOK, w.Code)

	env.mr.Close()

	w = doRequest(r, http.MethodGet, "/health/readiness", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), string(health.StatusDegraded))
}
