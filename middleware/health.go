package middleware

import (
	"net/http"

	"github.com/Hycient195/academia-pro-cache/health"
	"github.com/gin-gonic/gin"
)

// RegisterHealthRoutes mounts /health, /health/liveness and /health/readiness
// A degraded cache still answers 200 on /health and readiness
func RegisterHealthRoutes(router gin.IRouter, agg *health.Aggregator) {
	if agg == nil {
		return
	}

	router.GET("/health", func(c *gin.Context) {
		resp := agg.Check(c.Request.Context())
		status := http.StatusOK
		if resp.Status == health.StatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, resp)
	})

	router.GET("/health/liveness", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "alive"})
	})

	router.GET("/health/readiness", func(c *gin.Context) {
		resp := agg.Check(c.Request.Context())
		status := http.StatusOK
		if resp.Status == health.StatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": resp.Status})
	})
}
