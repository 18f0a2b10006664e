package middleware

import (
	"strings"
	"time"

	"github.com/Hycient195/academia-pro-cache/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLogConfig request log configuration
type RequestLogConfig struct {
	// SkipPaths exact paths that are not logged (e.g. /health)
	SkipPaths []string
}

// RequestLog writes one structured entry per request
// 5xx logs at error, 4xx at warn, everything else at info. The X-Cache
// header set by ResponseCache is included so hit ratios show up in logs.
func RequestLog(log *logger.CtxZapLogger, cfg RequestLogConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("body_size", c.Writer.Size()),
		}
		if cacheStatus := c.Writer.Header().Get(HeaderCache); cacheStatus != "" {
			fields = append(fields, zap.String("cache", strings.ToLower(cacheStatus)))
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate).String(); errs != "" {
			fields = append(fields, zap.String("error", errs))
		}

		ctx := c.Request.Context()
		switch {
		case status >= 500:
			log.ErrorCtx(ctx, "http request", fields...)
		case status >= 400:
			log.WarnCtx(ctx, "http request", fields...)
		default:
			log.InfoCtx(ctx, "http request", fields...)
		}
	}
}
