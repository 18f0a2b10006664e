// Package httpx request binding and the JSON envelope of the admin API
package httpx

import (
	"github.com/Hycient195/academia-pro-cache/logger"
	"github.com/gin-gonic/gin"
)

const errorLoggingKey = "httpx:error_logging"

type errorLogging struct {
	log             *logger.CtxZapLogger
	enable          bool
	ignoreStatusMap map[int]bool
	fullErrorChain  bool
	logLevel        string
}

// ErrorLogging stores the logger and error logging policy on the gin context
// Without it HandleError only writes responses
func ErrorLogging(log *logger.CtxZapLogger, cfg ErrorLoggingConfig) gin.HandlerFunc {
	if log == nil {
		log = logger.NewNop()
	}
	ignore := make(map[int]bool, len(cfg.IgnoreHTTPStatus))
	for _, status := range cfg.IgnoreHTTPStatus {
		ignore[status] = true
	}
	el := errorLogging{
		log:             log,
		enable:          cfg.Enable,
		ignoreStatusMap: ignore,
		fullErrorChain:  cfg.FullErrorChain,
		logLevel:        cfg.LogLevel,
	}

	return func(c *gin.Context) {
		c.Set(errorLoggingKey, el)
		c.Next()
	}
}

func errorLoggingFrom(c *gin.Context) errorLogging {
	if v, ok := c.Get(errorLoggingKey); ok {
		if el, ok := v.(errorLogging); ok {
			return el
		}
	}
	return errorLogging{log: logger.NewNop()}
}
