package redis

import (
	"context"
	"errors"
	"net"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// MetricsHook implements goredis.Hook and feeds StoreMetrics
type MetricsHook struct {
	metrics *StoreMetrics
}

// NewMetricsHook creates the hook
func NewMetricsHook(metrics *StoreMetrics) *MetricsHook {
	return &MetricsHook{metrics: metrics}
}

// DialHook passes through
func (h *MetricsHook) DialHook(next goredis.DialHook) goredis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

// ProcessHook records a single command
func (h *MetricsHook) ProcessHook(next goredis.ProcessHook) goredis.ProcessHook {
	return func(ctx context.Context, cmd goredis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		h.record(ctx, cmd.Name(), time.Since(start), err)
		return err
	}
}

// ProcessPipelineHook records each command of a pipeline
func (h *MetricsHook) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []goredis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		duration := time.Since(start)
		for _, cmd := range cmds {
			h.record(ctx, cmd.Name(), duration, cmd.Err())
		}
		return err
	}
}

func (h *MetricsHook) record(ctx context.Context, name string, duration time.Duration, err error) {
	miss := errors.Is(err, goredis.Nil)
	if miss {
		err = nil
	}
	h.metrics.RecordCommand(ctx, name, duration, err)

	if name != "get" {
		return
	}
	if miss {
		h.metrics.RecordMiss(ctx)
	} else if err == nil {
		h.metrics.RecordHit(ctx)
	}
}
