package redis

import (
	"context"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// StoreMetrics OpenTelemetry instruments for store commands
type StoreMetrics struct {
	commandsTotal   metric.Int64Counter
	commandDuration metric.Float64Histogram
	errorsTotal     metric.Int64Counter
	hits            metric.Int64Counter
	misses          metric.Int64Counter

	meter metric.Meter
	mu    sync.Mutex
	pools []poolStatser
}

type poolStatser interface {
	PoolStats() *goredis.PoolStats
}

// NewStoreMetrics registers the store instruments on meter
func NewStoreMetrics(meter metric.Meter) (*StoreMetrics, error) {
	m := &StoreMetrics{meter: meter}
	var err error

	m.commandsTotal, err = meter.Int64Counter(
		"cache_store_commands_total",
		metric.WithDescription("Total number of Redis commands executed by the cache store"),
		metric.WithUnit("{command}"),
	)
	if err != nil {
		return nil, err
	}

	m.commandDuration, err = meter.Float64Histogram(
		"cache_store_command_duration_seconds",
		metric.WithDescription("Redis command duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.errorsTotal, err = meter.Int64Counter(
		"cache_store_errors_total",
		metric.WithDescription("Total number of failed Redis commands"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	m.hits, err = meter.Int64Counter(
		"cache_store_hits_total",
		metric.WithDescription("GET commands that found a value"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, err
	}

	m.misses, err = meter.Int64Counter(
		"cache_store_misses_total",
		metric.WithDescription("GET commands that found nothing"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, err
	}

	_, err = meter.Int64ObservableGauge(
		"cache_store_connections_idle",
		metric.WithDescription("Idle connections in the Redis pool"),
		metric.WithUnit("{connection}"),
		metric.WithInt64Callback(m.collectIdle),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *StoreMetrics) observePool(client goredis.UniversalClient) {
	p, ok := client.(poolStatser)
	if !ok {
		return
	}
	m.mu.Lock()
	m.pools = append(m.pools, p)
	m.mu.Unlock()
}

func (m *StoreMetrics) collectIdle(_ context.Context, observer metric.Int64Observer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var idle int64
	for _, p := range m.pools {
		if stats := p.PoolStats(); stats != nil {
			idle += int64(stats.IdleConns)
		}
	}
	observer.Observe(idle)
	return nil
}

// RecordCommand records one command execution
func (m *StoreMetrics) RecordCommand(ctx context.Context, command string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("command", command))
	m.commandsTotal.Add(ctx, 1, attrs)
	m.commandDuration.Record(ctx, duration.Seconds(), attrs)
	if err != nil {
		m.errorsTotal.Add(ctx, 1, attrs)
	}
}

// RecordHit records a GET hit
func (m *StoreMetrics) RecordHit(ctx context.Context) {
	m.hits.Add(ctx, 1)
}

// RecordMiss records a GET miss
func (m *StoreMetrics) RecordMiss(ctx context.Context) {
	m.misses.Add(ctx, 1)
}
