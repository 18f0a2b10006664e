package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeChecker struct {
	name  string
	err   error
	delay time.Duration
}

func (f fakeChecker) Name() string { return f.name }

func (f fakeChecker) Check(ctx context.Context) error {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return f.err
}

func TestAggregator_NoChecksIsHealthy(t *testing.T) {
	resp := NewAggregator(0).Check(context.Background())
	assert.True(t, resp.IsHealthy())
	assert.Empty(t, resp.Checks)
}

func TestAggregator_AdvisoryFailureDegrades(t *testing.T) {
	agg := NewAggregator(time.Second)
	agg.Register(fakeChecker{name: "config"})
	agg.RegisterAdvisory(fakeChecker{name: "redis", err: errors.New("connection refused")})
	agg.SetMetadata("service", "academia-cache")

	resp := agg.Check(context.Background())

	assert.Equal(t, StatusDegraded, resp.Status)
	assert.Equal(t, StatusHealthy, resp.Checks["config"].Status)
	assert.Equal(t, StatusDegraded, resp.Checks["redis"].Status)
	assert.Equal(t, "connection refused", resp.Checks["redis"].Error)
	assert.Equal(t, "academia-cache", resp.Metadata["service"])
}

func TestAggregator_CriticalFailureIsUnhealthy(t *testing.T) {
	agg := NewAggregator(time.Second)
	agg.RegisterAdvisory(fakeChecker{name: "redis", err: errors.New("down")})
	agg.Register(fakeChecker{name: "db", err: errors.New("down")})

	assert.Equal(t, StatusUnhealthy, agg.Check(context.Background()).Status)
}

func TestAggregator_Timeout(t *testing.T) {
	agg := NewAggregator(50 * time.Millisecond)
	agg.Register(fakeChecker{name: "slow", delay: time.Second})

	resp := agg.Check(context.Background())

	assert.Equal(t, StatusUnhealthy, resp.Status)
	assert.Contains(t, resp.Checks["slow"].Error, "deadline exceeded")
}
