package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Hycient195/academia-pro-cache/cache"
	"github.com/Hycient195/academia-pro-cache/logger"
	"github.com/go-co-op/gocron/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStats struct {
	calls atomic.Int32
}

func (f *fakeStats) Stats(ctx context.Context) cache.Stats {
	f.calls.Add(1)
	return cache.Stats{TotalKeys: 4, MemoryUsage: "1.2M", Connected: true, Hits: 3, Misses: 1}
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.StatsEnabled())
	assert.NoError(t, cfg.Validate())

	cfg.StatsInterval = 10 * time.Millisecond
	assert.Error(t, cfg.Validate())

	cfg.StatsInterval = time.Minute
	assert.NoError(t, cfg.Validate())
	assert.True(t, cfg.StatsEnabled())
}

func TestScheduler_StatsReportDisabled(t *testing.T) {
	s, err := NewScheduler(Config{}, nil)
	require.NoError(t, err)

	job, err := s.RegisterStatsReport(&fakeStats{})
	require.NoError(t, err)
	assert.Nil(t, job)
	assert.Empty(t, s.Jobs())
}

func TestScheduler_StatsReportLogs(t *testing.T) {
	log, logs := logger.NewTestLogger()
	s, err := NewScheduler(Config{StatsInterval: time.Hour}, log)
	require.NoError(t, err)

	src := &fakeStats{}
	job, err := s.RegisterStatsReport(src)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, StatsJobName, job.Name())

	s.Start()
	t.Cleanup(func() { _ = s.Shutdown() })

	require.NoError(t, job.RunNow())
	require.Eventually(t, func() bool {
		return logs.FilterMessage("cache stats").Len() == 1
	}, 2*time.Second, 10*time.Millisecond)

	entry := logs.FilterMessage("cache stats").All()[0]
	assert.Equal(t, int64(4), entry.ContextMap()["total_keys"])
	assert.Equal(t, true, entry.ContextMap()["connected"])
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestScheduler_CronExpression(t *testing.T) {
	s, err := NewScheduler(Config{StatsCron: "*/5 * * * *", StatsInterval: time.Hour}, nil)
	require.NoError(t, err)

	job, err := s.RegisterStatsReport(&fakeStats{})
	require.NoError(t, err)
	require.NotNil(t, job)

	_, err = s.RegisterTask("broken", gocron.CronJob("not a cron", false), func(context.Context) {})
	assert.Error(t, err)
}

func TestScheduler_StartTwiceAndShutdown(t *testing.T) {
	s, err := NewScheduler(Config{ShutdownTimeout: time.Second}, nil)
	require.NoError(t, err)

	s.Start()
	s.Start()
	assert.NoError(t, s.Shutdown())
}
