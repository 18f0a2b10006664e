package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 6379, cfg.Port)
	assert.Equal(t, "academia_pro:", cfg.KeyPrefix)
	assert.Equal(t, 3600, cfg.TTL)
	assert.Equal(t, time.Hour, cfg.DefaultTTL())
	assert.Equal(t, "localhost:6379", cfg.Addr())
	assert.Equal(t, uint32(5), cfg.Breaker.MinRequests)
	assert.False(t, cfg.Breaker.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"port out of range", func(c *Config) { c.Port = 70000 }, "port"},
		{"db out of range", func(c *Config) { c.DB = 16 }, "db"},
		{"negative ttl", func(c *Config) { c.TTL = -5 }, "ttl"},
		{"breaker ratio", func(c *Config) { c.Breaker.FailureRatio = 1.5 }, "breaker"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			cfg.ApplyDefaults()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.field)
			}
		})
	}
}
