package config

import (
	"os"
	"strings"
)

// EnvSource reads environment variables
// Explicit bindings are read first, then (when a prefix is set) every
// PREFIX_SECTION_FIELD variable is mapped to section.field
type EnvSource struct {
	prefix   string
	priority int
	bindings map[string]string // "redis.host" -> "REDIS_HOST"
}

// NewEnvSource creates an environment source
func NewEnvSource(prefix string, priority int) *EnvSource {
	return &EnvSource{
		prefix:   prefix,
		priority: priority,
		bindings: make(map[string]string),
	}
}

// AddBinding maps a config key to an exact environment variable name
func (s *EnvSource) AddBinding(key, envKey string) *EnvSource {
	s.bindings[key] = envKey
	return s
}

// Name of the source
func (s *EnvSource) Name() string {
	return "env:" + s.prefix
}

// Priority of the source
func (s *EnvSource) Priority() int {
	return s.priority
}

// Load collects the matching variables; empty values are treated as unset
func (s *EnvSource) Load() (map[string]interface{}, error) {
	result := make(map[string]interface{})

	if s.prefix != "" {
		prefix := s.prefix + "_"
		for _, env := range os.Environ() {
			key, value, ok := strings.Cut(env, "=")
			if !ok || value == "" || !strings.HasPrefix(key, prefix) {
				continue
			}
			// ACADEMIA_HTTP_ADDR -> http.addr (first underscore splits section)
			rest := strings.ToLower(strings.TrimPrefix(key, prefix))
			section, field, found := strings.Cut(rest, "_")
			if !found {
				result[section] = value
				continue
			}
			result[section+"."+field] = value
		}
	}

	// Bindings win over prefix scanning
	for key, envKey := range s.bindings {
		if value := os.Getenv(envKey); value != "" {
			result[key] = value
		}
	}

	return result, nil
}

// RedisBindings binds the REDIS_* variables used by every deployment
func RedisBindings(s *EnvSource) *EnvSource {
	return s.
		AddBinding("redis.host", "REDIS_HOST").
		AddBinding("redis.port", "REDIS_PORT").
		AddBinding("redis.password", "REDIS_PASSWORD").
		AddBinding("redis.db", "REDIS_DB").
		AddBinding("redis.key_prefix", "REDIS_KEY_PREFIX").
		AddBinding("redis.ttl", "REDIS_TTL")
}
