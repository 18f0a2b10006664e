package redis

import (
	"net/http"

	"github.com/Hycient195/academia-pro-cache/errcode"
)

// ModuleCode redis store module code
const ModuleCode = 71

var (
	// ErrSerialize value could not be encoded as JSON (a caller bug, never an outage)
	ErrSerialize = errcode.Register(errcode.New(ModuleCode, 1, "redis", "error.redis.serialize", "value is not JSON serializable", http.StatusInternalServerError))

	// ErrInvalidConfig store configuration rejected
	ErrInvalidConfig = errcode.Register(errcode.New(ModuleCode, 2, "redis", "error.redis.invalid_config", "invalid redis configuration", http.StatusInternalServerError))

	// ErrUnavailable backend unreachable (health checks only, store verbs never return it)
	ErrUnavailable = errcode.Register(errcode.New(ModuleCode, 3, "redis", "error.redis.unavailable", "redis is unavailable", http.StatusServiceUnavailable))
)
