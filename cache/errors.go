package cache

import (
	"net/http"

	"github.com/Hycient195/academia-pro-cache/errcode"
)

// ModuleCode cache module code
const ModuleCode = 70

const (
	ErrCodeSerialize     = 1
	ErrCodeConfigInvalid = 2
)

var (
	// ErrSerialize value cannot be stored as JSON
	ErrSerialize = errcode.Register(errcode.New(
		ModuleCode, ErrCodeSerialize,
		"cache", "error.cache.serialize", "cache value is not serializable",
		http.StatusInternalServerError,
	))

	// ErrConfigInvalid cache configuration rejected
	ErrConfigInvalid = errcode.Register(errcode.New(
		ModuleCode, ErrCodeConfigInvalid,
		"cache", "error.cache.config_invalid", "invalid cache configuration",
		http.StatusInternalServerError,
	))
)
