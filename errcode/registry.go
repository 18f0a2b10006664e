package errcode

import (
	"fmt"
	"sync"
)

// Registry keeps error codes unique across packages
type Registry struct {
	mu    sync.RWMutex
	codes map[int]string // code -> module:msgKey
}

var globalRegistry = NewRegistry()

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{codes: make(map[int]string)}
}

// Register registers an error code in the global registry
// Panics when the code is already taken by a different module:msgKey
func Register(err *LayeredError) *LayeredError {
	return globalRegistry.Register(err)
}

// Register adds the error code to the registry
func (r *Registry) Register(err *LayeredError) *LayeredError {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := err.Module() + ":" + err.MsgKey()
	if existing, ok := r.codes[err.Code()]; ok {
		if existing != key {
			panic(fmt.Sprintf("error code conflict: code %d is already registered as %s, cannot register as %s",
				err.Code(), existing, key))
		}
		// Same code and key, idempotent
		return err
	}

	r.codes[err.Code()] = key
	return err
}

// Count returns the number of registered codes
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.codes)
}

// RegisteredCodes returns a copy of the global registry
func RegisteredCodes() map[int]string {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	codes := make(map[int]string, len(globalRegistry.codes))
	for k, v := range globalRegistry.codes {
		codes[k] = v
	}
	return codes
}
