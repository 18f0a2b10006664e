// Package errcode provides layered error codes shared by the cache packages.
// Error code format: MMBBBB (MM = module code, BBBB = business code)
package errcode

import (
	"fmt"
	"net/http"
)

// LayeredError hierarchical error code
// Supports error chaining, dynamic messages and HTTP status code mapping
type LayeredError struct {
	module     string // Module name (cache, redis)
	code       int    // Complete error code (MMBBBB, e.g. 700004)
	msgKey     string // Message key, e.g. "error.cache.serialize"
	msg        string // Default message
	httpStatus int
	cause      error
	data       map[string]interface{} // Extra payload (e.g. field validation errors)
}

// New creates a layered error code
// httpStatus is optional and defaults to 500, cache errors are server side by nature
func New(moduleCode, businessCode int, module, msgKey, msg string, httpStatus ...int) *LayeredError {
	status := http.StatusInternalServerError
	if len(httpStatus) > 0 {
		status = httpStatus[0]
	}
	return &LayeredError{
		module:     module,
		code:       moduleCode*10000 + businessCode,
		msgKey:     msgKey,
		msg:        msg,
		httpStatus: status,
	}
}

func (e *LayeredError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

// Code gets error code
func (e *LayeredError) Code() int {
	return e.code
}

// Module gets module name
func (e *LayeredError) Module() string {
	return e.module
}

// MsgKey gets the message key
func (e *LayeredError) MsgKey() string {
	return e.msgKey
}

// Message gets the message without the cause
func (e *LayeredError) Message() string {
	return e.msg
}

// HTTPStatus gets the mapped HTTP status code
func (e *LayeredError) HTTPStatus() int {
	return e.httpStatus
}

// Unwrap supports Go 1.13+ error chains
func (e *LayeredError) Unwrap() error {
	return e.cause
}

// WithMsg replaces the message (returns a new instance)
func (e *LayeredError) WithMsg(msg string) *LayeredError {
	clone := *e
	clone.msg = msg
	return &clone
}

// WithMsgf formats a replacement message (returns a new instance)
func (e *LayeredError) WithMsgf(format string, args ...interface{}) *LayeredError {
	clone := *e
	clone.msg = fmt.Sprintf(format, args...)
	return &clone
}

// Wrap attaches the original error (returns a new instance)
func (e *LayeredError) Wrap(cause error) *LayeredError {
	if cause == nil {
		return e
	}
	clone := *e
	clone.cause = cause
	return &clone
}

// WithData attaches a payload entry (returns a new instance)
func (e *LayeredError) WithData(key string, value interface{}) *LayeredError {
	clone := *e
	clone.data = make(map[string]interface{}, len(e.data)+1)
	for k, v := range e.data {
		clone.data[k] = v
	}
	clone.data[key] = value
	return &clone
}

// Data gets the attached payload
func (e *LayeredError) Data() map[string]interface{} {
	return e.data
}

// Is matches by code so wrapped copies still satisfy errors.Is
func (e *LayeredError) Is(target error) bool {
	t, ok := target.(*LayeredError)
	if !ok {
		return false
	}
	return e.code == t.code
}

func (e *LayeredError) String() string {
	if e.cause != nil {
		return fmt.Sprintf("LayeredError{code:%d, module:%s, msg:%s, cause:%v}",
			e.code, e.module, e.msg, e.cause)
	}
	return fmt.Sprintf("LayeredError{code:%d, module:%s, msg:%s}", e.code, e.module, e.msg)
}
