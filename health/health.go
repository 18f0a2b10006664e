// Package health aggregates dependency checks for the admin API
package health

import (
	"context"
	"time"
)

// Status overall or per-check state
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded" // an advisory dependency is down
	StatusUnhealthy Status = "unhealthy"
)

// Checker a single dependency check
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// CheckResult outcome of one checker
type CheckResult struct {
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	Message   string        `json:"message,omitempty"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration,omitempty"`
}

// Response aggregated result
type Response struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Duration  time.Duration          `json:"duration"`
	Checks    map[string]CheckResult `json:"checks"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// IsHealthy every check passed
func (r *Response) IsHealthy() bool {
	return r.Status == StatusHealthy
}
