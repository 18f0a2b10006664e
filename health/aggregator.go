package health

import (
	"context"
	"sync"
	"time"
)

type registration struct {
	checker  Checker
	advisory bool
}

// Aggregator runs registered checks concurrently under one timeout
type Aggregator struct {
	checks   []registration
	timeout  time.Duration
	mu       sync.RWMutex
	metadata map[string]interface{}
}

// NewAggregator creates an aggregator; timeout <= 0 means 5s
func NewAggregator(timeout time.Duration) *Aggregator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Aggregator{
		timeout:  timeout,
		metadata: make(map[string]interface{}),
	}
}

// Register adds a critical check, a failure makes the service unhealthy
func (a *Aggregator) Register(checker Checker) {
	a.register(checker, false)
}

// RegisterAdvisory adds a check whose failure only degrades the service
// The cache is advisory: requests keep working without it
func (a *Aggregator) RegisterAdvisory(checker Checker) {
	a.register(checker, true)
}

func (a *Aggregator) register(checker Checker, advisory bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.checks = append(a.checks, registration{checker: checker, advisory: advisory})
}

// SetMetadata attaches static metadata to every response
func (a *Aggregator) SetMetadata(key string, value interface{}) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.metadata[key] = value
}

// Check runs every registered check
func (a *Aggregator) Check(ctx context.Context) *Response {
	start := time.Now()

	checkCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	a.mu.RLock()
	checks := make([]registration, len(a.checks))
	copy(checks, a.checks)
	metadata := make(map[string]interface{}, len(a.metadata))
	for k, v := range a.metadata {
		metadata[k] = v
	}
	a.mu.RUnlock()

	results := make(chan CheckResult, len(checks))
	for _, reg := range checks {
		go func(reg registration) {
			results <- checkOne(checkCtx, reg)
		}(reg)
	}

	byName := make(map[string]CheckResult, len(checks))
	for range checks {
		result := <-results
		byName[result.Name] = result
	}

	return &Response{
		Status:    overallStatus(byName),
		Timestamp: time.Now(),
		Duration:  time.Since(start),
		Checks:    byName,
		Metadata:  metadata,
	}
}

func checkOne(ctx context.Context, reg registration) CheckResult {
	start := time.Now()
	result := CheckResult{
		Name:      reg.checker.Name(),
		Timestamp: start,
		Status:    StatusHealthy,
		Message:   "OK",
	}

	err := reg.checker.Check(ctx)
	result.Duration = time.Since(start)
	if err == nil {
		return result
	}

	result.Error = err.Error()
	result.Message = "health check failed"
	result.Status = StatusUnhealthy
	if reg.advisory {
		result.Status = StatusDegraded
	}
	return result
}

func overallStatus(checks map[string]CheckResult) Status {
	status := StatusHealthy
	for _, result := range checks {
		switch result.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			status = StatusDegraded
		}
	}
	return status
}
