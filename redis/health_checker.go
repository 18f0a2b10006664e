package redis

import (
	"context"
)

// HealthChecker reports store reachability to the health aggregator
type HealthChecker struct {
	store *Store
}

// NewHealthChecker creates the checker
func NewHealthChecker(store *Store) *HealthChecker {
	return &HealthChecker{store: store}
}

// Name of the check
func (h *HealthChecker) Name() string {
	return "redis"
}

// Check pings the backend directly, bypassing the neutral-value boundary
func (h *HealthChecker) Check(ctx context.Context) error {
	if h.store == nil {
		return ErrUnavailable.WithMsg("redis store not initialised")
	}
	if err := h.store.client.Ping(ctx).Err(); err != nil {
		return ErrUnavailable.Wrap(err)
	}
	return nil
}
