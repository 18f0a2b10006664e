package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthChecker(t *testing.T) {
	store, mr, _ := newTestStore(t, Config{})
	checker := NewHealthChecker(store)

	assert.Equal(t, "redis", checker.Name())
	assert.NoError(t, checker.Check(context.Background()))

	mr.Close()
	err := checker.Check(context.Background())
	assert.True(t, errors.Is(err, ErrUnavailable))

	assert.Error(t, NewHealthChecker(nil).Check(context.Background()))
}
