package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheckAll(t *testing.T) {
	r := NewRegistry()
	r.Register("storage", CheckerFunc(func(context.Context) error { return nil }))
	r.Register("sessions", CheckerFunc(func(context.Context) error { return errors.New("connection refused") }))

	assert.Equal(t, []string{"sessions", "storage"}, r.List())

	results, healthy := r.HealthCheckAll(context.Background())
	assert.False(t, healthy)
	require.Len(t, results, 2)
	assert.Equal(t, Status{Name: "sessions", Healthy: false, Error: "connection refused"}, results[0])
	assert.Equal(t, Status{Name: "storage", Healthy: true}, results[1])

	r.Unregister("sessions")
	_, healthy = r.HealthCheckAll(context.Background())
	assert.True(t, healthy)
}

func TestEmptyRegistryIsHealthy(t *testing.T) {
	results, healthy := NewRegistry().HealthCheckAll(context.Background())
	assert.True(t, healthy)
	assert.Empty(t, results)
}
