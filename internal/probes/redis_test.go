package probes

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeatLockKey(t *testing.T) {
	assert.Equal(t, "seat_lock:s-42", SeatLockKey("s-42"))
}

func TestRedisProbe_KeyExists(t *testing.T) {
	server := miniredis.RunT(t)
	require.NoError(t, server.Set(SeatLockKey("s-1"), "order-1"))

	probe := NewRedisProbe(server.Addr())

	exists, err := probe.KeyExists(context.Background(), SeatLockKey("s-1"))
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = probe.KeyExists(context.Background(), SeatLockKey("s-2"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRedisProbe_URLAddress(t *testing.T) {
	server := miniredis.RunT(t)
	require.NoError(t, server.Set(SeatLockKey("s-1"), "order-1"))

	probe := NewRedisProbe("redis://" + server.Addr())
	exists, err := probe.KeyExists(context.Background(), SeatLockKey("s-1"))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRedisProbe_InvalidURL(t *testing.T) {
	probe := NewRedisProbe("redis://bad url with spaces")
	_, err := probe.KeyExists(context.Background(), "k")
	assert.Error(t, err)
}
