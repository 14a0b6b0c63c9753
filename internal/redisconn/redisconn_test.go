package redisconn_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/posrecon/internal/redisconn"
)

func TestNew_RequiresAddress(t *testing.T) {
	_, err := redisconn.New(redisconn.Options{}, nil)
	assert.Error(t, err)

	_, err = redisconn.New(redisconn.Options{URL: "http://nope"}, nil)
	assert.Error(t, err)
}

func TestConn_LazyConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	conn, err := redisconn.New(redisconn.Options{URL: "redis://" + mr.Addr() + "/0"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	assert.Zero(t, mr.TotalConnectionCount())

	client, err := conn.Client(context.Background())
	require.NoError(t, err)
	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())

	again, err := conn.Client(context.Background())
	require.NoError(t, err)
	assert.Same(t, client, again)
}

func TestConn_ReconnectsAfterRestart(t *testing.T) {
	mr := miniredis.RunT(t)

	conn, err := redisconn.New(redisconn.Options{Addr: mr.Addr()}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	first, err := conn.Client(context.Background())
	require.NoError(t, err)

	mr.Close()
	assert.Error(t, conn.Ping(context.Background()))

	require.NoError(t, mr.Restart())

	second, err := conn.Client(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.NoError(t, conn.Ping(context.Background()))
}

func TestConn_CancelledCallerKeepsSharedClient(t *testing.T) {
	mr := miniredis.RunT(t)

	conn, err := redisconn.New(redisconn.Options{Addr: mr.Addr()}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	held, err := conn.Client(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = conn.Client(ctx)
	require.ErrorIs(t, err, context.Canceled)

	// A caller that fetched the client earlier can still use it.
	require.NoError(t, held.Set(context.Background(), "k", "v", 0).Err())

	again, err := conn.Client(context.Background())
	require.NoError(t, err)
	assert.Same(t, held, again)
}

func TestConn_ReconnectLeavesOldClientOpen(t *testing.T) {
	mr := miniredis.RunT(t)

	conn, err := redisconn.New(redisconn.Options{Addr: mr.Addr()}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	first, err := conn.Client(context.Background())
	require.NoError(t, err)

	mr.SetError("LOADING Redis is loading the dataset in memory")
	assert.Error(t, conn.Ping(context.Background()))
	mr.SetError("")

	second, err := conn.Client(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, first, second)

	// The swapped-out client is not closed under its holders.
	assert.NoError(t, first.Ping(context.Background()).Err())
}
