package redis

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniredis(t *testing.T) (*miniredis.Miniredis, *Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client, err := NewClient(Config{
		Host: mr.Host(),
		Port: mr.Port(),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return mr, client
}

func TestNewClient_ConnectionFailure(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	host, port := mr.Host(), mr.Port()
	mr.Close()

	client, err := NewClient(Config{Host: host, Port: port})
	assert.Error(t, err)
	assert.Nil(t, client)
}

func TestClient_SetAndGet(t *testing.T) {
	mr, client := setupMiniredis(t)
	ctx := context.Background()

	err := client.Set(ctx, "session:abc", []byte("state"), time.Minute)
	require.NoError(t, err)

	result, err := client.Get(ctx, "session:abc")
	require.NoError(t, err)
	assert.Equal(t, []byte("state"), result)
	assert.Equal(t, time.Minute, mr.TTL("session:abc"))
}

func TestClient_GetNotFound(t *testing.T) {
	_, client := setupMiniredis(t)

	result, err := client.Get(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, result)
}

func TestClient_Delete(t *testing.T) {
	_, client := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "k", []byte("v"), 0))

	deleted, err := client.Delete(ctx, "k")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = client.Delete(ctx, "k")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestClient_Keys(t *testing.T) {
	_, client := setupMiniredis(t)
	ctx := context.Background()

	for _, k := range []string{"session:1", "session:2", "session:3", "audit:1"} {
		require.NoError(t, client.Set(ctx, k, []byte("v"), 0))
	}

	keys, err := client.Keys(ctx, "session:*")
	require.NoError(t, err)
	sort.Strings(keys)
	assert.Equal(t, []string{"session:1", "session:2", "session:3"}, keys)
}

func TestClient_PingAfterServerClose(t *testing.T) {
	mr, client := setupMiniredis(t)

	require.NoError(t, client.Ping(context.Background()))

	mr.Close()
	assert.Error(t, client.Ping(context.Background()))
}
