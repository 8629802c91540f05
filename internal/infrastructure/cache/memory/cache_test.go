package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SetGetDelete(t *testing.T) {
	c := NewClient()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "session:a", []byte("one"), 0))

	got, err := c.Get(ctx, "session:a")
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), got)

	deleted, err := c.Delete(ctx, "session:a")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = c.Delete(ctx, "session:a")
	require.NoError(t, err)
	assert.False(t, deleted)

	got, err = c.Get(ctx, "session:a")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestClient_ValuesAreCopied(t *testing.T) {
	c := NewClient()
	ctx := context.Background()

	value := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", value, 0))
	value[0] = 'z'

	got, _ := c.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), got)
}

func TestClient_TTLExpiry(t *testing.T) {
	c := NewClient()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	now = now.Add(2 * time.Minute)
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)

	keys, err := c.Keys(ctx, "*")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestClient_KeysPattern(t *testing.T) {
	c := NewClient()
	ctx := context.Background()

	for _, k := range []string{"session:b", "session:a", "other:x"} {
		require.NoError(t, c.Set(ctx, k, []byte("v"), 0))
	}

	keys, err := c.Keys(ctx, "session:*")
	require.NoError(t, err)
	assert.Equal(t, []string{"session:a", "session:b"}, keys)

	_, err = c.Keys(ctx, "[")
	assert.Error(t, err)
}
