package dotenv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripwise/travel-agent/internal/core/vault"
)

func TestVault_EnvironmentWins(t *testing.T) {
	t.Setenv("TRAVEL_TEST_SECRET", "from-env")
	v := NewVault()

	_, err := v.StoreSecret(context.Background(), "TRAVEL_TEST_SECRET", "from-memory")
	require.NoError(t, err)

	got, err := v.GetSecret(context.Background(), "dotenv://TRAVEL_TEST_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "from-env", got)
}

func TestVault_StoredSecret(t *testing.T) {
	v := NewVault()

	uri, err := v.StoreSecret(context.Background(), "TRAVEL_TEST_STORED", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "dotenv://TRAVEL_TEST_STORED", uri)

	got, err := v.GetSecret(context.Background(), uri)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got)
}

func TestVault_NotFound(t *testing.T) {
	v := NewVault()
	_, err := v.GetSecret(context.Background(), "TRAVEL_TEST_MISSING")
	assert.ErrorIs(t, err, vault.ErrSecretNotFound)

	_, err = v.StoreSecret(context.Background(), "", "x")
	assert.Error(t, err)
	assert.NoError(t, v.Ping(context.Background()))
	assert.NoError(t, v.Close())
}
