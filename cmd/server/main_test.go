package main

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tripwise/travel-agent/internal/config"
	"github.com/tripwise/travel-agent/internal/core/vault"
	memorycache "github.com/tripwise/travel-agent/internal/infrastructure/cache/memory"
	"github.com/tripwise/travel-agent/internal/pkg/encryption"
	"github.com/tripwise/travel-agent/internal/services/intent"
	openaiclassifier "github.com/tripwise/travel-agent/internal/services/intent/openai"
	"github.com/tripwise/travel-agent/internal/services/lookup"
	"github.com/tripwise/travel-agent/internal/testutil"
	"github.com/tripwise/travel-agent/internal/testutil/mocks"
)

func TestCreateEncryptor(t *testing.T) {
	ctx := context.Background()
	key, err := encryption.GenerateKey()
	require.NoError(t, err)

	t.Run("configured key skips the vault", func(t *testing.T) {
		v := &mocks.MockVault{}
		enc, err := createEncryptor(ctx, config.VaultConfig{EncryptionKey: key}, v)
		require.NoError(t, err)
		assert.IsType(t, &encryption.AESEncryptor{}, enc)
		v.AssertNotCalled(t, "GetSecret", mock.Anything, mock.Anything)
	})

	t.Run("key from vault", func(t *testing.T) {
		v := &mocks.MockVault{}
		v.On("GetSecret", mock.Anything, encryptionKeySecret).Return(key, nil).Once()
		enc, err := createEncryptor(ctx, config.VaultConfig{}, v)
		require.NoError(t, err)
		assert.IsType(t, &encryption.AESEncryptor{}, enc)
		v.AssertExpectations(t)
	})

	t.Run("missing key stores plaintext", func(t *testing.T) {
		v := &mocks.MockVault{}
		v.On("GetSecret", mock.Anything, encryptionKeySecret).Return("", vault.ErrSecretNotFound).Once()
		enc, err := createEncryptor(ctx, config.VaultConfig{}, v)
		require.NoError(t, err)
		assert.IsType(t, &encryption.NoOpEncryptor{}, enc)
	})

	t.Run("vault failure", func(t *testing.T) {
		v := &mocks.MockVault{}
		v.On("GetSecret", mock.Anything, encryptionKeySecret).Return("", assert.AnError).Once()
		_, err := createEncryptor(ctx, config.VaultConfig{}, v)
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestCreateClassifier(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{
		Vault:  config.VaultConfig{APIKeyParameter: "OPENAI_API_KEY"},
		OpenAI: config.OpenAIConfig{Model: "gpt-4o-mini", Timeout: time.Second},
	}

	v := &mocks.MockVault{}
	v.On("GetSecret", mock.Anything, "OPENAI_API_KEY").Return("", vault.ErrSecretNotFound).Once()
	cls, err := createClassifier(ctx, cfg, v, intent.DefaultCatalog(), []string{"Paris"})
	require.NoError(t, err)
	assert.IsType(t, &intent.Static{}, cls)

	v = &mocks.MockVault{}
	v.On("GetSecret", mock.Anything, "OPENAI_API_KEY").Return("sk-test", nil).Once()
	cls, err = createClassifier(ctx, cfg, v, intent.DefaultCatalog(), []string{"Paris"})
	require.NoError(t, err)
	assert.IsType(t, &openaiclassifier.Classifier{}, cls)
}

func TestCreateBackends(t *testing.T) {
	cacheClient, err := createCacheClient(config.CacheConfig{Type: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &memorycache.Client{}, cacheClient)

	_, err = createCacheClient(config.CacheConfig{Type: "memcached"})
	assert.Error(t, err)

	docDB, err := createDocDBClient(context.Background(), config.DocDBConfig{Type: "none"})
	require.NoError(t, err)
	assert.Nil(t, docDB)

	v, err := createVault(context.Background(), config.VaultConfig{Type: "dotenv"})
	require.NoError(t, err)
	assert.NoError(t, v.Ping(context.Background()))

	_, err = createVault(context.Background(), config.VaultConfig{Type: "keyring"})
	assert.Error(t, err)
}

func TestCreateGuard_BadVocabularyPath(t *testing.T) {
	_, err := createGuard(config.GuardConfig{VocabularyPath: "does-not-exist.yaml"})
	assert.Error(t, err)

	g, err := createGuard(config.GuardConfig{RelevanceThreshold: 0.3})
	require.NoError(t, err)
	assert.NotNil(t, g)
}

func TestSetupRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, err := lookup.Load("../../data")
	require.NoError(t, err)

	cfg := &config.Config{RateLimit: config.RateLimitConfig{Enabled: true, RPS: 5, Burst: 5}}
	router := setupRouter(cfg, memorycache.NewClient(), nil, nil, svc, intent.DefaultCatalog())

	w := testutil.PerformRequest(router, http.MethodGet, "/api/live", nil, nil)
	testutil.AssertStatusCode(t, http.StatusOK, w)

	w = testutil.PerformRequest(router, http.MethodGet, "/api/travel-destinations", nil, nil)
	testutil.AssertStatusCode(t, http.StatusOK, w)

	w = testutil.PerformRequest(router, http.MethodGet, "/docs/index.html", nil, nil)
	testutil.AssertStatusCode(t, http.StatusOK, w)
}
