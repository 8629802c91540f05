// Package dotenv provides a dotenv-based vault implementation for development.
package dotenv

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/tripwise/travel-agent/internal/core/vault"
)

const scheme = "dotenv://"

// Vault implements the vault.Vault interface using environment variables.
// Values set with StoreSecret take effect when the variable is unset.
type Vault struct {
	// secrets stores in-memory secrets (for secrets not in env vars)
	secrets map[string]string
	mu      sync.RWMutex
}

var _ vault.Vault = (*Vault)(nil)

// NewVault creates a new DotEnv vault instance.
func NewVault() *Vault {
	return &Vault{
		secrets: make(map[string]string),
	}
}

// StoreSecret stores a secret in memory and returns its "dotenv://{key}" URI.
func (v *Vault) StoreSecret(_ context.Context, key, value string) (string, error) {
	key = strings.TrimPrefix(key, scheme)
	if key == "" {
		return "", fmt.Errorf("secret key is required")
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.secrets[key] = value
	return scheme + key, nil
}

// GetSecret retrieves a secret from environment variables or in-memory store.
func (v *Vault) GetSecret(_ context.Context, uri string) (string, error) {
	key := strings.TrimPrefix(uri, scheme)

	if value := os.Getenv(key); value != "" {
		return value, nil
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	if value, ok := v.secrets[key]; ok {
		return value, nil
	}

	return "", fmt.Errorf("%w: %s", vault.ErrSecretNotFound, key)
}

// Ping always succeeds.
func (v *Vault) Ping(context.Context) error {
	return nil
}

// Close is a no-op.
func (v *Vault) Close() error {
	return nil
}
