// Package vault defines the secrets interface used to resolve credentials at startup.
package vault

import (
	"context"
	"errors"
)

// ErrSecretNotFound is returned when a secret does not exist in the backend.
var ErrSecretNotFound = errors.New("secret not found")

// Vault defines the interface for vault/secrets operations.
type Vault interface {
	// GetSecret retrieves a secret by key or URI.
	// Returns ErrSecretNotFound (possibly wrapped) when the key is unknown.
	GetSecret(ctx context.Context, key string) (string, error)

	// Ping checks if the vault connection is alive.
	Ping(ctx context.Context) error

	// Close closes the vault connection.
	Close() error
}
