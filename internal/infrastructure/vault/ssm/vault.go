// Package ssm provides a vault backed by AWS Systems Manager Parameter Store.
package ssm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"

	"github.com/tripwise/travel-agent/internal/core/vault"
)

const scheme = "ssm://"

// ParameterAPI is the subset of the SSM client the vault needs.
// *ssm.Client satisfies it.
type ParameterAPI interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Vault reads SecureString parameters with decryption.
type Vault struct {
	api ParameterAPI
}

var _ vault.Vault = (*Vault)(nil)

// New creates a Vault on top of an SSM API implementation.
func New(api ParameterAPI) (*Vault, error) {
	if api == nil {
		return nil, errors.New("ssm vault: api must not be nil")
	}
	return &Vault{api: api}, nil
}

// NewFromRegion loads the default AWS credential chain for region.
func NewFromRegion(ctx context.Context, region string) (*Vault, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("ssm vault: load aws config: %w", err)
	}
	return New(ssm.NewFromConfig(cfg))
}

// GetSecret returns the decrypted value of the named parameter.
func (v *Vault) GetSecret(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(strings.TrimPrefix(name, scheme))
	if name == "" {
		return "", errors.New("ssm vault: parameter name is required")
	}

	out, err := v.api.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		var notFound *types.ParameterNotFound
		if errors.As(err, &notFound) {
			return "", fmt.Errorf("%w: %s", vault.ErrSecretNotFound, name)
		}
		return "", fmt.Errorf("ssm vault: get parameter %q: %w", name, err)
	}
	if out == nil || out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("ssm vault: parameter %q has no value", name)
	}
	return aws.ToString(out.Parameter.Value), nil
}

// Ping is a no-op; connectivity is proven by the first GetSecret.
func (v *Vault) Ping(context.Context) error {
	return nil
}

// Close is a no-op.
func (v *Vault) Close() error {
	return nil
}
