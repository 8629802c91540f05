package vault

// Type represents the type of vault.
type Type string

const (
	// TypeDotEnv reads secrets from the process environment (local development).
	TypeDotEnv Type = "dotenv"
	// TypeSSM reads secrets from AWS Systems Manager Parameter Store.
	TypeSSM Type = "ssm"
)
