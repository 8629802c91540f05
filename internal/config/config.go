// Package config handles application configuration loading and management.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultViolationThreshold is the number of security violations after which
// a session is reset.
const DefaultViolationThreshold = 2

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig
	Cache     CacheConfig
	DocDB     DocDBConfig
	Vault     VaultConfig
	OpenAI    OpenAIConfig
	Session   SessionConfig
	Guard     GuardConfig
	Data      DataConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host            string
	Port            int
	GinMode         string
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// Address returns the server address in host:port format.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CacheConfig selects the backend that holds session state.
type CacheConfig struct {
	Type     string
	Host     string
	Port     string
	Password string
	DB       int
}

// DocDBConfig holds document database configuration used for guard audit events.
type DocDBConfig struct {
	Type           string
	URI            string
	Database       string
	AuditWorkers   int
	AuditQueueSize int
	AuditRetention time.Duration
}

// VaultConfig holds vault configuration.
type VaultConfig struct {
	Type            string
	AWSRegion       string
	APIKeyParameter string
	EncryptionKey   string
}

// OpenAIConfig holds the language model settings.
type OpenAIConfig struct {
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// SessionConfig holds the session store limits.
type SessionConfig struct {
	HistoryCap         int
	MaxMessages        int
	ViolationThreshold int
	OffTopicWarnLimit  int
	InactivityTimeout  time.Duration
	SweepInterval      time.Duration
}

// GuardConfig holds content guard settings.
type GuardConfig struct {
	RelevanceThreshold float64
	VocabularyPath     string
}

// DataConfig points at the travel datasets.
type DataConfig struct {
	Dir string
}

// RateLimitConfig holds per client IP request limits.
type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 5000),
			GinMode:         getEnv("GIN_MODE", "debug"),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			AllowedOrigins:  getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		},
		Cache: CacheConfig{
			Type:     getEnv("CACHE_TYPE", "memory"),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		DocDB: DocDBConfig{
			Type:           getEnv("DOCDB_TYPE", "none"),
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGODB_DATABASE", "travel_agent"),
			AuditWorkers:   getEnvAsInt("AUDIT_WORKERS", 2),
			AuditQueueSize: getEnvAsInt("AUDIT_QUEUE_SIZE", 256),
			AuditRetention: getEnvAsDuration("AUDIT_RETENTION", 30*24*time.Hour),
		},
		Vault: VaultConfig{
			Type:            getEnv("VAULT_TYPE", "dotenv"),
			AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
			APIKeyParameter: getEnv("OPENAI_API_KEY_PARAMETER", "OPENAI_API_KEY"),
			EncryptionKey:   getEnv("SECRETS_ENCRYPTION_KEY", ""),
		},
		OpenAI: OpenAIConfig{
			BaseURL:     getEnv("OPENAI_BASE_URL", ""),
			Model:       getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
			Temperature: getEnvAsFloat("OPENAI_TEMPERATURE", 0.7),
			MaxTokens:   getEnvAsInt("OPENAI_MAX_TOKENS", 1000),
			Timeout:     getEnvAsDuration("CLASSIFIER_TIMEOUT", 20*time.Second),
		},
		Session: SessionConfig{
			HistoryCap:         getEnvAsInt("SESSION_HISTORY_CAP", 20),
			MaxMessages:        getEnvAsInt("SESSION_MAX_MESSAGES", 50),
			ViolationThreshold: getEnvAsInt("SESSION_VIOLATION_THRESHOLD", DefaultViolationThreshold),
			OffTopicWarnLimit:  getEnvAsInt("OFF_TOPIC_WARNING_LIMIT", 3),
			InactivityTimeout:  getEnvAsDuration("SESSION_INACTIVITY_TIMEOUT", 30*time.Minute),
			SweepInterval:      getEnvAsDuration("SESSION_SWEEP_INTERVAL", time.Minute),
		},
		Guard: GuardConfig{
			RelevanceThreshold: getEnvAsFloat("GUARD_RELEVANCE_THRESHOLD", 0.3),
			VocabularyPath:     getEnv("GUARD_VOCABULARY_PATH", ""),
		},
		Data: DataConfig{
			Dir: getEnv("DATA_DIR", "data"),
		},
		RateLimit: RateLimitConfig{
			Enabled: getEnvAsBool("RATE_LIMIT_ENABLED", true),
			RPS:     getEnvAsFloat("RATE_LIMIT_RPS", 5),
			Burst:   getEnvAsInt("RATE_LIMIT_BURST", 20),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid SERVER_PORT %d", c.Server.Port)
	}
	switch c.Cache.Type {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported CACHE_TYPE %q", c.Cache.Type)
	}
	switch c.DocDB.Type {
	case "none", "mongodb":
	default:
		return fmt.Errorf("unsupported DOCDB_TYPE %q", c.DocDB.Type)
	}
	switch c.Vault.Type {
	case "dotenv", "ssm":
	default:
		return fmt.Errorf("unsupported VAULT_TYPE %q", c.Vault.Type)
	}
	if c.Session.ViolationThreshold < 1 {
		return fmt.Errorf("SESSION_VIOLATION_THRESHOLD must be at least 1")
	}
	if c.Session.HistoryCap < 2 {
		return fmt.Errorf("SESSION_HISTORY_CAP must be at least 2")
	}
	if c.Guard.RelevanceThreshold < 0 || c.Guard.RelevanceThreshold > 1 {
		return fmt.Errorf("GUARD_RELEVANCE_THRESHOLD must be within [0, 1]")
	}
	return nil
}

// getEnv gets an environment variable with a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go duration strings ("30s") or plain seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
