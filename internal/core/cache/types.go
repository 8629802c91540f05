package cache

// Type represents the type of cache.
type Type string

const (
	// TypeMemory keeps entries in process memory.
	TypeMemory Type = "memory"
	// TypeRedis represents a Redis cache.
	TypeRedis Type = "redis"
)
