package redis

// Config holds Redis connection settings.
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379/0)
	URL string

	// Prefix namespaces every key, so several scoreboards can share a server.
	Prefix string

	PoolSize     int
	MinIdleConns int
}

// DefaultConfig returns the defaults used when the config file is silent.
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379/0",
		Prefix:       "tally",
		PoolSize:     4,
		MinIdleConns: 1,
	}
}
