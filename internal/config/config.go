// Package config defines service configuration structures and loading hooks.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":3000".
	Addr string `koanf:"addr"`

	// MongoURL is the connection string for the document store.
	MongoURL string `koanf:"mongo_url"`

	// MongoDatabase names the database holding the users and settings
	// collections.
	MongoDatabase string `koanf:"mongo_database"`

	// LeaderboardLimit caps the GET /leaderboard page size.
	LeaderboardLimit int `koanf:"leaderboard_limit"`

	// DedupeSize bounds the request-id idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":3000",
		MongoDatabase:    "adrewards",
		LeaderboardLimit: 50,
		DedupeSize:       50_000,
	}
}
