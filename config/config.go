package config

import "github.com/caarlos0/env/v6"

type Config struct {
	// HTTP listen port
	Port string `env:"PORT" envDefault:"5250"`

	// Path to the sqlite database file
	DBPath string `env:"DB_PATH" envDefault:"database/agencypulse.db"`

	// Operator agency used as the baseline in market comparisons
	AgencyName string `env:"AGENCY_NAME" envDefault:"Harcourt Success"`

	// Secret used to sign access tokens
	JWTSecret string `env:"JWT_SECRET" envDefault:"dev-only-secret"`

	// Access token lifetime in minutes
	TokenTTLMinutes int `env:"TOKEN_TTL_MINUTES" envDefault:"720"`

	// Metrics recomputation debounce window in milliseconds
	MetricsDebounceMS int `env:"METRICS_DEBOUNCE_MS" envDefault:"300"`

	// Change feed buffer size
	FeedBufferSize int `env:"FEED_BUFFER_SIZE" envDefault:"64"`

	// BulkImport configuration
	BulkImport struct {
		// Maximum number of queued import batches
		QueueSize int `env:"IMPORT_QUEUE_SIZE" envDefault:"16"`

		// Number of concurrent import workers
		WorkerCount int `env:"IMPORT_WORKER_COUNT" envDefault:"2"`

		// Maximum number of retries for failed batches
		MaxRetries int `env:"IMPORT_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"IMPORT_RETRY_DELAY" envDefault:"5"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
