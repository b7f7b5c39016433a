package config

import (
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	Server struct {
		Port        string   `env:"PORT" envDefault:"5250"`
		CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
	}

	Database struct {
		Path string `env:"DATABASE_PATH" envDefault:"database/estates.db"`
	}

	// Postcode lookups against postcodes.io or a compatible service
	Postcodes struct {
		BaseURL string        `env:"POSTCODES_BASE_URL" envDefault:"https://api.postcodes.io"`
		Timeout time.Duration `env:"POSTCODES_TIMEOUT" envDefault:"5s"`

		// Quiet period before a location suggestion is looked up
		SuggestDebounce time.Duration `env:"SUGGEST_DEBOUNCE" envDefault:"300ms"`
	}

	// Area tagged as a short-let opportunity: north of MinLat and west of MaxLng
	ShortLetZone struct {
		MinLat float64 `env:"SHORTLET_MIN_LAT" envDefault:"51.5"`
		MaxLng float64 `env:"SHORTLET_MAX_LNG" envDefault:"-0.1"`
	}

	Feed struct {
		// Cron spec for refreshing generated listings
		Schedule string `env:"FEED_SCHEDULE" envDefault:"@every 1h"`

		// Listings generated per run
		Size int `env:"FEED_SIZE" envDefault:"9"`
	}

	// BatchProcessing configuration
	BatchProcessing struct {
		// Maximum number of rows written per upsert statement
		MaxBatchSize int `env:"BATCH_MAX_SIZE" envDefault:"100"`

		// Number of batches the queue holds before rejecting new ones
		QueueSize int `env:"BATCH_QUEUE_SIZE" envDefault:"100"`

		// Maximum number of retries for failed batches
		MaxRetries int `env:"BATCH_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"BATCH_RETRY_DELAY" envDefault:"5"`
	}

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
