package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting for the call server. Values come from
// the environment; an optional .env file (or the file named by ENV_FILE) is
// loaded first.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	ListenAddr  string `env:"LISTEN_ADDR" envDefault:":8080"`

	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	Telnyx Telnyx `envPrefix:"TELNYX_"`

	// MediaStreamURL is the websocket URL handed to the provider when a call
	// is answered; the provider connects back to it with the call audio.
	MediaStreamURL string `env:"MEDIA_STREAM_URL"`

	// AlertWebhookURL receives operator-facing handoff alerts. Empty means
	// alerts go to the log only.
	AlertWebhookURL string `env:"ALERT_WEBHOOK_URL"`

	// SessionTTL bounds how long a call session may live without a hangup
	// event before the sweeper drops it.
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"4h"`
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"5m"`

	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

type Telnyx struct {
	APIKey  string `env:"API_KEY"`
	BaseURL string `env:"BASE_URL" envDefault:"https://api.telnyx.com/v2"`
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load reads the environment (after loading the env file, if any) into a
// Config.
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}

func loadEnvFile() error {
	envfile := os.Getenv("ENV_FILE")
	if envfile == "" {
		// A missing default .env is fine.
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		return godotenv.Load()
	}
	return godotenv.Load(envfile)
}
