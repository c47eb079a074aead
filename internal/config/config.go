package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv     string `env:"APP_ENV" envDefault:"local"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	ListenPort int    `env:"LISTEN_PORT" envDefault:"8080"`

	// Outbound fetching
	UserAgent     string        `env:"USER_AGENT"`
	WebFetchRPS   float64       `env:"WEB_FETCH_RPS" envDefault:"2"`
	FetchTimeout  time.Duration `env:"FETCH_TIMEOUT" envDefault:"20s"`
	OEmbedTimeout time.Duration `env:"OEMBED_TIMEOUT" envDefault:"5s"`
	MaxBodyBytes  int64         `env:"MAX_BODY_BYTES" envDefault:"5242880"`

	// Activity relay
	ActivityEndpoint string        `env:"ACTIVITY_ENDPOINT,required"`
	ActivityToken    string        `env:"ACTIVITY_TOKEN"`
	ActivityTimeout  time.Duration `env:"ACTIVITY_TIMEOUT" envDefault:"10s"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
