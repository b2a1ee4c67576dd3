package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration, read once from the environment.
// Secrets (signing key, admission key) come from the store, not from env.
type Config struct {
	Addr            string        `env:"SF_ADDR" envDefault:":8000"`
	MongoURI        string        `env:"SF_MONGO_URI" envDefault:"mongodb://127.0.0.1:27017"`
	MongoDB         string        `env:"SF_MONGO_DB" envDefault:"soulforger"`
	MongoTimeout    time.Duration `env:"SF_MONGO_TIMEOUT" envDefault:"2s"`
	TokenTTL        time.Duration `env:"SF_TOKEN_TTL" envDefault:"120m"`
	ShutdownTimeout time.Duration `env:"SF_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// LoadConfig parses the environment.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
