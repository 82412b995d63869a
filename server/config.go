package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"blackjack-helper/server/store"
)

type Config struct {
	Port             string        `env:"PORT"              envDefault:"8000"`
	DatabaseURL      string        `env:"DATABASE_URL"`
	SQLitePath       string        `env:"COUNT_SQLITE_PATH"`
	CountFile        string        `env:"COUNT_FILE"        envDefault:"running_count.txt"`
	AutoMigrate      bool          `env:"AUTO_MIGRATE"`
	CORSOrigins      []string      `env:"CORS_ORIGINS"      envDefault:"*" envSeparator:","`
	MaxImageBytes    int           `env:"MAX_IMAGE_BYTES"   envDefault:"8388608"`
	RecognizeTimeout time.Duration `env:"RECOGNIZE_TIMEOUT" envDefault:"60s"`
	VisionModel      string        `env:"VISION_MODEL"`
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	for i, o := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(o)
	}
	return cfg, nil
}

func (c Config) storeConfig() store.Config {
	return store.Config{
		DatabaseURL: c.DatabaseURL,
		SQLitePath:  c.SQLitePath,
		FilePath:    c.CountFile,
		AutoMigrate: c.AutoMigrate,
	}
}

// Tries: OPENAI_API_KEY_FILE, ./secrets/openai_api_key.txt,
// ./openai_api_key.txt and /run/secrets/openai_api_key.
func loadAPIKeyFromSecret() {
	if os.Getenv("OPENAI_API_KEY") != "" {
		return
	}
	var candidates []string
	if p := os.Getenv("OPENAI_API_KEY_FILE"); strings.TrimSpace(p) != "" {
		candidates = append(candidates, p)
	}
	candidates = append(candidates,
		"./secrets/openai_api_key.txt",
		"./openai_api_key.txt",
		"/run/secrets/openai_api_key",
	)
	for _, path := range candidates {
		if b, err := os.ReadFile(path); err == nil {
			if key := strings.TrimSpace(string(b)); key != "" {
				os.Setenv("OPENAI_API_KEY", key)
				return
			}
		}
	}
}
