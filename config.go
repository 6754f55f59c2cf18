package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	WebhookPath string

	Username string
	Password string

	ShutdownTimeout time.Duration
}

func LoadConfig() (*Config, error) {
	// .env is optional, production sets the variables directly
	_ = godotenv.Load()

	cfg := &Config{
		Port:            os.Getenv("PORT"),
		WebhookPath:     os.Getenv("WEBHOOK_PATH"),
		Username:        os.Getenv("WEBHOOK_USERNAME"),
		Password:        os.Getenv("WEBHOOK_PASSWORD"),
		ShutdownTimeout: 10 * time.Second,
	}

	if cfg.Port == "" {
		cfg.Port = "3000"
	}

	if cfg.WebhookPath == "" {
		cfg.WebhookPath = "/fulfillment"
	}
	if !strings.HasPrefix(cfg.WebhookPath, "/") {
		cfg.WebhookPath = "/" + cfg.WebhookPath
	}

	if (cfg.Username == "") != (cfg.Password == "") {
		return nil, fmt.Errorf("WEBHOOK_USERNAME and WEBHOOK_PASSWORD must be set together")
	}

	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT %q: %w", v, err)
		}
		cfg.ShutdownTimeout = d
	}

	return cfg, nil
}

// BasicAuth reports whether the webhook requires basic authentication.
func (c *Config) BasicAuth() bool {
	return c.Username != ""
}
