package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/greenhouse/pkg/formatting"
	"github.com/JaimeStill/greenhouse/pkg/middleware"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "GREENHOUSE_CORS_ENABLED",
	Origins:          "GREENHOUSE_CORS_ORIGINS",
	AllowedMethods:   "GREENHOUSE_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "GREENHOUSE_CORS_ALLOWED_HEADERS",
	AllowCredentials: "GREENHOUSE_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "GREENHOUSE_CORS_MAX_AGE",
}

// APIConfig holds API routing, request limits, and CORS settings.
type APIConfig struct {
	BasePath    string                `toml:"base_path"`
	MaxBodySize string                `toml:"max_body_size"`
	QueryLimit  int                   `toml:"query_limit"`
	CORS        middleware.CORSConfig `toml:"cors"`
}

// MaxBodySizeBytes returns MaxBodySize in bytes.
func (c *APIConfig) MaxBodySizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxBodySize)
	if err != nil {
		return 10 * 1024 * 1024
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS config.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if _, err := formatting.ParseBytes(c.MaxBodySize); err != nil {
		return fmt.Errorf("max_body_size: %w", err)
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxBodySize != "" {
		c.MaxBodySize = overlay.MaxBodySize
	}
	if overlay.QueryLimit != 0 {
		c.QueryLimit = overlay.QueryLimit
	}
	c.CORS.Merge(&overlay.CORS)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "10MB"
	}
	if c.QueryLimit == 0 {
		c.QueryLimit = 500
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("GREENHOUSE_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv("GREENHOUSE_API_MAX_BODY_SIZE"); v != "" {
		c.MaxBodySize = v
	}
}
