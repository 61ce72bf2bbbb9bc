package telemetry

import (
	"os"
	"strconv"
)

// Config describes the tracing exporter. An empty Endpoint disables export.
type Config struct {
	ServiceName string `toml:"service_name"`
	Endpoint    string `toml:"endpoint"`
	Insecure    bool   `toml:"insecure"`
	Environment string `toml:"-"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	ServiceName string
	Endpoint    string
	Insecure    string
}

// Finalize applies defaults and environment variable overrides.
func (c *Config) Finalize(env *Env) error {
	if c.ServiceName == "" {
		c.ServiceName = "greenhouse"
	}
	if env == nil {
		return nil
	}
	if env.ServiceName != "" {
		if v := os.Getenv(env.ServiceName); v != "" {
			c.ServiceName = v
		}
	}
	if env.Endpoint != "" {
		if v := os.Getenv(env.Endpoint); v != "" {
			c.Endpoint = v
		}
	}
	if env.Insecure != "" {
		if v := os.Getenv(env.Insecure); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.Insecure = b
			}
		}
	}
	return nil
}

// Merge overwrites fields from overlay. Insecure always applies.
func (c *Config) Merge(overlay *Config) {
	if overlay.ServiceName != "" {
		c.ServiceName = overlay.ServiceName
	}
	if overlay.Endpoint != "" {
		c.Endpoint = overlay.Endpoint
	}
	c.Insecure = overlay.Insecure
}
