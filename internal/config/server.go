package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

// ServerEnv maps ServerConfig fields to environment variable names.
type ServerEnv struct {
	Host            string
	Port            string
	ReadTimeout     string
	WriteTimeout    string
	ShutdownTimeout string
}

var serverEnv = &ServerEnv{
	Host:            "GREENHOUSE_SERVER_HOST",
	Port:            "GREENHOUSE_SERVER_PORT",
	ReadTimeout:     "GREENHOUSE_SERVER_READ_TIMEOUT",
	WriteTimeout:    "GREENHOUSE_SERVER_WRITE_TIMEOUT",
	ShutdownTimeout: "GREENHOUSE_SERVER_SHUTDOWN_TIMEOUT",
}

// ServerConfig configures the HTTP listener of `greenhouse serve`. Step
// invocations can hold a request open for a whole LLM round trip, so the
// write timeout defaults well above the read timeout.
type ServerConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	ReadTimeout     string `toml:"read_timeout"`
	WriteTimeout    string `toml:"write_timeout"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
}

// Addr returns the listen address.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *ServerConfig) ReadTimeoutDuration() time.Duration {
	return parseDuration(c.ReadTimeout)
}

func (c *ServerConfig) WriteTimeoutDuration() time.Duration {
	return parseDuration(c.WriteTimeout)
}

func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return parseDuration(c.ShutdownTimeout)
}

// Finalize applies defaults, GREENHOUSE_SERVER_* overrides, and validation.
func (c *ServerConfig) Finalize() error {
	c.loadDefaults()
	if err := c.loadEnv(serverEnv); err != nil {
		return err
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	for _, f := range c.stringFields(overlay) {
		if *f.src != "" {
			*f.dst = *f.src
		}
	}
}

type stringField struct {
	name     string
	dst, src *string
}

func (c *ServerConfig) stringFields(other *ServerConfig) []stringField {
	return []stringField{
		{"host", &c.Host, &other.Host},
		{"read_timeout", &c.ReadTimeout, &other.ReadTimeout},
		{"write_timeout", &c.WriteTimeout, &other.WriteTimeout},
		{"shutdown_timeout", &c.ShutdownTimeout, &other.ShutdownTimeout},
	}
}

func (c *ServerConfig) loadDefaults() {
	defaults := ServerConfig{
		Host:            "0.0.0.0",
		Port:            8080,
		ReadTimeout:     "1m",
		WriteTimeout:    "15m",
		ShutdownTimeout: "30s",
	}
	if c.Port == 0 {
		c.Port = defaults.Port
	}
	for _, f := range c.stringFields(&defaults) {
		if *f.dst == "" {
			*f.dst = *f.src
		}
	}
}

func (c *ServerConfig) loadEnv(env *ServerEnv) error {
	if v := os.Getenv(env.Port); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", env.Port, err)
		}
		c.Port = port
	}

	overrides := ServerConfig{
		Host:            os.Getenv(env.Host),
		ReadTimeout:     os.Getenv(env.ReadTimeout),
		WriteTimeout:    os.Getenv(env.WriteTimeout),
		ShutdownTimeout: os.Getenv(env.ShutdownTimeout),
	}
	c.Merge(&overrides)
	return nil
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	for _, f := range c.stringFields(c) {
		if f.name == "host" {
			continue
		}
		if _, err := time.ParseDuration(*f.dst); err != nil {
			return fmt.Errorf("invalid %s: %w", f.name, err)
		}
	}
	return nil
}

func parseDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
