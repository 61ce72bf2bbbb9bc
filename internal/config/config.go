// Package config loads the layered service configuration: config.toml, an
// optional config.<GREENHOUSE_ENV>.toml overlay, then GREENHOUSE_* environment
// variables.
package config

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/greenhouse/pkg/telemetry"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvPrefix = "GREENHOUSE_"

	EnvGreenhouseEnv             = "GREENHOUSE_ENV"
	EnvGreenhouseShutdownTimeout = "GREENHOUSE_SHUTDOWN_TIMEOUT"
	EnvGreenhouseVersion         = "GREENHOUSE_VERSION"
	EnvSecretPrefix              = "GREENHOUSE_SECRET_"
)

var telemetryEnv = &telemetry.Env{
	ServiceName: "GREENHOUSE_TELEMETRY_SERVICE_NAME",
	Endpoint:    "GREENHOUSE_TELEMETRY_ENDPOINT",
	Insecure:    "GREENHOUSE_TELEMETRY_INSECURE",
}

// Config is the root configuration for the greenhouse service and CLIs.
type Config struct {
	Server          ServerConfig      `toml:"server"`
	Logging         LoggingConfig     `toml:"logging"`
	Telemetry       telemetry.Config  `toml:"telemetry"`
	API             APIConfig         `toml:"api"`
	Prompts         PromptsConfig     `toml:"prompts"`
	Connectors      Connectors        `toml:"connectors"`
	Secrets         map[string]string `toml:"secrets"`
	ShutdownTimeout string            `toml:"shutdown_timeout"`
	Version         string            `toml:"version"`
}

// Env returns the GREENHOUSE_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvGreenhouseEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Secret resolves a named secret. GREENHOUSE_SECRET_<NAME> takes precedence
// over the [secrets] table.
func (c *Config) Secret(name string) (string, bool) {
	if v := os.Getenv(EnvSecretPrefix + EnvName(name)); v != "" {
		return v, true
	}
	v, ok := c.Secrets[name]
	return v, ok && v != ""
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	return LoadFrom(BaseConfigFile)
}

// LoadFrom is Load with an explicit base file path. The overlay is looked
// up next to the base file.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(path); err == nil {
		loaded, err := load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if overlay := overlayPath(path); overlay != "" {
		o, err := load(overlay)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", overlay, err)
		}
		cfg.Merge(o)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Logging.Merge(&overlay.Logging)
	c.Telemetry.Merge(&overlay.Telemetry)
	c.API.Merge(&overlay.API)
	c.Prompts.Merge(&overlay.Prompts)
	c.Connectors.Merge(&overlay.Connectors)

	if len(overlay.Secrets) > 0 {
		if c.Secrets == nil {
			c.Secrets = make(map[string]string, len(overlay.Secrets))
		}
		maps.Copy(c.Secrets, overlay.Secrets)
	}
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Logging.Finalize(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	c.Telemetry.Environment = c.Env()
	if err := c.Telemetry.Finalize(telemetryEnv); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Prompts.Finalize(); err != nil {
		return fmt.Errorf("prompts: %w", err)
	}
	if err := c.Connectors.Finalize(); err != nil {
		return fmt.Errorf("connectors: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvGreenhouseShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvGreenhouseVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

// EnvName converts a connector or secret name to its environment form:
// upper case with '-' and '.' replaced by '_'.
func EnvName(name string) string {
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(name))
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath(base string) string {
	env := os.Getenv(EnvGreenhouseEnv)
	if env == "" {
		return ""
	}

	path := filepath.Join(filepath.Dir(base), fmt.Sprintf(OverlayConfigPattern, env))
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}
