package helpdesk

import (
	"fmt"
	"os"
	"time"
)

// Config holds Zendesk credentials. BaseURL overrides the subdomain-derived URL.
type Config struct {
	Subdomain string `toml:"subdomain"`
	Email     string `toml:"email"`
	Token     string `toml:"token"`
	BaseURL   string `toml:"base_url"`
	Timeout   string `toml:"timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Subdomain string
	Email     string
	Token     string
	BaseURL   string
	Timeout   string
}

// URL returns the API root for the account.
func (c *Config) URL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return fmt.Sprintf("https://%s.zendesk.com", c.Subdomain)
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Subdomain != "" {
		c.Subdomain = overlay.Subdomain
	}
	if overlay.Email != "" {
		c.Email = overlay.Email
	}
	if overlay.Token != "" {
		c.Token = overlay.Token
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

func (c *Config) loadEnv(env *Env) {
	pairs := []struct {
		name  string
		field *string
	}{
		{env.Subdomain, &c.Subdomain},
		{env.Email, &c.Email},
		{env.Token, &c.Token},
		{env.BaseURL, &c.BaseURL},
		{env.Timeout, &c.Timeout},
	}
	for _, p := range pairs {
		if p.name == "" {
			continue
		}
		if v := os.Getenv(p.name); v != "" {
			*p.field = v
		}
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}
