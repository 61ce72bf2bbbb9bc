package config

import "os"

const EnvPromptsDir = "GREENHOUSE_PROMPTS_DIR"

// PromptsConfig locates prompt overrides on disk. An empty Dir uses only
// the built-in prompts.
type PromptsConfig struct {
	Dir string `toml:"dir"`
}

// Finalize applies environment variable overrides.
func (c *PromptsConfig) Finalize() error {
	if v := os.Getenv(EnvPromptsDir); v != "" {
		c.Dir = v
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *PromptsConfig) Merge(overlay *PromptsConfig) {
	if overlay.Dir != "" {
		c.Dir = overlay.Dir
	}
}
