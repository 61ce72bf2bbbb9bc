package sync

import (
	"os"

	"github.com/JaimeStill/greenhouse/pkg/github"
	"github.com/JaimeStill/greenhouse/pkg/sand"
)

// Config holds the environment of a sync run.
type Config struct {
	Workspace    string
	EventPath    string
	GitHubToken  string
	APIKey       string
	CLIPath      string
	GitHubAPIURL string
	Branch       string
	DryRun       bool
}

// Env maps Config fields to environment variable names.
type Env struct {
	Workspace    string
	EventPath    string
	GitHubToken  string
	APIKey       string
	CLIPath      string
	GitHubAPIURL string
}

var defaultEnv = Env{
	Workspace:    "GITHUB_WORKSPACE",
	EventPath:    "GITHUB_EVENT_PATH",
	GitHubToken:  "GITHUB_TOKEN",
	APIKey:       "SAND_API_KEY",
	CLIPath:      sand.EnvCLIPath,
	GitHubAPIURL: "GITHUB_API_URL",
}

// LoadConfig reads the run environment for branch.
func LoadConfig(branch string, dryRun bool) Config {
	c := Config{Branch: branch, DryRun: dryRun}
	c.loadEnv(&defaultEnv)
	c.loadDefaults()
	return c
}

func (c *Config) loadEnv(env *Env) {
	c.Workspace = os.Getenv(env.Workspace)
	c.EventPath = os.Getenv(env.EventPath)
	c.GitHubToken = os.Getenv(env.GitHubToken)
	c.APIKey = os.Getenv(env.APIKey)
	c.CLIPath = os.Getenv(env.CLIPath)
	c.GitHubAPIURL = os.Getenv(env.GitHubAPIURL)
}

func (c *Config) loadDefaults() {
	if c.CLIPath == "" {
		c.CLIPath = sand.DefaultCLI
	}
	if c.GitHubAPIURL == "" {
		c.GitHubAPIURL = github.DefaultBaseURL
	}
}

// Validate checks the API key first, then the workspace.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Workspace == "" {
		return ErrMissingWorkspace
	}
	return nil
}
