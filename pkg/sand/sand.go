// Package sand wraps the registry command-line tool used to list and
// publish prompts, steps and workflows.
package sand

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

const (
	// EnvCLIPath overrides the executable used for registry commands.
	EnvCLIPath = "SAND_CLI_PATH"
	// DefaultCLI is the executable name used when EnvCLIPath is unset.
	DefaultCLI = "sand"
	// SyncDescription is attached to every resource pushed by the sync.
	SyncDescription = "Updated via GitHub sync"
)

// Kind names a registry resource collection.
type Kind string

const (
	Prompts   Kind = "prompts"
	Steps     Kind = "steps"
	Workflows Kind = "workflows"
)

// Validate returns ErrInvalidKind for unknown kinds.
func (k Kind) Validate() error {
	switch k {
	case Prompts, Steps, Workflows:
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidKind, k)
}

// Resource is a registry entry as reported by a list command.
type Resource struct {
	Name        string   `json:"name"`
	Version     int      `json:"version"`
	Content     string   `json:"content,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Published is the CLI's reply to a create or push command.
type Published struct {
	Version int  `json:"version"`
	DryRun  bool `json:"dry_run,omitempty"`
}

// CommandPath returns SAND_CLI_PATH when set, otherwise DefaultCLI.
func CommandPath() string {
	if p := os.Getenv(EnvCLIPath); p != "" {
		return p
	}
	return DefaultCLI
}

// Config configures a Client. Zero values select CommandPath, ExecRunner
// and slog.Default.
type Config struct {
	Path   string
	DryRun bool
	Runner Runner
	Logger *slog.Logger
}

// Client issues registry commands through a Runner.
type Client struct {
	path   string
	dryRun bool
	runner Runner
	logger *slog.Logger
}

// New creates a Client from cfg.
func New(cfg Config) *Client {
	path := cfg.Path
	if path == "" {
		path = CommandPath()
	}

	runner := cfg.Runner
	if runner == nil {
		runner = ExecRunner{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		path:   path,
		dryRun: cfg.DryRun,
		runner: runner,
		logger: logger.With("system", "sand"),
	}
}

// Latest returns the highest-version entry named name, or nil when the
// lookup fails or finds nothing.
func (c *Client) Latest(ctx context.Context, kind Kind, name string) (*Resource, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}

	result, err := c.runner.Run(ctx, c.path, ListArgs(kind, name)...)
	if err != nil {
		return nil, fmt.Errorf("run %s list: %w", kind, err)
	}
	if result.ExitCode != 0 {
		c.logger.Debug("list failed", "kind", kind, "name", name, "stderr", strings.TrimSpace(string(result.Stderr)))
		return nil, nil
	}

	var listing map[string][]Resource
	if err := json.Unmarshal(result.Stdout, &listing); err != nil {
		c.logger.Debug("list output not understood", "kind", kind, "name", name, "error", err)
		return nil, nil
	}

	var latest *Resource
	for i := range listing[string(kind)] {
		entry := &listing[string(kind)][i]
		if latest == nil || entry.Version > latest.Version {
			latest = entry
		}
	}
	return latest, nil
}

// CreatePrompt publishes a new prompt version.
func (c *Client) CreatePrompt(ctx context.Context, name, content string) (*Published, error) {
	return c.mutate(ctx, Prompts, name, PromptCreateArgs(name, content))
}

// PushStep publishes a step build.
func (c *Client) PushStep(ctx context.Context, push StepPush) (*Published, error) {
	return c.mutate(ctx, Steps, push.Name, push.Args())
}

// PushWorkflow publishes a workflow stage graph. stages is JSON-encoded.
func (c *Client) PushWorkflow(ctx context.Context, name string, stages any, tag string) (*Published, error) {
	args, err := WorkflowPushArgs(name, stages, tag)
	if err != nil {
		return nil, err
	}
	return c.mutate(ctx, Workflows, name, args)
}

func (c *Client) mutate(ctx context.Context, kind Kind, name string, args []string) (*Published, error) {
	if c.dryRun {
		c.logger.Info("dry run", "command", c.path+" "+strings.Join(args, " "))
		return &Published{Version: 1, DryRun: true}, nil
	}

	result, err := c.runner.Run(ctx, c.path, args...)
	if err != nil {
		return nil, fmt.Errorf("run %s update: %w", kind, err)
	}
	if result.ExitCode != 0 {
		return nil, fmt.Errorf(
			"%w: failed to update %s %s: %s",
			ErrCommandFailed, kind, name,
			strings.TrimSpace(string(result.Stderr)+" "+string(result.Stdout)),
		)
	}

	var published Published
	if err := json.Unmarshal(result.Stdout, &published); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidResponse, strings.TrimSpace(string(result.Stdout)))
	}
	return &published, nil
}
