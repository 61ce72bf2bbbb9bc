// Package sync publishes the workflows, steps and prompts of a checked-out
// repository to the workflow registry. Only resources changed by the
// triggering pull request, or missing from the registry, are published.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/JaimeStill/greenhouse/pkg/github"
	"github.com/JaimeStill/greenhouse/pkg/sand"
)

// Registry is the subset of the registry CLI used by a sync.
type Registry interface {
	Latest(ctx context.Context, kind sand.Kind, name string) (*sand.Resource, error)
	CreatePrompt(ctx context.Context, name, content string) (*sand.Published, error)
	PushStep(ctx context.Context, push sand.StepPush) (*sand.Published, error)
	PushWorkflow(ctx context.Context, name string, stages any, tag string) (*sand.Published, error)
}

// Syncer runs one sync against a workspace.
type Syncer struct {
	cfg      Config
	registry Registry
	logger   *slog.Logger
}

// New creates a Syncer. cfg must pass Validate.
func New(cfg Config, registry Registry, logger *slog.Logger) (*Syncer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Syncer{
		cfg:      cfg,
		registry: registry,
		logger:   logger.With("system", "sync"),
	}, nil
}

// Sync discovers the workspace and publishes what changed.
func (s *Syncer) Sync(ctx context.Context) (Result, []Workflow, error) {
	workflows, err := s.Discover(ctx)
	if err != nil {
		return Result{}, nil, err
	}
	return s.Publish(ctx, workflows), workflows, nil
}

// Discover lists the workspace's workflows with their change flags set
// against the triggering pull request and the registry.
func (s *Syncer) Discover(ctx context.Context) ([]Workflow, error) {
	changed := s.ChangedFiles(ctx)

	workflows, err := s.FindWorkflows(ctx, changed)
	if err != nil {
		return nil, err
	}
	if len(workflows) == 0 {
		return nil, ErrNoWorkflows
	}
	return workflows, nil
}

// Publish pushes the changed resources of workflows: prompts first, then
// their step, then the workflow. A failed publish is logged and the
// resource skipped.
func (s *Syncer) Publish(ctx context.Context, workflows []Workflow) Result {
	result := Result{Workflows: []string{}, Steps: []string{}, Prompts: []string{}}
	for i := range workflows {
		s.publish(ctx, &workflows[i], &result)
	}
	return result
}

func (s *Syncer) publish(ctx context.Context, wf *Workflow, result *Result) {
	for i := range wf.Steps {
		step := &wf.Steps[i]

		for j := range step.Prompts {
			prompt := &step.Prompts[j]
			if !prompt.Updated {
				continue
			}
			published, err := s.registry.CreatePrompt(ctx, prompt.Name, prompt.Content)
			if err != nil {
				s.logger.Error("prompt update failed", "prompt", prompt.Name, "error", err)
				continue
			}
			prompt.Version = published.Version
			result.Prompts = append(result.Prompts, prompt.Name)
		}

		if !step.Updated {
			continue
		}
		published, err := s.registry.PushStep(ctx, s.stepPush(wf, step))
		if err != nil {
			s.logger.Error("step update failed", "step", step.Name, "error", err)
			continue
		}
		step.Version = published.Version
		result.Steps = append(result.Steps, step.Name)
	}

	if !wf.Updated {
		return
	}

	cfg, err := BuildWorkflowConfig(*wf)
	if err != nil {
		s.logger.Error("workflow update failed", "workflow", wf.Name, "error", err)
		return
	}

	tag := s.cfg.Branch
	if len(cfg.Tags) > 0 {
		tag = cfg.Tags[0]
	}
	if _, err := s.registry.PushWorkflow(ctx, wf.Name, cfg.Stages, tag); err != nil {
		s.logger.Error("workflow update failed", "workflow", wf.Name, "error", err)
		return
	}
	result.Workflows = append(result.Workflows, wf.Name)
}

func (s *Syncer) stepPush(wf *Workflow, step *Step) sand.StepPush {
	tag := wf.StepVersion
	if tag == "" {
		tag = s.cfg.Branch
	}
	if step.Remote != nil && len(step.Remote.Tags) > 0 {
		tag = step.Remote.Tags[0]
	}

	refs := make([]sand.PromptRef, 0, len(step.Prompts))
	for _, p := range step.Prompts {
		refs = append(refs, sand.PromptRef{Name: p.Name, Version: p.Version})
	}

	return sand.StepPush{
		Name:       step.Name,
		File:       relativePath(step.Dir),
		Tag:        tag,
		Prompts:    refs,
		Connectors: step.Connectors,
	}
}

// ChangedFiles lists the files changed by the pull request that triggered
// the run. Every failure is logged and yields an empty list.
func (s *Syncer) ChangedFiles(ctx context.Context) []string {
	if s.cfg.EventPath == "" {
		s.logger.Info("no event data found")
		return []string{}
	}

	event, err := github.LoadEvent(s.cfg.EventPath)
	if err != nil {
		if errors.Is(err, github.ErrNoPullRequest) {
			s.logger.Info("no pull request data found in event")
		} else {
			s.logger.Warn("event data unreadable", "error", err)
		}
		return []string{}
	}

	client, err := s.github()
	if err != nil {
		s.logger.Info("no github token found")
		return []string{}
	}

	owner, repo, err := event.Repo()
	if err != nil {
		s.logger.Warn("event repository unreadable", "error", err)
		return []string{}
	}

	files, err := client.ListPullRequestFiles(ctx, owner, repo, event.Number())
	if err != nil {
		s.logger.Warn("pull request files unavailable", "error", err)
		return []string{}
	}

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Filename)
	}
	s.logger.Info("pull request files", "count", len(names), "files", names)
	return names
}

// PostComment posts body on the triggering pull request.
func (s *Syncer) PostComment(ctx context.Context, body string) error {
	return PostComment(ctx, s.cfg, body, s.logger)
}

// PostComment posts body on the pull request named by cfg's event payload.
// It does not require a valid Config so failures can still be reported.
func PostComment(ctx context.Context, cfg Config, body string, logger *slog.Logger) error {
	if cfg.EventPath == "" {
		return ErrMissingEventPath
	}

	event, err := github.LoadEvent(cfg.EventPath)
	if err != nil {
		return err
	}
	owner, repo, err := event.Repo()
	if err != nil {
		return err
	}

	client, err := github.NewClient(github.Config{
		BaseURL: cfg.GitHubAPIURL,
		Token:   cfg.GitHubToken,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	if _, err := client.CreateIssueComment(ctx, owner, repo, event.Number(), body); err != nil {
		return fmt.Errorf("failed to post comment: %w", err)
	}
	return nil
}

func (s *Syncer) github() (*github.Client, error) {
	return github.NewClient(github.Config{
		BaseURL: s.cfg.GitHubAPIURL,
		Token:   s.cfg.GitHubToken,
		Logger:  s.logger,
	})
}

func relativePath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil {
		return path
	}
	return rel
}
