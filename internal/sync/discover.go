package sync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/JaimeStill/greenhouse/pkg/sand"
)

const (
	workflowsDir = "workflows"
	stepsDir     = "steps"
	promptsDir   = "prompts"
	configFile   = "config.yml"
	inputSchema  = "input.json"
	outputSchema = "output.json"
)

var stepPrefix = regexp.MustCompile(`^\d+_`)

// FormatStepName strips a leading "<digits>_" ordering prefix.
func FormatStepName(dir string) string {
	return stepPrefix.ReplaceAllString(dir, "")
}

// FindWorkflows lists the workflows of the workspace in directory order.
// A missing workflows directory yields no workflows.
func (s *Syncer) FindWorkflows(ctx context.Context, changed []string) ([]Workflow, error) {
	root := filepath.Join(s.cfg.Workspace, workflowsDir)
	dirs, err := subdirs(root)
	if err != nil {
		return nil, err
	}
	if dirs == nil {
		s.logger.Info("no workflows directory found", "path", root)
		return []Workflow{}, nil
	}

	workflows := make([]Workflow, 0, len(dirs))
	for _, dir := range dirs {
		wfDir := filepath.Join(root, dir)

		var cfg workflowFile
		if err := s.readYAML(filepath.Join(wfDir, configFile), &cfg); err != nil {
			s.logger.Warn("workflow config unreadable", "workflow", dir, "error", err)
		}

		wf := Workflow{
			Name:        cfg.Name,
			Description: cfg.Description,
			Path:        dir,
			StepVersion: cfg.StepVersion,
			Tags:        cfg.Tags,
		}
		if wf.Name == "" {
			wf.Name = dir
		}

		remote := s.latest(ctx, sand.Workflows, wf.Name)

		steps, err := s.FindSteps(ctx, wfDir, changed)
		if err != nil {
			return nil, err
		}
		wf.Steps = steps
		wf.InputSchema, wf.OutputSchema = s.schemas(wfDir)

		prefix := path.Join(workflowsDir, dir)
		wf.Updated = remote == nil ||
			changedUnder(changed, prefix, path.Join(prefix, stepsDir)) ||
			slices.ContainsFunc(steps, func(st Step) bool { return st.Updated })

		workflows = append(workflows, wf)
	}
	return workflows, nil
}

// FindSteps lists the steps under workflowDir/steps in directory order.
func (s *Syncer) FindSteps(ctx context.Context, workflowDir string, changed []string) ([]Step, error) {
	root := filepath.Join(workflowDir, stepsDir)
	dirs, err := subdirs(root)
	if err != nil {
		return nil, err
	}

	workflow := filepath.Base(workflowDir)
	steps := make([]Step, 0, len(dirs))
	for _, dir := range dirs {
		stepDir := filepath.Join(root, dir)
		name := FormatStepName(dir)
		remote := s.latest(ctx, sand.Steps, name)

		prefix := path.Join(workflowsDir, workflow, stepsDir, dir)
		prompts, err := s.FindPrompts(ctx, stepDir, prefix, changed)
		if err != nil {
			return nil, err
		}

		var cfg stepFile
		if err := s.readYAML(filepath.Join(stepDir, configFile), &cfg); err != nil {
			s.logger.Warn("step config unreadable", "step", name, "error", err)
		}

		step := Step{
			Name:       name,
			Dir:        stepDir,
			Remote:     remote,
			Prompts:    prompts,
			Connectors: cfg.Connectors,
		}

		switch {
		case cfg.Description != nil:
			step.Description = *cfg.Description
		case remote != nil && remote.Description != "":
			step.Description = remote.Description
		default:
			step.Description = fmt.Sprintf("Step %s in workflow %s", name, workflow)
		}

		step.Updated = remote == nil ||
			changedUnder(changed, prefix, path.Join(prefix, promptsDir)) ||
			slices.ContainsFunc(prompts, func(p Prompt) bool { return p.Updated })

		steps = append(steps, step)
	}
	return steps, nil
}

// FindPrompts lists the prompt files under stepDir/prompts. prefix is the
// step directory relative to the workspace, slash separated, as it appears
// in the changed-file list.
func (s *Syncer) FindPrompts(ctx context.Context, stepDir, prefix string, changed []string) ([]Prompt, error) {
	root := filepath.Join(stepDir, promptsDir)
	entries, err := os.ReadDir(root)
	if errors.Is(err, fs.ErrNotExist) {
		return []Prompt{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", root, err)
	}

	prompts := make([]Prompt, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		file := e.Name()
		name := strings.TrimSuffix(file, filepath.Ext(file))
		remote := s.latest(ctx, sand.Prompts, name)

		p := Prompt{
			Name:    name,
			Path:    path.Join(promptsDir, file),
			Updated: remote == nil || slices.Contains(changed, path.Join(prefix, promptsDir, file)),
		}

		if p.Updated {
			data, err := os.ReadFile(filepath.Join(root, file))
			if err != nil {
				return nil, fmt.Errorf("read prompt %s: %w", name, err)
			}
			p.Content = string(data)
		} else {
			p.Content = remote.Content
			p.Version = remote.Version
		}

		prompts = append(prompts, p)
	}
	return prompts, nil
}

func (s *Syncer) latest(ctx context.Context, kind sand.Kind, name string) *sand.Resource {
	r, err := s.registry.Latest(ctx, kind, name)
	if err != nil {
		s.logger.Warn("registry lookup failed", "kind", kind, "name", name, "error", err)
		return nil
	}
	return r
}

// schemas reads the first step's input schema and the last step's output
// schema. Comments in the files are stripped.
func (s *Syncer) schemas(workflowDir string) (input, output string) {
	dirs, err := subdirs(filepath.Join(workflowDir, stepsDir))
	if err != nil || len(dirs) == 0 {
		return "", ""
	}

	read := func(p string) string {
		data, err := os.ReadFile(p)
		if errors.Is(err, fs.ErrNotExist) {
			return ""
		}
		if err != nil {
			s.logger.Warn("schema unreadable", "path", p, "error", err)
			return ""
		}
		return string(jsonc.ToJSON(data))
	}

	root := filepath.Join(workflowDir, stepsDir)
	input = read(filepath.Join(root, dirs[0], inputSchema))
	output = read(filepath.Join(root, dirs[len(dirs)-1], outputSchema))
	return input, output
}

func (s *Syncer) readYAML(p string, v any) error {
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, v)
}

// subdirs returns the sorted directory names under root, or nil when root
// does not exist.
func subdirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", root, err)
	}

	dirs := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	return dirs, nil
}

// changedUnder reports whether any changed file lies inside dir but not
// inside excluded.
func changedUnder(changed []string, dir, excluded string) bool {
	return slices.ContainsFunc(changed, func(f string) bool {
		return strings.HasPrefix(f, dir+"/") && !strings.HasPrefix(f, excluded+"/")
	})
}
