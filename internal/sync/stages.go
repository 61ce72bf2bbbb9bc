package sync

import (
	"fmt"
	"strconv"
)

// BuildWorkflowConfig chains the workflow's steps into a linear stage
// graph. The first stage takes the run input and every later stage takes
// the previous stage's output. A step is pinned to the workflow's
// step_version when set, otherwise to its own version.
func BuildWorkflowConfig(wf Workflow) (WorkflowConfig, error) {
	stages := make([]Stage, 0, len(wf.Steps))
	for i, step := range wf.Steps {
		version := wf.StepVersion
		if version == "" {
			v := step.Version
			if v == 0 && step.Remote != nil {
				v = step.Remote.Version
			}
			if v != 0 {
				version = strconv.Itoa(v)
			}
		}
		if version == "" {
			return WorkflowConfig{}, fmt.Errorf("%w: %s has no version and the workflow sets no step_version", ErrMissingVersion, step.Name)
		}

		stage := Stage{
			Name:         step.Name,
			Step:         step.Name + ":" + version,
			AbortOnError: true,
		}
		if i == 0 {
			stage.Input = "runInput"
			stage.WorkflowRunInput = true
		} else {
			prev := i - 1
			stage.Input = fmt.Sprintf("stage%d", prev)
			stage.StageInput = &prev
		}
		stages = append(stages, stage)
	}

	cfg := WorkflowConfig{
		Stages:       stages,
		InputSchema:  wf.InputSchema,
		OutputSchema: wf.OutputSchema,
		StepVersion:  wf.StepVersion,
		Tags:         wf.Tags,
	}
	if cfg.InputSchema == "" {
		cfg.InputSchema = "{}"
	}
	if cfg.OutputSchema == "" {
		cfg.OutputSchema = "{}"
	}
	if cfg.Tags == nil {
		cfg.Tags = []string{}
	}
	return cfg, nil
}
