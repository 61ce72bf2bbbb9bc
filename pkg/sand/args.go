package sand

import (
	"encoding/json"
	"fmt"
)

// PromptRef pins a prompt version attached to a step.
type PromptRef struct {
	Name    string
	Version int
}

func (r PromptRef) String() string {
	return fmt.Sprintf("%s:%d", r.Name, r.Version)
}

// StepPush describes a step build to publish.
type StepPush struct {
	Name       string
	File       string
	Tag        string
	Prompts    []PromptRef
	Connectors []string
}

// Args returns the push command arguments.
func (p StepPush) Args() []string {
	args := []string{
		"steps", "push", "docker",
		"--name", p.Name,
		"--description", SyncDescription,
		"--file", p.File,
		"--sync",
		"--tag", p.Tag,
		"--json",
	}
	for _, prompt := range p.Prompts {
		args = append(args, "--prompt", prompt.String())
	}
	for _, connector := range p.Connectors {
		args = append(args, "--connector", connector)
	}
	return args
}

// ListArgs returns the arguments that list every version of name.
func ListArgs(kind Kind, name string) []string {
	return []string{string(kind), "list", "--name", name, "--json"}
}

// PromptCreateArgs returns the arguments that publish a prompt version.
func PromptCreateArgs(name, content string) []string {
	return []string{"prompts", "create", "--content", content, "--name", name, "--json"}
}

// WorkflowPushArgs returns the arguments that publish a workflow stage graph.
func WorkflowPushArgs(name string, stages any, tag string) ([]string, error) {
	encoded, err := json.Marshal(stages)
	if err != nil {
		return nil, fmt.Errorf("encode stages: %w", err)
	}
	return []string{
		"workflows", "push",
		"--name", name,
		"--description", SyncDescription,
		"--stages", string(encoded),
		"--tag", tag,
		"--json",
	}, nil
}
