package sync

import "github.com/JaimeStill/greenhouse/pkg/sand"

// Prompt is a prompt file found under a step's prompts directory.
type Prompt struct {
	Name    string
	Path    string
	Content string
	Version int
	Updated bool
}

// Step is a step directory of a workflow.
type Step struct {
	Name        string
	Dir         string
	Remote      *sand.Resource
	Prompts     []Prompt
	Connectors  []string
	Description string
	Version     int
	Updated     bool
}

// Workflow is a directory under the workspace's workflows directory.
type Workflow struct {
	Name         string
	Description  string
	Path         string
	Steps        []Step
	InputSchema  string
	OutputSchema string
	StepVersion  string
	Tags         []string
	Updated      bool
}

// Stage is one entry of a workflow's stage graph.
type Stage struct {
	Name             string `json:"name"`
	Step             string `json:"step"`
	AbortOnError     bool   `json:"abortOnError"`
	Input            string `json:"input"`
	WorkflowRunInput bool   `json:"workflowRunInput,omitempty"`
	StageInput       *int   `json:"stageInput,omitempty"`
}

// WorkflowConfig is the publishable form of a workflow.
type WorkflowConfig struct {
	Stages       []Stage  `json:"stages"`
	InputSchema  string   `json:"inputSchema"`
	OutputSchema string   `json:"outputSchema"`
	StepVersion  string   `json:"step_version,omitempty"`
	Tags         []string `json:"tags"`
}

// Result lists the names of every resource published by a run.
type Result struct {
	Workflows []string `json:"workflows"`
	Steps     []string `json:"steps"`
	Prompts   []string `json:"prompts"`
}

// Total returns the number of published resources.
func (r Result) Total() int {
	return len(r.Workflows) + len(r.Steps) + len(r.Prompts)
}

type workflowFile struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	StepVersion string   `yaml:"step_version"`
	Tags        []string `yaml:"tags"`
}

type stepFile struct {
	Description *string  `yaml:"description"`
	Connectors  []string `yaml:"connectors"`
}
