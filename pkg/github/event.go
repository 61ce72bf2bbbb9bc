package github

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// PullRequestEvent is the subset of an Actions pull_request event payload
// needed to address the pull request.
type PullRequestEvent struct {
	PullRequest *struct {
		Number int `json:"number"`
		Head   struct {
			Ref string `json:"ref"`
		} `json:"head"`
	} `json:"pull_request"`
	Repository struct {
		FullName string `json:"full_name"`
	} `json:"repository"`
}

// LoadEvent reads and decodes the event payload at path.
// Returns ErrNoPullRequest when the payload carries no pull_request.
func LoadEvent(path string) (*PullRequestEvent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read event: %w", err)
	}

	var event PullRequestEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	if event.PullRequest == nil {
		return nil, ErrNoPullRequest
	}

	return &event, nil
}

// Number returns the pull request number.
func (e *PullRequestEvent) Number() int {
	return e.PullRequest.Number
}

// Repo splits the repository full name into owner and name.
func (e *PullRequestEvent) Repo() (owner, name string, err error) {
	owner, name, ok := strings.Cut(e.Repository.FullName, "/")
	if !ok || owner == "" || name == "" {
		return "", "", fmt.Errorf("invalid repository name %q", e.Repository.FullName)
	}
	return owner, name, nil
}
