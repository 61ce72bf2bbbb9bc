package sync

import "errors"

var (
	ErrMissingAPIKey    = errors.New("SAND_API_KEY environment variable must be set")
	ErrMissingWorkspace = errors.New("GITHUB_WORKSPACE environment variable must be set")
	ErrMissingEventPath = errors.New("GITHUB_EVENT_PATH environment variable must be set")
	ErrNoWorkflows      = errors.New("no valid workflows found")
	ErrMissingVersion   = errors.New("step has no version")
)
