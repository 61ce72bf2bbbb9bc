package sand

import "errors"

var (
	// ErrCommandFailed indicates a mutating command exited nonzero.
	ErrCommandFailed = errors.New("sand command failed")
	// ErrInvalidResponse indicates the CLI printed output that is not valid JSON.
	ErrInvalidResponse = errors.New("invalid response from sand")
	// ErrInvalidKind indicates an unknown resource kind.
	ErrInvalidKind = errors.New("invalid resource type")
)
