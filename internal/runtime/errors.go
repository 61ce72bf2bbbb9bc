package runtime

import "errors"

var (
	// ErrConnectorNotFound indicates no connector is declared or registered under a name.
	ErrConnectorNotFound = errors.New("connector not found")
	// ErrConnectorKind indicates a connector exists under the name but is a different kind.
	ErrConnectorKind = errors.New("connector kind mismatch")
	// ErrSecretNotFound indicates a secret is neither configured nor set in the environment.
	ErrSecretNotFound = errors.New("secret not found")
)
