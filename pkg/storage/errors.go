package storage

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound indicates the blob or its container does not exist.
	ErrNotFound = errors.New("blob not found")
	// ErrEmptyKey indicates an empty blob key.
	ErrEmptyKey = errors.New("storage key must not be empty")
	// ErrInvalidKey indicates a key that is absolute or holds a relative path segment.
	ErrInvalidKey = errors.New("storage key contains invalid path segment")
)

// ValidateKey checks that key names a blob inside the container: non-empty,
// not rooted, and free of "." and ".." segments.
func ValidateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.HasPrefix(key, "/") {
		return ErrInvalidKey
	}
	for seg := range strings.SplitSeq(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return ErrInvalidKey
		}
	}
	return nil
}
