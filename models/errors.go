package models

import (
	"errors"
	"fmt"
)

var (
	ErrNetwork           = errors.New("network error")
	ErrCancelled         = errors.New("cancelled")
	ErrIncomplete        = errors.New("incomplete transfer")
	ErrSumsMismatch      = errors.New("checksum mismatch")
	ErrMalformedManifest = errors.New("malformed manifest")
	ErrUnknownVersion    = errors.New("unknown version")
	ErrNotInstalled      = errors.New("version not installed")
	ErrSpawn             = errors.New("process spawn failure")
)

// ExitError reports a child process that ran and exited with a non-zero code.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("game exited with code %d", e.Code)
}

func malformed(field string) error {
	return fmt.Errorf("%w: missing %s", ErrMalformedManifest, field)
}
