package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrConflict  = errors.New("conflict")
	ErrForbidden = errors.New("forbidden")
	ErrInvalid   = errors.New("invalid argument")
)

// DependencyError marks a failure of the media server or another upstream:
// unreachable, timed out, or an error response. Callers may retry later; it is
// not a programming defect.
type DependencyError struct {
	Action string
	Err    error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: upstream failure: %v", e.Action, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

func dependencyFailure(action string, err error) error {
	return &DependencyError{Action: action, Err: err}
}

func IsDependencyFailure(err error) bool {
	var de *DependencyError
	return errors.As(err, &de)
}
