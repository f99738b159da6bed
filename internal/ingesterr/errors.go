package ingesterr

import (
	"errors"
	"fmt"
)

// #region sentinels

// ErrNotFound marks a missing directory, file, identifier or indicator key.
var ErrNotFound = errors.New("not found")

// #endregion sentinels

// #region not-found

// NotFoundError names the resource that could not be located.
type NotFoundError struct {
	Kind string // "category" | "directory" | "file" | "indicator" | "antibody"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

// Is lets errors.Is(err, ErrNotFound) match any NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NotFound builds a NotFoundError.
func NotFound(kind, name string) error {
	return &NotFoundError{Kind: kind, Name: name}
}

// IsNotFound reports whether err is a not-found condition.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// #endregion not-found

// #region parse-error

// ParseError attributes an unexpected failure to the resource being processed.
type ParseError struct {
	Resource string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Resource, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Wrap attributes err to resource. Not-found errors and nil pass through unchanged.
func Wrap(resource string, err error) error {
	if err == nil || IsNotFound(err) {
		return err
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return err
	}
	return &ParseError{Resource: resource, Err: err}
}

// #endregion parse-error
