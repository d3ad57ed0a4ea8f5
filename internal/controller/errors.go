package controller

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyURL     = errors.New("please enter a valid video URL")
	ErrNotDirectory = errors.New("please choose a valid folder")
	ErrBadFormat    = errors.New("unknown format")
)

// ValidationError rejects an Add before any job is created.
type ValidationError struct {
	Field  string // "url", "output_dir" or "format"
	Value  string
	Reason error
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %v", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Reason
}

// Title is the short heading shown above the warning in the UI.
func (e *ValidationError) Title() string {
	switch e.Field {
	case "url":
		return "Missing URL"
	case "output_dir":
		return "Invalid Path"
	default:
		return "Invalid Input"
	}
}
