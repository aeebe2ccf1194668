package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/socialharvester/harvester/internal/api"
	"github.com/socialharvester/harvester/internal/jobsync"
)

// ErrorType defines the category of error for proper handling
type ErrorType int

const (
	ErrorTypeUserCancelled ErrorType = iota // Ctrl+C, 'q' - silent exit
	ErrorTypeValidation                     // Bad input - show error, no usage
	ErrorTypeAPI                            // Backend rejected or unreachable
	ErrorTypeFileSystem                     // Writing downloads, reading job files
	ErrorTypeConfiguration                  // Config file or flags
	ErrorTypeInternal                       // Unexpected
)

// UIError carries an error from a command or dashboard back to cobra along
// with how it should be presented.
type UIError struct {
	Err           error
	Type          ErrorType
	SuppressUsage bool // Don't show Cobra usage message
	SilentExit    bool // Already rendered, or should not be shown at all
}

func (e *UIError) Error() string {
	return e.Err.Error()
}

func (e *UIError) Unwrap() error {
	return e.Err
}

func newUIError(err error, typ ErrorType) *UIError {
	return &UIError{Err: err, Type: typ, SuppressUsage: true}
}

func NewUserCancelledError() *UIError {
	e := newUIError(errors.New("cancelled by user"), ErrorTypeUserCancelled)
	e.SilentExit = true
	return e
}

func NewValidationError(err error) *UIError    { return newUIError(err, ErrorTypeValidation) }
func NewAPIError(err error) *UIError           { return newUIError(err, ErrorTypeAPI) }
func NewFileSystemError(err error) *UIError    { return newUIError(err, ErrorTypeFileSystem) }
func NewConfigurationError(err error) *UIError { return newUIError(err, ErrorTypeConfiguration) }
func NewInternalError(err error) *UIError      { return newUIError(err, ErrorTypeInternal) }

// ClassifyError wraps err in a UIError based on where it came from.
// Errors that already are UIErrors are returned unchanged.
func ClassifyError(err error) *UIError {
	if err == nil {
		return nil
	}

	var uiErr *UIError
	if errors.As(err, &uiErr) {
		return uiErr
	}

	var apiErr *api.Error
	var validationErr *jobsync.ValidationError
	switch {
	case errors.Is(err, context.Canceled):
		return NewUserCancelledError()
	case errors.As(err, &validationErr):
		return NewValidationError(err)
	case errors.As(err, &apiErr):
		return NewAPIError(err)
	default:
		return NewAPIError(fmt.Errorf("request failed: %w", err))
	}
}
