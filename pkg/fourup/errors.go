package fourup

import (
	"errors"
	"fmt"
)

// Failure kinds. Every error returned by Convert matches exactly one of
// these with errors.Is.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrRenderFailure   = errors.New("render failure")
	ErrAssemblyFailure = errors.New("assembly failure")
)

// ConversionError describes a failed conversion.
type ConversionError struct {
	Kind error // one of the Err* kinds
	Page int   // 0-based source page for render failures, -1 otherwise
	Err  error
}

func (e *ConversionError) Error() string {
	if e.Page >= 0 {
		return fmt.Sprintf("%v: page %d: %v", e.Kind, e.Page+1, e.Err)
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

func (e *ConversionError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func invalidInput(err error) error {
	return &ConversionError{Kind: ErrInvalidInput, Page: -1, Err: err}
}

func renderFailure(page int, err error) error {
	return &ConversionError{Kind: ErrRenderFailure, Page: page, Err: err}
}

func assemblyFailure(err error) error {
	return &ConversionError{Kind: ErrAssemblyFailure, Page: -1, Err: err}
}
