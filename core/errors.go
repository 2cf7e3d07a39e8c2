package core

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	errPlanningWeeks = errors.New("planning.projectWeeks must be > 0")
	errSprintWeeks   = errors.New("planning.sprintWeeks must be > 0 and <= planning.projectWeeks")
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// UpstreamError indicates that a call to an external service (planning AI,
// board provider) failed, timed out or returned an unusable payload.
type UpstreamError struct {
	Service string
	Err     error
}

func NewUpstreamError(service string, err error) error {
	return &UpstreamError{Service: service, Err: err}
}

func (err UpstreamError) Error() string {
	if err.Err == nil {
		return err.Service + " service failed"
	}
	return fmt.Sprintf("%s: %v", err.Service, err.Err)
}

func IsUpstream(err error) bool {
	_, ok := errors.Cause(err).(*UpstreamError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
