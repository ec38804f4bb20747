package errors

import (
	stderrors "errors"
	"fmt"

	"likertlab/domain/core"
	"likertlab/domain/stage"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Stage   stage.StageName
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	prefix := e.Message
	if e.Stage != "" {
		prefix = fmt.Sprintf("[%s] %s", e.Stage, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", prefix, e.Cause)
	}
	return prefix
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Stage:   appErr.Stage,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeFor(err),
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// InStage attributes err to a pipeline stage, classifying it by its domain cause
func InStage(name stage.StageName, err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) && appErr.Stage == name {
		return err
	}
	return &AppError{
		Code:    CodeFor(err),
		Stage:   name,
		Message: fmt.Sprintf("stage %s failed", name),
		Cause:   err,
	}
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    code,
			Stage:   appErr.Stage,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// GetStage returns the stage an error was raised in, if any
func GetStage(err error) stage.StageName {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Stage
	}
	return ""
}

// CodeFor maps domain sentinel errors onto error codes
func CodeFor(err error) string {
	switch {
	case core.IsParseError(err):
		return CodeParseError
	case core.IsFilterError(err):
		return CodeFilterError
	case core.IsDegenerateSampleError(err):
		return CodeDegenerateSample
	case core.IsConvergenceError(err):
		return CodeConvergence
	default:
		return CodeInternalError
	}
}

// Predefined error codes
const (
	CodeConfigInvalid    = "CONFIG_INVALID"
	CodeParseError       = "PARSE_ERROR"
	CodeFilterError      = "FILTER_ERROR"
	CodeDegenerateSample = "DEGENERATE_SAMPLE"
	CodeConvergence      = "CONVERGENCE_ERROR"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeInternalError    = "INTERNAL_ERROR"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

