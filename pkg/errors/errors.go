// Package errors provides structured error handling for Scout.
// It defines sentinel errors, exit codes, and helpers for adding
// context, details, and suggestions to errors.
//
//nolint:revive // Package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
	"sort"
)

// Exit codes returned by the scout binary.
const (
	ExitSuccess     = 0 // Successful execution
	ExitGeneral     = 1 // General/unknown error
	ExitInput       = 2 // Invalid input
	ExitUnavailable = 3 // Name service or RPC endpoint unreachable
	ExitNotFound    = 4 // Resource not found
	ExitConfig      = 5 // Configuration problem
)

// ScoutError is the structured error type for Scout.
type ScoutError struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable message
	Details    map[string]string // Additional context
	Suggestion string            // Actionable suggestion for user
	Cause      error             // Underlying error
	ExitCode   int               // Exit code for CLI
}

func (e *ScoutError) Error() string {
	msg := e.Message

	// Include details in error message (sorted for deterministic output)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg = fmt.Sprintf("%s (%s: %s)", msg, k, e.Details[k])
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *ScoutError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for ScoutError.
func (e *ScoutError) Is(target error) bool {
	var t *ScoutError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinel errors.
var (
	ErrGeneral = &ScoutError{
		Code:     "GENERAL_ERROR",
		Message:  "an error occurred",
		ExitCode: ExitGeneral,
	}

	ErrInvalidInput = &ScoutError{
		Code:     "INVALID_INPUT",
		Message:  "invalid input",
		ExitCode: ExitInput,
	}

	ErrNotFound = &ScoutError{
		Code:     "NOT_FOUND",
		Message:  "resource not found",
		ExitCode: ExitNotFound,
	}

	// Search-specific errors.
	ErrEmptyInput = &ScoutError{
		Code:     "EMPTY_INPUT",
		Message:  "nothing to search for",
		ExitCode: ExitInput,
	}

	ErrInvalidFormat = &ScoutError{
		Code:     "INVALID_FORMAT",
		Message:  "input is not a transaction hash, address, or resolvable name",
		ExitCode: ExitInput,
	}

	ErrInvalidAddress = &ScoutError{
		Code:     "INVALID_ADDRESS",
		Message:  "invalid address format",
		ExitCode: ExitInput,
	}

	ErrInvalidName = &ScoutError{
		Code:     "INVALID_NAME",
		Message:  "invalid ENS name",
		ExitCode: ExitInput,
	}

	// Name service errors.
	ErrNameNotResolved = &ScoutError{
		Code:     "NAME_NOT_RESOLVED",
		Message:  "name does not resolve to an address",
		ExitCode: ExitNotFound,
	}

	ErrResolverUnavailable = &ScoutError{
		Code:     "RESOLVER_UNAVAILABLE",
		Message:  "name service lookup failed",
		ExitCode: ExitUnavailable,
	}

	ErrNetworkError = &ScoutError{
		Code:     "NETWORK_ERROR",
		Message:  "network communication failed",
		ExitCode: ExitUnavailable,
	}

	ErrSuperseded = &ScoutError{
		Code:     "SEARCH_SUPERSEDED",
		Message:  "search was replaced by a newer search",
		ExitCode: ExitGeneral,
	}

	// Config-specific errors.
	ErrConfigNotFound = &ScoutError{
		Code:     "CONFIG_NOT_FOUND",
		Message:  "configuration file not found",
		ExitCode: ExitConfig,
	}

	ErrConfigInvalid = &ScoutError{
		Code:     "CONFIG_INVALID",
		Message:  "configuration file is invalid",
		ExitCode: ExitConfig,
	}

	ErrCacheNotFound = &ScoutError{
		Code:     "CACHE_NOT_FOUND",
		Message:  "no cached data available",
		ExitCode: ExitNotFound,
	}
)

// New creates a new ScoutError with the given code and message.
func New(code, message string) *ScoutError {
	return &ScoutError{
		Code:     code,
		Message:  message,
		ExitCode: ExitGeneral,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)

	var se *ScoutError
	if errors.As(err, &se) {
		return &ScoutError{
			Code:       se.Code,
			Message:    fmt.Sprintf("%s: %s", msg, se.Message),
			Details:    se.Details,
			Suggestion: se.Suggestion,
			Cause:      err,
			ExitCode:   se.ExitCode,
		}
	}

	return &ScoutError{
		Code:     "GENERAL_ERROR",
		Message:  msg,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithCause attaches an underlying cause to a sentinel error while keeping its code.
func WithCause(sentinel *ScoutError, cause error) error {
	return &ScoutError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		Details:    sentinel.Details,
		Suggestion: sentinel.Suggestion,
		Cause:      cause,
		ExitCode:   sentinel.ExitCode,
	}
}

// WithDetails adds details to an error.
func WithDetails(err error, details map[string]string) error {
	if err == nil {
		return nil
	}

	var se *ScoutError
	if errors.As(err, &se) {
		return &ScoutError{
			Code:       se.Code,
			Message:    se.Message,
			Details:    details,
			Suggestion: se.Suggestion,
			Cause:      se.Cause,
			ExitCode:   se.ExitCode,
		}
	}

	return &ScoutError{
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		Details:  details,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithSuggestion adds a suggestion to an error.
func WithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}

	var se *ScoutError
	if errors.As(err, &se) {
		return &ScoutError{
			Code:       se.Code,
			Message:    se.Message,
			Details:    se.Details,
			Suggestion: suggestion,
			Cause:      se.Cause,
			ExitCode:   se.ExitCode,
		}
	}

	return &ScoutError{
		Code:       "GENERAL_ERROR",
		Message:    err.Error(),
		Suggestion: suggestion,
		Cause:      err,
		ExitCode:   ExitGeneral,
	}
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var se *ScoutError
	if errors.As(err, &se) {
		return se.ExitCode
	}

	return ExitGeneral
}

// Code returns the error code for an error.
func Code(err error) string {
	var se *ScoutError
	if errors.As(err, &se) {
		return se.Code
	}
	return "GENERAL_ERROR"
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience.
func As(err error, target any) bool {
	return errors.As(err, target)
}
