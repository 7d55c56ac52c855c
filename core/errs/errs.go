package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the tool.
var (
	// ErrNotFound indicates the remote store no longer has the item.
	ErrNotFound = errors.New("not found")

	// ErrRateLimited indicates the remote store rejected a request with 429.
	ErrRateLimited = errors.New("rate limited")
)

// ConfigError represents missing or malformed configuration. It is fatal
// and raised before any remote call is made.
type ConfigError struct {
	Missing []string
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("configuration error: missing %v", e.Missing)
	}
	return fmt.Sprintf("configuration error: %v", e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a ConfigError listing the missing keys.
func NewConfigError(missing ...string) *ConfigError {
	return &ConfigError{Missing: missing}
}

// TransportError represents a failure to reach the remote store at all:
// network unreachable, proxy failure, or an authentication rejection.
// Permanent marks failures that will not succeed on retry (bad credentials).
type TransportError struct {
	Op        string
	Err       error
	Permanent bool
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError wraps err as a TransportError for the given operation.
func NewTransportError(op string, err error) *TransportError {
	return &TransportError{Op: op, Err: err}
}

// FormatError represents a malformed input workbook, e.g. a missing
// sheet or required column. It is fatal and raised before classification.
type FormatError struct {
	Message string
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	return "format error: " + e.Message
}

// NewFormatError creates a FormatError with a formatted message.
func NewFormatError(format string, args ...any) *FormatError {
	return &FormatError{Message: fmt.Sprintf(format, args...)}
}

// RemoteError represents a per-item rejection by the remote store.
// StatusCode carries the HTTP status when known.
type RemoteError struct {
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("remote error (status %d): %s", e.StatusCode, e.Message)
	}
	return "remote error: " + e.Message
}

// Unwrap implements errors.Unwrap.
func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support so callers can match sentinels.
func (e *RemoteError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == 404
	case ErrRateLimited:
		return e.StatusCode == 429
	}
	return false
}

// NewRemoteError creates a RemoteError from an HTTP status and message.
func NewRemoteError(statusCode int, message string) *RemoteError {
	return &RemoteError{StatusCode: statusCode, Message: message}
}

// IsTransient reports whether err is worth retrying: network-level
// transport failures, 5xx responses, and rate limiting. Validation
// rejections (other 4xx) are permanent.
func IsTransient(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return !te.Permanent
	}
	var re *RemoteError
	if errors.As(err, &re) {
		return re.StatusCode >= 500 || re.StatusCode == 429
	}
	return false
}
