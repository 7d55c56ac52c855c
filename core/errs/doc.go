// Package errs defines the error taxonomy shared by the sync tool.
//
// Fatal errors (ConfigError, TransportError, FormatError) abort the
// whole run. Per-item errors (RemoteError, ErrNotFound) are caught at
// the writer/engine boundary and aggregated into the final summary.
// IsTransient classifies errors for the writer's retry policy.
package errs
