// Package logger provides the zap logger factory for the sync tool.
//
// Console encoding with colored levels is the default for interactive
// CLI use; json encoding is available for captured runs. Level "debug"
// switches to the zap development config for readable timestamps.
package logger
