// Package errors provides unified error handling for the scheduling engine.
// It implements structured error types with machine-readable codes, HTTP
// status mapping for the service surface, and retryable detection.
package errors
