package errors

import (
	stderrors "errors"
)

// ErrorResponse is the JSON structure returned to clients.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody contains the error details sent to clients.
type ErrorBody struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Retryable bool                   `json:"retryable"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// ToResponse converts a SchedError to an ErrorResponse for JSON serialization.
func (e *SchedError) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error: ErrorBody{
			Code:      e.Code,
			Message:   e.Message,
			Retryable: e.Retryable,
			Details:   e.Details,
		},
	}
}

// IsSchedError checks if an error is a SchedError.
func IsSchedError(err error) bool {
	var schedErr *SchedError
	return stderrors.As(err, &schedErr)
}

// AsSchedError converts an error to a SchedError if possible.
func AsSchedError(err error) (*SchedError, bool) {
	var schedErr *SchedError
	if stderrors.As(err, &schedErr) {
		return schedErr, true
	}
	return nil, false
}

// CodeOf returns the error code carried by err, or ErrCodeInternal when err
// is not a SchedError.
func CodeOf(err error) ErrorCode {
	if schedErr, ok := AsSchedError(err); ok {
		return schedErr.Code
	}
	return ErrCodeInternal
}
