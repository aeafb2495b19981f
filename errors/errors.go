package errors

import (
	"fmt"
	"net/http"
)

// SchedError is the unified error type of the scheduling engine.
type SchedError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *SchedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *SchedError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *SchedError) WithCause(cause error) *SchedError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *SchedError) WithDetails(details map[string]any) *SchedError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *SchedError) WithDetail(key string, value any) *SchedError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new SchedError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *SchedError {
	return &SchedError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Workflow Error Constructors ---

// CyclicWorkflow creates a new SchedError for a workflow whose dependency
// graph contains a cycle. Processed counts how many tasks a topological
// traversal managed to order before stalling.
func CyclicWorkflow(processed, total int) *SchedError {
	return &SchedError{
		Code: ErrCodeCyclicWorkflow, Message: fmt.Sprintf("Workflow contains a cycle: ordered %d of %d tasks.", processed, total),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"ordered": processed, "tasks": total},
	}
}

// InvalidWorkflow creates a new SchedError for a malformed workflow definition.
func InvalidWorkflow(reason string) *SchedError {
	return &SchedError{
		Code: ErrCodeInvalidWorkflow, Message: fmt.Sprintf("Invalid workflow: %s", reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// DuplicateTask creates a new SchedError for a task identifier used twice.
func DuplicateTask(id int) *SchedError {
	return &SchedError{
		Code: ErrCodeDuplicateTask, Message: fmt.Sprintf("Task %d is defined more than once.", id),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"task": id},
	}
}

// UnknownTask creates a new SchedError for a dependency endpoint that does
// not name a defined task.
func UnknownTask(id int) *SchedError {
	return &SchedError{
		Code: ErrCodeUnknownTask, Message: fmt.Sprintf("Dependency references unknown task %d.", id),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"task": id},
	}
}

// --- Node Pool Error Constructors ---

// EmptyPool creates a new SchedError for a node pool with no nodes.
func EmptyPool() *SchedError {
	return &SchedError{
		Code: ErrCodeEmptyPool, Message: "Node pool is empty: at least one node is required.",
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// InvalidPool creates a new SchedError for a malformed node pool definition.
func InvalidPool(reason string) *SchedError {
	return &SchedError{
		Code: ErrCodeInvalidPool, Message: fmt.Sprintf("Invalid node pool: %s", reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// NoFeasibleSite creates a new SchedError for a placement request that asks
// for more open sites than the candidate set can provide.
func NoFeasibleSite(want, have int) *SchedError {
	return &SchedError{
		Code: ErrCodeNoFeasibleSite, Message: fmt.Sprintf("Cannot open %d sites from %d candidates.", want, have),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"requested": want, "candidates": have},
	}
}

// --- Invocation Error Constructors ---

// BadAssignment creates a new SchedError for an assignment vector that does
// not match the workflow or the node pool.
func BadAssignment(reason string) *SchedError {
	return &SchedError{
		Code: ErrCodeBadAssignment, Message: fmt.Sprintf("Bad assignment: %s", reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// InvalidOrder creates a new SchedError for a decode order that is not a
// permutation of the workflow's task IDs.
func InvalidOrder(reason string) *SchedError {
	return &SchedError{
		Code: ErrCodeNonTopologicalOrder, Message: fmt.Sprintf("Invalid decode order: %s", reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// NonTopologicalOrder creates a new SchedError for a decode order that visits
// a task before one of its parents.
func NonTopologicalOrder(task, parent int) *SchedError {
	return &SchedError{
		Code: ErrCodeNonTopologicalOrder, Message: fmt.Sprintf("Decode order visits task %d before its parent %d.", task, parent),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"task": task, "parent": parent},
	}
}

// InvalidConfig creates a new SchedError for a parameter that is out of range.
func InvalidConfig(field, reason string) *SchedError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &SchedError{
		Code: ErrCodeInvalidConfig, Message: fmt.Sprintf("Invalid configuration: %s", reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false, Details: details,
	}
}

// UnknownStrategy creates a new SchedError for a strategy name that is not
// registered.
func UnknownStrategy(name string) *SchedError {
	return &SchedError{
		Code: ErrCodeUnknownStrategy, Message: fmt.Sprintf("Unknown strategy %q.", name),
		HTTPStatus: http.StatusNotFound, Retryable: false,
		Details: map[string]any{"strategy": name},
	}
}

// --- Input Error Constructors ---

// SpecParse creates a new SchedError for an experiment document that could
// not be read or decoded.
func SpecParse(path string, cause error) *SchedError {
	return &SchedError{
		Code: ErrCodeSpecParse, Message: fmt.Sprintf("Cannot parse experiment spec %q.", path),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"path": path}, Cause: cause,
	}
}

// MissingField creates a new SchedError for a missing required field.
func MissingField(field string) *SchedError {
	return &SchedError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("Missing required field: %s", field),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"field": field},
	}
}

// --- Service Error Constructors ---

// Busy creates a new SchedError for a scheduler that is at its concurrent
// run capacity.
func Busy(capacity int) *SchedError {
	return &SchedError{
		Code: ErrCodeBusy, Message: "Scheduler is at capacity. Please retry shortly.",
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"capacity": capacity},
	}
}

// Internal creates a new SchedError for an internal error.
func Internal(cause error) *SchedError {
	return &SchedError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}
