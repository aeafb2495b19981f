package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Workflow errors
const (
	// ErrCodeCyclicWorkflow indicates the workflow graph contains a cycle.
	ErrCodeCyclicWorkflow ErrorCode = "CYCLIC_WORKFLOW"
	// ErrCodeInvalidWorkflow indicates the workflow definition is malformed.
	ErrCodeInvalidWorkflow ErrorCode = "INVALID_WORKFLOW"
	// ErrCodeDuplicateTask indicates two tasks share the same identifier.
	ErrCodeDuplicateTask ErrorCode = "DUPLICATE_TASK"
	// ErrCodeUnknownTask indicates a dependency references a task that does not exist.
	ErrCodeUnknownTask ErrorCode = "UNKNOWN_TASK"
)

// Node pool errors
const (
	// ErrCodeEmptyPool indicates the node pool contains no nodes.
	ErrCodeEmptyPool ErrorCode = "EMPTY_NODE_POOL"
	// ErrCodeInvalidPool indicates the node pool definition is malformed.
	ErrCodeInvalidPool ErrorCode = "INVALID_NODE_POOL"
	// ErrCodeNoFeasibleSite indicates placement could not open enough candidate sites.
	ErrCodeNoFeasibleSite ErrorCode = "NO_FEASIBLE_SITE"
)

// Invocation errors
const (
	// ErrCodeBadAssignment indicates an assignment vector does not match the workflow.
	ErrCodeBadAssignment ErrorCode = "BAD_ASSIGNMENT"
	// ErrCodeNonTopologicalOrder indicates a decode order violates task precedence.
	ErrCodeNonTopologicalOrder ErrorCode = "NON_TOPOLOGICAL_ORDER"
	// ErrCodeInvalidConfig indicates a strategy or engine parameter is out of range.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	// ErrCodeUnknownStrategy indicates the requested strategy is not registered.
	ErrCodeUnknownStrategy ErrorCode = "UNKNOWN_STRATEGY"
)

// Input errors
const (
	// ErrCodeSpecParse indicates an experiment document could not be parsed.
	ErrCodeSpecParse ErrorCode = "SPEC_PARSE"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Service errors
const (
	// ErrCodeBusy indicates the scheduler cannot accept more concurrent runs.
	ErrCodeBusy ErrorCode = "SCHEDULER_BUSY"
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeBusy:     true,
	ErrCodeInternal: false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
