package workflow

// Task is one unit of work in a workflow. Tasks are value types and never
// mutated after the workflow is built.
type Task struct {
	// ID is the dense task identifier, 0..n-1 within a workflow.
	ID int `json:"id" yaml:"id"`
	// Length is the computational demand in million instructions.
	Length float64 `json:"length" yaml:"length"`
	// InputSize is the data consumed by the task in MB.
	InputSize float64 `json:"input_size" yaml:"input_size"`
	// OutputSize is the data produced by the task in MB.
	OutputSize float64 `json:"output_size" yaml:"output_size"`
	// PEs is the number of processing elements the task requires.
	PEs int `json:"pes" yaml:"pes"`
	// Deadline is the absolute completion target in seconds of schedule time.
	Deadline float64 `json:"deadline" yaml:"deadline"`
}

// Edge represents a dependency: To consumes the output of From.
type Edge struct {
	From int `json:"from" yaml:"from"`
	To   int `json:"to" yaml:"to"`
}
