package node

// Site is a candidate location for opening a fog node. Placement
// optimization selects a subset of sites; an opened site materializes as its
// Node with the site's uniform latency estimate.
type Site struct {
	// Node holds the parameters the node would have if the site is opened.
	Node Node `json:"node" yaml:"node"`
	// Latency is the uniform latency estimate to the site in seconds.
	Latency float64 `json:"latency" yaml:"latency"`
	// TaskLatency optionally refines the estimate per task ID. Tasks absent
	// from the map fall back to the uniform estimate.
	TaskLatency map[int]float64 `json:"task_latency,omitempty" yaml:"task_latency,omitempty"`
}

// LatencyTo returns the latency estimate between the site and the task.
func (s Site) LatencyTo(taskID int) float64 {
	if l, ok := s.TaskLatency[taskID]; ok {
		return l
	}
	return s.Latency
}

// Open materializes the site as a node with the given dense ID.
func (s Site) Open(id int) Node {
	n := s.Node
	n.ID = id
	n.Latency = s.Latency
	return n
}
