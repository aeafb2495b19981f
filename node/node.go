package node

// Class tags a node as belonging to the fog tier or the cloud tier.
type Class string

const (
	// ClassFog marks a resource-constrained node close to the data source.
	ClassFog Class = "fog"
	// ClassCloud marks a remote node with ample capacity.
	ClassCloud Class = "cloud"
)

// Valid reports whether the class is one of the known tiers.
func (c Class) Valid() bool {
	return c == ClassFog || c == ClassCloud
}

// Node is one compute node. Nodes are value types and never mutated during
// a run; all transient scheduling state lives in the decoder.
type Node struct {
	// ID is the dense node identifier, 0..m-1 within a pool.
	ID int `json:"id" yaml:"id"`
	// Name is a human-readable label.
	Name string `json:"name" yaml:"name"`
	// Class is the tier the node belongs to.
	Class Class `json:"class" yaml:"class"`
	// MIPS is the processing capacity in million instructions per second.
	// Zero capacity makes every execution time infinite.
	MIPS float64 `json:"mips" yaml:"mips"`
	// Memory is the available memory in MB.
	Memory float64 `json:"memory" yaml:"memory"`
	// Bandwidth is the network bandwidth in MB/s. Zero bandwidth makes
	// every transfer infinite.
	Bandwidth float64 `json:"bandwidth" yaml:"bandwidth"`
	// Storage is the available storage in MB.
	Storage float64 `json:"storage" yaml:"storage"`
	// PEs is the number of processing elements.
	PEs int `json:"pes" yaml:"pes"`
	// CostRate is the monetary price of one busy second.
	CostRate float64 `json:"cost_rate" yaml:"cost_rate"`
	// Latency is the fixed per-message network latency in seconds.
	Latency float64 `json:"latency" yaml:"latency"`
	// PowerDraw is the power consumption while executing, in watts.
	PowerDraw float64 `json:"power_draw" yaml:"power_draw"`
}
