// Package node defines the compute-node model of the scheduling engine:
// heterogeneous fog and cloud nodes, the validated Pool they form, the
// capability rule deciding which nodes can host which tasks, and the
// candidate Sites consumed by placement optimization.
package node
