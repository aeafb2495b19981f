// Package workflow defines the task graph model of the scheduling engine.
// A Workflow is an immutable directed acyclic graph of Tasks assembled
// through a Builder, which validates identifiers, dependency endpoints and
// acyclicity before anything downstream sees the graph.
package workflow
