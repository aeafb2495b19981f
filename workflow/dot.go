package workflow

import (
	"fmt"

	"github.com/emicklei/dot"
)

// DOT renders the workflow as a Graphviz document. Tasks appear as boxes
// annotated with length and deadline, grouped by dependency level so the
// layout follows the precedence structure.
func (w *Workflow) DOT() string {
	g := dot.NewGraph(dot.Directed)
	g.Attr("rankdir", "TB")

	nodes := make([]dot.Node, len(w.tasks))
	for li, level := range w.levels {
		sub := g.Subgraph(fmt.Sprintf("level-%d", li))
		sub.Attr("rank", "same")
		for _, id := range level {
			t := w.tasks[id]
			n := sub.Node(fmt.Sprintf("t%d", id))
			n.Attr("shape", "box")
			n.Attr("label", fmt.Sprintf("t%d\nlen %.0f\ndl %.1fs", id, t.Length, t.Deadline))
			nodes[id] = n
		}
	}
	for _, e := range w.edges {
		edge := g.Edge(nodes[e.From], nodes[e.To])
		if w.tasks[e.From].OutputSize > 0 {
			edge.Attr("label", fmt.Sprintf("%.0fMB", w.tasks[e.From].OutputSize))
		}
	}
	return g.String()
}
