// Package production provides production integrations: persistence, event publishing, visualization.
// Implements core interfaces using stdlib where possible.
package production

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/comalice/statechartx/internal/nodetree"
)

// DefaultVisualizer is the stdlib-only implementation of Visualizer, adapted
// from the teacher's declarative-config renderer to walk a compiled
// *nodetree.StateNode tree directly (the shape Machine.Root() exposes)
// instead of the pre-compilation MachineConfig/StateConfig tree.
type DefaultVisualizer struct{}

// ExportDOT generates Graphviz DOT source for the statechart rooted at
// root, highlighting every node whose id appears in active.
func (v *DefaultVisualizer) ExportDOT(root *nodetree.StateNode, active []string) string {
	var buf bytes.Buffer
	buf.WriteString(`digraph Statechart {
  rankdir=LR;
  node [shape=box, fontsize=10, style=rounded];
  edge [fontsize=9];
`)

	activeSet := make(map[string]bool, len(active))
	for _, id := range active {
		activeSet[id] = true
	}

	renderState(&buf, root, activeSet)
	for _, edge := range collectEdges(root) {
		buf.WriteString(fmt.Sprintf("  %q -> %q [label=%q];\n", edge.From, edge.To, edge.Label))
	}
	buf.WriteString("}\n")
	return buf.String()
}

// ExportJSON serializes the compiled node tree's shape (id, type,
// children, tags) to JSON — the declarative ActionDescriptor/func fields
// that can't round-trip through JSON are deliberately omitted here, unlike
// ExportDOT which only needs ids and edges.
func (v *DefaultVisualizer) ExportJSON(root *nodetree.StateNode) ([]byte, error) {
	return json.MarshalIndent(jsonNode(root), "", "  ")
}

type nodeView struct {
	ID       string      `json:"id"`
	Type     string      `json:"type"`
	Tags     []string    `json:"tags,omitempty"`
	Children []*nodeView `json:"children,omitempty"`
}

func jsonNode(n *nodetree.StateNode) *nodeView {
	view := &nodeView{ID: n.ID, Type: string(n.Type)}
	for tag := range n.Tags {
		view.Tags = append(view.Tags, tag)
	}
	for _, c := range n.Children() {
		view.Children = append(view.Children, jsonNode(c))
	}
	return view
}

// edge represents a transition edge.
type edge struct {
	From  string
	To    string
	Label string
}

func collectEdges(root *nodetree.StateNode) []edge {
	var edges []edge
	var walk func(n *nodetree.StateNode)
	walk = func(n *nodetree.StateNode) {
		for _, t := range n.Transitions {
			for _, target := range t.Target {
				label := t.EventType
				if label == "" {
					label = "always"
				}
				edges = append(edges, edge{From: n.ID, To: target.ID, Label: label})
			}
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(root)
	return edges
}

// renderState recursively renders nodes and subgraphs.
func renderState(buf *bytes.Buffer, n *nodetree.StateNode, active map[string]bool) {
	children := n.Children()
	if len(children) > 0 {
		clusterID := fmt.Sprintf("cluster_%s", sanitize(n.ID))
		buf.WriteString(fmt.Sprintf("  subgraph %s {\n", clusterID))
		style := ""
		if active[n.ID] {
			style = " style=filled fillcolor=orange"
		} else if n.IsParallel() {
			style = " style=filled fillcolor=lightblue"
		}
		buf.WriteString(fmt.Sprintf("    label=%q%s;\n", fmt.Sprintf("%s (%s)", n.ID, n.Type), style))
		buf.WriteString(fmt.Sprintf("    %q [label=%q shape=ellipse%s];\n", n.ID, n.ID, style))
		for _, child := range children {
			renderState(buf, child, active)
		}
		buf.WriteString("  }\n")
		return
	}

	style := ""
	if active[n.ID] {
		style = " style=filled fillcolor=lightgreen"
	}
	buf.WriteString(fmt.Sprintf("  %q [label=%q%s];\n", n.ID, n.ID, style))
}

func sanitize(id string) string {
	out := make([]byte, 0, len(id))
	for i := 0; i < len(id); i++ {
		c := id[i]
		if c == '.' || c == '#' || c == ' ' {
			out = append(out, '_')
			continue
		}
		out = append(out, c)
	}
	return string(out)
}
