// Package nodetree compiles a declarative primitives.MachineConfig into an
// immutable, indexed tree of StateNodes (§4.1). It also hosts the purely
// tree-shaped algebra (LCCA, exit sets, ancestor walks) shared by the
// transition algebra and microstep engine, since neither needs anything
// beyond the compiled tree plus the currently active configuration to
// compute them.
package nodetree

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/comalice/statechartx/internal/primitives"
)

// Transition is the normalized, resolved transition descriptor (§3):
// source/target are live *StateNode pointers rather than path strings, so
// selection and domain computation never re-walk the tree by string.
type Transition struct {
	Source    *StateNode
	EventType string
	Guard     *primitives.GuardDescriptor
	Actions   []primitives.ActionDescriptor
	Target    []*StateNode // nil => internal no-target transition
	Internal  bool
	Delay     any // set only on synthesized `after` transitions
}

// StateNode is one immutable node of the compiled tree.
type StateNode struct {
	ID      string
	Key     string
	Path    []string
	Type    primitives.StateType
	History primitives.HistoryKind // meaningful only when Type == History

	Parent *StateNode
	States *orderedmap.OrderedMap[string, *StateNode] // children keyed by Key, document order

	Order int // depth-first pre-order position, machine-wide

	Entry []primitives.ActionDescriptor
	Exit  []primitives.ActionDescriptor

	Transitions       []*Transition
	InitialTransition *Transition // compound nodes only

	Invoke []primitives.InvokeDescriptor

	Tags map[string]struct{}

	DoneData func(ctx *primitives.Context, event primitives.Event) any

	// HistoryDefault is the resolved default-entry target for a history
	// node (Type == History), used when no recorded HistoryValue exists yet.
	HistoryDefault []*StateNode
}

func (n *StateNode) IsAtomic() bool   { return n.Type == primitives.Atomic || n.Type == primitives.Final }
func (n *StateNode) IsCompound() bool { return n.Type == primitives.Compound }
func (n *StateNode) IsParallel() bool { return n.Type == primitives.Parallel }
func (n *StateNode) IsFinal() bool    { return n.Type == primitives.Final }
func (n *StateNode) IsHistory() bool  { return n.Type == primitives.History }

// Children returns the node's children in document order.
func (n *StateNode) Children() []*StateNode {
	if n.States == nil {
		return nil
	}
	out := make([]*StateNode, 0, n.States.Len())
	for pair := n.States.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Child looks up an immediate child by key.
func (n *StateNode) Child(key string) (*StateNode, bool) {
	if n.States == nil {
		return nil, false
	}
	return n.States.Get(key)
}

// HasTag reports whether the node carries the given tag.
func (n *StateNode) HasTag(tag string) bool {
	_, ok := n.Tags[tag]
	return ok
}

// Root walks up to the machine's root node.
func (n *StateNode) Root() *StateNode {
	cur := n
	for cur.Parent != nil {
		cur = cur.Parent
	}
	return cur
}
