// Compile turns a declarative primitives.MachineConfig into an immutable,
// indexed StateNode tree (§4.1).
package nodetree

import (
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/comalice/statechartx/internal/primitives"
)

// IDMap is the machine-wide id -> node index, ordered by document order.
type IDMap = orderedmap.OrderedMap[string, *StateNode]

type compiler struct {
	machineID string
	delimiter string
	ids       *IDMap
	order     int
	pending   []pendingNode
	root      *StateNode
}

// pendingNode pairs a compiled StateNode with the declarative config it came
// from, so the second pass (transition normalization, initial-transition and
// history-default resolution) can see Initial/On/Always/After/OnDone without
// re-walking or retaining config pointers on StateNode itself.
type pendingNode struct {
	node *StateNode
	cfg  *primitives.StateConfig
}

// Compile builds the node tree rooted at cfg.Root.
func Compile(cfg *primitives.MachineConfig) (*StateNode, *IDMap, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	delim := cfg.Delimiter
	if delim == "" {
		delim = "."
	}
	c := &compiler{
		machineID: cfg.ID,
		delimiter: delim,
		ids:       orderedmap.New[string, *StateNode](),
	}

	root, err := c.buildNode(cfg.Root, nil, nil)
	if err != nil {
		return nil, nil, err
	}
	c.root = root

	if err := c.normalizeTree(); err != nil {
		return nil, nil, err
	}

	return root, c.ids, nil
}

// buildNode creates the StateNode shells for cfg and its descendants,
// assigning document order and registering ids, in one depth-first pass.
func (c *compiler) buildNode(cfg *primitives.StateConfig, parent *StateNode, path []string) (*StateNode, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil state config under parent %v", path)
	}

	nodePath := append(append([]string(nil), path...), cfg.Key)
	id := cfg.ID
	if id == "" {
		id = c.machineID
		if len(nodePath) > 0 && !(len(nodePath) == 1 && nodePath[0] == "") {
			id = c.machineID + c.delimiter + strings.Join(trimEmpty(nodePath), c.delimiter)
		}
	}

	if _, exists := c.ids.Get(id); exists {
		return nil, fmt.Errorf("duplicate state id %q", id)
	}

	n := &StateNode{
		ID:       id,
		Key:      cfg.Key,
		Path:     nodePath,
		Type:     cfg.Type,
		History:  cfg.History,
		Parent:   parent,
		Order:    c.order,
		Entry:    append([]primitives.ActionDescriptor(nil), cfg.Entry...),
		Exit:     append([]primitives.ActionDescriptor(nil), cfg.Exit...),
		Invoke:   append([]primitives.InvokeDescriptor(nil), cfg.Invoke...),
		DoneData: cfg.DoneData,
	}
	c.order++

	if len(cfg.Tags) > 0 {
		n.Tags = make(map[string]struct{}, len(cfg.Tags))
		for _, t := range cfg.Tags {
			n.Tags[t] = struct{}{}
		}
	}

	if err := validateShape(cfg, n); err != nil {
		return nil, err
	}

	c.ids.Set(id, n)

	if len(cfg.States) > 0 {
		n.States = orderedmap.New[string, *StateNode]()
		for _, childCfg := range cfg.States {
			child, err := c.buildNode(childCfg, n, nodePath)
			if err != nil {
				return nil, err
			}
			n.States.Set(child.Key, child)
		}
	}

	// Stash the raw config on the node temporarily via a side table so the
	// second pass (transition normalization) can see Initial/On/Always/
	// After/OnDone without re-walking the declarative tree. We keep this
	// local to the compiler rather than on StateNode itself, since the
	// compiled tree is meant to be immutable and config-free once built.
	c.pending = append(c.pending, pendingNode{node: n, cfg: cfg})

	return n, nil
}

func trimEmpty(path []string) []string {
	out := make([]string, 0, len(path))
	for _, seg := range path {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

func validateShape(cfg *primitives.StateConfig, n *StateNode) error {
	switch cfg.Type {
	case primitives.Atomic, primitives.Final:
		if len(cfg.States) > 0 {
			return fmt.Errorf("state %q: atomic/final states cannot have children", n.ID)
		}
	case primitives.Compound:
		if len(cfg.States) == 0 {
			return fmt.Errorf("state %q: compound state requires children", n.ID)
		}
		if cfg.Initial == "" {
			return fmt.Errorf("state %q: compound state requires an initial child", n.ID)
		}
	case primitives.Parallel:
		if len(cfg.States) == 0 {
			return fmt.Errorf("state %q: parallel state requires children", n.ID)
		}
	case primitives.History:
		if len(cfg.States) > 0 {
			return fmt.Errorf("state %q: history pseudo-state cannot have children", n.ID)
		}
	default:
		return fmt.Errorf("state %q: invalid state type %q", n.ID, cfg.Type)
	}
	return nil
}
