// MachineConfig is the top-level declarative config tree handed to the
// compiler (§4.1).
package primitives

import "errors"

// MachineConfig defines the complete statechart configuration: a machine id
// (used as the id-generation prefix), the id delimiter, and the root node.
// The root is always a Compound (or Parallel) node; its Children are the
// machine's top-level states.
type MachineConfig struct {
	ID        string
	Delimiter string // defaults to "." when empty
	Root      *StateConfig
	Context   map[string]any // initial extended-state values
}

// Validate performs shape-level validation that does not require a fully
// compiled tree (explicit id collisions, dangling targets, etc. are the
// compiler's job in internal/nodetree; see Compile).
func (m *MachineConfig) Validate() error {
	if m.ID == "" {
		return errors.New("machine ID is required")
	}
	if m.Root == nil {
		return errors.New("machine root state is required")
	}
	return nil
}
