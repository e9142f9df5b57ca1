package nodetree

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/comalice/statechartx/internal/primitives"
)

// normalizeTree runs the second compilation pass over every node recorded
// during buildNode: it reduces On/Always/After/OnDone/Invoke-onDone/onError
// into each node's uniform Transitions list, resolves target path strings
// into live node pointers, and builds the initial-transition descriptor for
// every compound node plus the default-entry target for every history node.
func (c *compiler) normalizeTree() error {
	for _, p := range c.pending {
		if err := c.normalizeTransitions(p.node, p.cfg); err != nil {
			return err
		}
	}
	for _, p := range c.pending {
		if p.node.IsCompound() {
			if err := c.buildInitialTransition(p.node, p.cfg); err != nil {
				return err
			}
		}
		if p.node.IsHistory() {
			if err := c.buildHistoryDefault(p.node, p.cfg); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *compiler) normalizeTransitions(n *StateNode, cfg *primitives.StateConfig) error {
	var raw []primitives.TransitionConfig

	eventKeys := make([]string, 0, len(cfg.On))
	for ev := range cfg.On {
		eventKeys = append(eventKeys, ev)
	}
	sort.Strings(eventKeys)
	for _, ev := range eventKeys {
		for _, t := range cfg.On[ev] {
			t.Event = ev
			raw = append(raw, t)
		}
	}

	for _, t := range cfg.Always {
		t.Event = ""
		raw = append(raw, t)
	}

	delayKeys := make([]string, 0, len(cfg.After))
	for ref := range cfg.After {
		delayKeys = append(delayKeys, ref)
	}
	sort.Strings(delayKeys)
	for _, ref := range delayKeys {
		t := cfg.After[ref]
		eventType := primitives.AfterEvent(ref, n.ID)
		t.Event = eventType
		n.Entry = append(n.Entry, primitives.SendAction{
			EventType: eventType,
			To:        primitives.ToSelf(),
			Delay:     parseDelay(ref),
			ID:        eventType,
		})
		n.Exit = append(n.Exit, primitives.CancelAction{SendID: eventType})
		raw = append(raw, t)
	}

	for _, t := range cfg.OnDone {
		t.Event = primitives.DoneStateEvent(n.ID)
		raw = append(raw, t)
	}

	for _, inv := range cfg.Invoke {
		if inv.OnDone != nil {
			t := *inv.OnDone
			t.Event = primitives.DoneInvokeEvent(inv.ID)
			raw = append(raw, t)
		}
		if inv.OnError != nil {
			t := *inv.OnError
			t.Event = primitives.ErrorPlatformEvent(inv.ID)
			raw = append(raw, t)
		}
	}

	for _, t := range raw {
		transition, err := c.buildTransition(n, t)
		if err != nil {
			return err
		}
		n.Transitions = append(n.Transitions, transition)
	}
	return nil
}

func parseDelay(ref string) any {
	if ms, err := strconv.Atoi(ref); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return ref
}

func (c *compiler) buildTransition(source *StateNode, t primitives.TransitionConfig) (*Transition, error) {
	internal := t.Internal
	if !internal && len(t.Target) > 0 {
		internal = true
		for _, raw := range t.Target {
			if !strings.HasPrefix(raw, c.delimiter) {
				internal = false
				break
			}
		}
	}

	var targets []*StateNode
	for _, raw := range t.Target {
		target, err := c.resolveTarget(raw, source)
		if err != nil {
			return nil, fmt.Errorf("transition %q on %q: %w", t.Event, source.ID, err)
		}
		targets = append(targets, target)
	}

	return &Transition{
		Source:    source,
		EventType: t.Event,
		Guard:     t.Guard,
		Actions:   t.Actions,
		Target:    targets,
		Internal:  internal,
	}, nil
}

// resolveTarget implements the §4.1 target resolution rules: `#id` is a
// direct id-map lookup, a leading-delimiter path is absolute from the
// machine root, and anything else is a (possibly dotted) path relative to
// the transition's source's parent.
func (c *compiler) resolveTarget(raw string, source *StateNode) (*StateNode, error) {
	if raw == "" {
		return nil, fmt.Errorf("empty target path")
	}
	if strings.HasPrefix(raw, "#") {
		node, ok := c.ids.Get(raw[1:])
		if !ok {
			return nil, fmt.Errorf("no such state id %q", raw[1:])
		}
		return node, nil
	}
	if strings.HasPrefix(raw, c.delimiter) {
		return c.resolvePath(c.root, strings.TrimPrefix(raw, c.delimiter))
	}
	base := source.Parent
	if base == nil {
		base = source
	}
	return c.resolvePath(base, raw)
}

func (c *compiler) resolvePath(base *StateNode, path string) (*StateNode, error) {
	cur := base
	for _, seg := range strings.Split(path, c.delimiter) {
		child, ok := cur.Child(seg)
		if !ok {
			return nil, fmt.Errorf("no such state %q under %q", seg, cur.ID)
		}
		cur = child
	}
	return cur, nil
}

// buildInitialTransition resolves cfg.Initial (a child key, `#id`, or a
// dotted descendant path rooted at n) into n's InitialTransition. The
// result must be a proper descendant of n, or construction fails.
func (c *compiler) buildInitialTransition(n *StateNode, cfg *primitives.StateConfig) error {
	if cfg.Initial == "" {
		return fmt.Errorf("state %q: compound state requires an initial child", n.ID)
	}

	var target *StateNode
	var err error
	if strings.HasPrefix(cfg.Initial, "#") {
		var ok bool
		target, ok = c.ids.Get(cfg.Initial[1:])
		if !ok {
			return fmt.Errorf("state %q: initial target %q not found", n.ID, cfg.Initial)
		}
	} else {
		target, err = c.resolvePath(n, cfg.Initial)
		if err != nil {
			return fmt.Errorf("state %q: initial target: %w", n.ID, err)
		}
	}

	if !IsProperDescendant(target, n) {
		return fmt.Errorf("state %q: initial target %q must be a descendant", n.ID, cfg.Initial)
	}

	n.InitialTransition = &Transition{
		Source: n,
		Target: []*StateNode{target},
	}
	return nil
}

// buildHistoryDefault resolves a history pseudo-state's default-entry target
// (cfg.Target), using the same resolution rules as a regular transition
// target sourced from the history node itself.
func (c *compiler) buildHistoryDefault(n *StateNode, cfg *primitives.StateConfig) error {
	if cfg.Target == "" {
		return nil
	}
	target, err := c.resolveTarget(cfg.Target, n)
	if err != nil {
		return fmt.Errorf("history state %q: default target: %w", n.ID, err)
	}
	n.HistoryDefault = []*StateNode{target}
	return nil
}
