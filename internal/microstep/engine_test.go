package microstep

import (
	"testing"
	"time"

	"github.com/comalice/statechartx/internal/nodetree"
	"github.com/comalice/statechartx/internal/primitives"
	"github.com/stretchr/testify/require"
)

// emptyActionRegistry resolves nothing, letting tests exercise the "action
// not registered" error path without a nil-interface panic.
type emptyActionRegistry struct{}

func (emptyActionRegistry) Action(string) (func(ctx *primitives.Context, event primitives.Event) error, bool) {
	return nil, false
}

func (emptyActionRegistry) Delay(string) (time.Duration, bool) { return 0, false }

func buildInvokeTree(t *testing.T) (*nodetree.StateNode, *nodetree.IDMap) {
	t.Helper()
	cfg := &primitives.MachineConfig{
		ID: "svc",
		Root: &primitives.StateConfig{
			Type:    primitives.Compound,
			Initial: "idle",
			States: []*primitives.StateConfig{
				{
					Key:    "idle",
					Type:   primitives.Atomic,
					Invoke: []primitives.InvokeDescriptor{{ID: "fetch", Src: primitives.InvokeSrc{Type: "promise"}}},
					On: map[string][]primitives.TransitionConfig{
						"GO": {{Target: []string{"busy"}}},
					},
				},
				{
					Key:    "busy",
					Type:   primitives.Atomic,
					Invoke: []primitives.InvokeDescriptor{{ID: "poll", Src: primitives.InvokeSrc{Type: "observable"}}},
				},
			},
		},
	}
	root, ids, err := nodetree.Compile(cfg)
	require.NoError(t, err)
	return root, ids
}

func transitionFor(t *testing.T, n *nodetree.StateNode, event string) *nodetree.Transition {
	t.Helper()
	for _, tr := range n.Transitions {
		if tr.EventType == event {
			return tr
		}
	}
	t.Fatalf("no transition for event %q on %q", event, n.ID)
	return nil
}

func TestRun_ExitingNodeSynthesizesStopForItsInvokes(t *testing.T) {
	root, ids := buildInvokeTree(t)
	idle, ok := ids.Get("svc.idle")
	require.True(t, ok)

	tr := transitionFor(t, idle, "GO")
	res, err := Run(root, []*nodetree.StateNode{idle}, []*nodetree.Transition{tr}, nil, primitives.NewContext(), primitives.NewEvent("GO", nil), nil, nil, nil)
	require.NoError(t, err)

	require.Len(t, res.Stops, 1)
	require.Equal(t, "fetch", res.Stops[0].Ref)
	require.Contains(t, res.Exited, idle)
}

func TestRun_EnteringNodeSynthesizesInvokeEffect(t *testing.T) {
	root, ids := buildInvokeTree(t)
	idle, ok := ids.Get("svc.idle")
	require.True(t, ok)
	busy, ok := ids.Get("svc.busy")
	require.True(t, ok)

	tr := transitionFor(t, idle, "GO")
	res, err := Run(root, []*nodetree.StateNode{idle}, []*nodetree.Transition{tr}, nil, primitives.NewContext(), primitives.NewEvent("GO", nil), nil, nil, nil)
	require.NoError(t, err)

	require.Contains(t, res.Configuration, busy)
	require.Len(t, res.Invokes, 1)
	require.Equal(t, "poll", res.Invokes[0].Descriptor.ID)
	require.Contains(t, res.Entered, busy)
	require.NotContains(t, res.Entered, idle)
}

func TestRun_ReturnsActionExecutionError(t *testing.T) {
	cfg := &primitives.MachineConfig{
		ID: "erroring",
		Root: &primitives.StateConfig{
			Type:    primitives.Compound,
			Initial: "idle",
			States: []*primitives.StateConfig{
				{
					Key:  "idle",
					Type: primitives.Atomic,
					On: map[string][]primitives.TransitionConfig{
						"GO": {{
							Target: []string{"idle"},
							Internal: true,
							Actions: []primitives.ActionDescriptor{primitives.ExecAction{Name: "missing"}},
						}},
					},
				},
			},
		},
	}
	root, ids, err := nodetree.Compile(cfg)
	require.NoError(t, err)
	idle, ok := ids.Get("erroring.idle")
	require.True(t, ok)

	tr := transitionFor(t, idle, "GO")
	_, err = Run(root, []*nodetree.StateNode{idle}, []*nodetree.Transition{tr}, nil, primitives.NewContext(), primitives.NewEvent("GO", nil), nil, nil, emptyActionRegistry{})
	require.Error(t, err)
}
