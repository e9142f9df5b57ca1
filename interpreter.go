package statechartx

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/comalice/statechartx/actors"
	"github.com/comalice/statechartx/internal/primitives"
)

// interpreterStatus mirrors the teacher's machine-lifecycle states,
// generalized from a single running bool to the three-way
// notStarted/running/stopped the actor model needs (§4.7, §5).
type interpreterStatus int

const (
	notStarted interpreterStatus = iota
	running
	stopped
)

// invokedActor tracks one running child actor spawned from an Invoke
// descriptor, keyed by invoke id, so the state that owns it can be torn
// down when the invoking state exits or the interpreter stops.
type invokedActor struct {
	id          string
	src         string
	autoForward bool
	behavior    actors.Behavior
	cancel      context.CancelFunc
}

// Interpreter is the stateful actor wrapping a pure Machine: it owns the
// external event queue, schedules delayed sends, starts and stops invoked
// child actors, and fans out transitions/done/error/stop notifications to
// subscribers. Machine.Transition stays pure; Interpreter is where SCXML's
// "the platform" lives.
type Interpreter struct {
	machine *Machine

	logger    Logger
	clock     Clock
	tracer    Tracer
	idGen     IDGenerator
	queueSize int
	strict    bool
	persister Persister

	mu     sync.Mutex
	state  *State
	status interpreterStatus
	actorz map[string]*invokedActor
	timers map[string]Timer
	parent actors.ParentRef

	queue  chan primitives.Event
	cancel context.CancelFunc
	wg     sync.WaitGroup

	subMu          sync.Mutex
	subSeq         int
	transitionSubs map[int]func(*State)
	doneSubs       map[int]func(any)
	errorSubs      map[int]func(error)
	stopSubs       map[int]func()
}

// NewInterpreter wraps m in a stateful Interpreter, applying opts.
func NewInterpreter(m *Machine, opts ...InterpreterOption) *Interpreter {
	it := &Interpreter{
		machine:        m,
		logger:         NewStdLogger(),
		clock:          NewRealClock(),
		tracer:         defaultTracer(),
		idGen:          NewUUIDIDGenerator(),
		queueSize:      defaultQueueSize,
		actorz:         map[string]*invokedActor{},
		timers:         map[string]Timer{},
		transitionSubs: map[int]func(*State){},
		doneSubs:       map[int]func(any){},
		errorSubs:      map[int]func(error){},
		stopSubs:       map[int]func(){},
	}
	for _, opt := range opts {
		opt(it)
	}
	return it
}

// Start computes the machine's initial state, applies its effects, and
// begins the event-processing goroutine. Calling Start more than once
// returns an error.
func (it *Interpreter) Start(ctx context.Context) error {
	it.mu.Lock()
	if it.status != notStarted {
		it.mu.Unlock()
		return fmt.Errorf("interpreter %q: already started", it.machine.id)
	}
	it.status = running
	it.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	it.cancel = cancel
	it.queue = make(chan primitives.Event, it.queueSize)

	state, effects, err := it.machine.InitialState()
	if err != nil {
		it.status = stopped
		return fmt.Errorf("interpreter %q: start: %w", it.machine.id, err)
	}
	it.setState(state)
	it.applyEffects(runCtx, effects)
	it.notifyTransition(state)
	if state.Done {
		it.notifyDone(doneData(state))
	}

	it.wg.Add(1)
	go it.loop(runCtx)
	return nil
}

func (it *Interpreter) loop(ctx context.Context) {
	defer it.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-it.queue:
			if !ok {
				return
			}
			it.process(ctx, event)
		}
	}
}

func (it *Interpreter) process(ctx context.Context, event primitives.Event) {
	it.mu.Lock()
	prior := it.state
	it.mu.Unlock()
	if prior == nil || prior.Done {
		return
	}

	spanCtx, span := traceMacrostep(ctx, it.tracer, it.machine.id, event.Type)
	it.logger.MacrostepStart(it.machine.id, event.Type)
	start := it.clock.Now()

	it.forwardToInvokes(event)

	next, effects, err := it.machine.Transition(prior, event)
	d := it.clock.Now().Sub(start)
	if err != nil {
		it.logger.Error(it.machine.id, err)
		endMacrostepSpan(span, 0, false)
		it.notifyError(err)
		return
	}
	it.logger.MacrostepEnd(it.machine.id, stepsOf(effects), d)
	endMacrostepSpan(span, stepsOf(effects), next.Done)

	it.setState(next)
	it.applyEffects(spanCtx, effects)
	if it.persister != nil {
		if perr := it.persister.Save(spanCtx, snapshotOf(it.machine.id, next)); perr != nil {
			it.logger.Error(it.machine.id, fmt.Errorf("persist: %w", perr))
		}
	}
	if next.Changed {
		it.notifyTransition(next)
	}
	if next.Done {
		it.notifyDone(doneData(next))
	}
}

func stepsOf(e *TransitionEffects) int {
	if e == nil {
		return 0
	}
	return len(e.Sends) + len(e.Invokes) + len(e.Stops) + len(e.Cancels) + len(e.Logs)
}

func doneData(s *State) any {
	if s.Value.IsAtomic() {
		return nil
	}
	return s.Context.Snapshot()
}

func (it *Interpreter) setState(s *State) {
	it.mu.Lock()
	it.state = s
	it.mu.Unlock()
}

// Send enqueues an externally-originated event. In non-strict mode (the
// default), sends before Start or after Stop are silently dropped, matching
// a dead actor mailbox; WithStrict(true) surfaces them as errors via the
// error subscribers instead.
func (it *Interpreter) Send(event primitives.Event) {
	it.mu.Lock()
	status := it.status
	it.mu.Unlock()
	if status != running {
		if it.strict {
			it.notifyError(fmt.Errorf("interpreter %q: send %q while not running", it.machine.id, event.Type))
		}
		return
	}
	it.queue <- event
}

// Batch enqueues every event in order; each is processed as its own
// macrostep (§4 does not batch multiple external events into one
// macrostep).
func (it *Interpreter) Batch(events []primitives.Event) {
	for _, e := range events {
		it.Send(e)
	}
}

// Stop tears down the interpreter: every child actor is disposed
// concurrently in one errgroup, with no innermost-first ordering by depth;
// pending delayed sends are stopped, the event loop is canceled, and stop
// subscribers are notified. Safe to call more than once.
func (it *Interpreter) Stop() {
	it.mu.Lock()
	if it.status == stopped {
		it.mu.Unlock()
		return
	}
	it.status = stopped
	actorsToStop := make([]*invokedActor, 0, len(it.actorz))
	for _, a := range it.actorz {
		actorsToStop = append(actorsToStop, a)
	}
	it.actorz = map[string]*invokedActor{}
	timersToStop := it.timers
	it.timers = map[string]Timer{}
	it.mu.Unlock()

	var g errgroup.Group
	for _, a := range actorsToStop {
		a := a
		g.Go(func() error {
			a.behavior.Stop()
			if a.cancel != nil {
				a.cancel()
			}
			it.logger.ActorStop(it.machine.id, a.id)
			return nil
		})
	}
	_ = g.Wait()

	for _, t := range timersToStop {
		t.Stop()
	}

	if it.cancel != nil {
		it.cancel()
	}
	close(it.queue)
	it.wg.Wait()

	it.notifyStop()
}

// Subscribe registers fn to be called with every changed State's value and
// context. Returns an unsubscribe func. Satisfies the Sync-invocation half
// of actors.MachineRunner.
func (it *Interpreter) Subscribe(fn func(value primitives.StateValue, ctx *primitives.Context)) func() {
	return it.onTransition(func(s *State) { fn(s.Value, s.Context) })
}

// OnTransition registers fn to be called with every changed State. Returns
// an unsubscribe func.
func (it *Interpreter) OnTransition(fn func(*State)) func() {
	return it.onTransition(fn)
}

func (it *Interpreter) onTransition(fn func(*State)) func() {
	it.subMu.Lock()
	id := it.subSeq
	it.subSeq++
	it.transitionSubs[id] = fn
	it.subMu.Unlock()
	return func() {
		it.subMu.Lock()
		delete(it.transitionSubs, id)
		it.subMu.Unlock()
	}
}

// OnDone registers fn to be called once, when the machine reaches a final
// configuration, with the machine's done-data (§4.3). Returns an
// unsubscribe func.
func (it *Interpreter) OnDone(fn func(data any)) func() {
	it.subMu.Lock()
	id := it.subSeq
	it.subSeq++
	it.doneSubs[id] = fn
	it.subMu.Unlock()
	return func() {
		it.subMu.Lock()
		delete(it.doneSubs, id)
		it.subMu.Unlock()
	}
}

// OnError registers fn to be called whenever a macrostep fails or a strict
// Send is rejected. Returns an unsubscribe func.
func (it *Interpreter) OnError(fn func(error)) func() {
	it.subMu.Lock()
	id := it.subSeq
	it.subSeq++
	it.errorSubs[id] = fn
	it.subMu.Unlock()
	return func() {
		it.subMu.Lock()
		delete(it.errorSubs, id)
		it.subMu.Unlock()
	}
}

// OnStop registers fn to be called once Stop has finished disposing every
// child actor. Returns an unsubscribe func.
func (it *Interpreter) OnStop(fn func()) func() {
	it.subMu.Lock()
	id := it.subSeq
	it.subSeq++
	it.stopSubs[id] = fn
	it.subMu.Unlock()
	return func() {
		it.subMu.Lock()
		delete(it.stopSubs, id)
		it.subMu.Unlock()
	}
}

func (it *Interpreter) notifyTransition(s *State) {
	it.subMu.Lock()
	fns := make([]func(*State), 0, len(it.transitionSubs))
	for _, fn := range it.transitionSubs {
		fns = append(fns, fn)
	}
	it.subMu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}

func (it *Interpreter) notifyDone(data any) {
	it.subMu.Lock()
	fns := make([]func(any), 0, len(it.doneSubs))
	for _, fn := range it.doneSubs {
		fns = append(fns, fn)
	}
	it.subMu.Unlock()
	for _, fn := range fns {
		fn(data)
	}
}

func (it *Interpreter) notifyError(err error) {
	it.subMu.Lock()
	fns := make([]func(error), 0, len(it.errorSubs))
	for _, fn := range it.errorSubs {
		fns = append(fns, fn)
	}
	it.subMu.Unlock()
	for _, fn := range fns {
		fn(err)
	}
}

func (it *Interpreter) notifyStop() {
	it.subMu.Lock()
	fns := make([]func(), 0, len(it.stopSubs))
	for _, fn := range it.stopSubs {
		fns = append(fns, fn)
	}
	it.subMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Snapshot returns the interpreter's live (StateValue, Context), satisfying
// actors.MachineRunner so an Interpreter can itself be invoked as a nested
// machine actor (§4.7 InvokeMachine).
func (it *Interpreter) Snapshot() (primitives.StateValue, *primitives.Context) {
	it.mu.Lock()
	defer it.mu.Unlock()
	if it.state == nil {
		return primitives.StateValue{}, primitives.NewContext()
	}
	return it.state.Value, it.state.Context
}

// SetParent records the ParentRef this interpreter should use to deliver
// send({to: parent})/escalate() actions, when it is itself running as a
// nested InvokeMachine actor. Satisfies actors.ParentAware.
func (it *Interpreter) SetParent(p actors.ParentRef) {
	it.mu.Lock()
	it.parent = p
	it.mu.Unlock()
}

// CurrentState returns the interpreter's live *State, or nil before Start
// has produced one. Unlike Snapshot, this exposes StateIDs and Matches for
// callers that need the active node ids or partial-value containment checks.
func (it *Interpreter) CurrentState() *State {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.state
}

// applyEffects executes every deferred effect from one macrostep: starting
// invokes, stopping actors, scheduling or canceling delayed sends, and
// logging.
func (it *Interpreter) applyEffects(ctx context.Context, effects *TransitionEffects) {
	if effects == nil {
		return
	}
	for _, inv := range effects.Invokes {
		it.startInvoke(ctx, inv.Descriptor)
	}
	for _, s := range effects.Stops {
		it.stopInvoke(refID(s.Ref))
	}
	for _, c := range effects.Cancels {
		it.cancelSend(c.SendID)
	}
	for _, snd := range effects.Sends {
		it.scheduleSend(snd)
	}
	for _, l := range effects.Logs {
		it.logger.Action(it.machine.id, "log:"+l.Label, 0, nil)
	}
}

func refID(ref any) string {
	switch v := ref.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(ref)
	}
}

func (it *Interpreter) startInvoke(ctx context.Context, desc primitives.InvokeDescriptor) {
	behavior, err := actors.Build(desc, it.machine.registries)
	if err != nil {
		it.notifyError(fmt.Errorf("interpreter %q: invoke %q: %w", it.machine.id, desc.ID, err))
		return
	}
	actorCtx, actorSpan := traceActor(ctx, it.tracer, it.machine.id, desc.ID, desc.Src.Type)
	childCtx, cancel := context.WithCancel(actorCtx)

	a := &invokedActor{id: desc.ID, src: desc.Src.Type, autoForward: desc.AutoForward, behavior: behavior, cancel: cancel}
	it.mu.Lock()
	prior, hadPrior := it.actorz[desc.ID]
	it.actorz[desc.ID] = a
	it.mu.Unlock()
	if hadPrior {
		// §9: re-entering the same invoke id within a macrostep is a full
		// stop + restart, never an implicit handoff.
		prior.behavior.Stop()
		if prior.cancel != nil {
			prior.cancel()
		}
		it.logger.ActorStop(it.machine.id, prior.id)
	}
	it.logger.ActorSpawn(it.machine.id, desc.ID, desc.Src.Type)

	parent := &interpreterParentRef{it: it, invokeID: desc.ID, autoForward: desc.AutoForward}
	it.wg.Add(1)
	go func() {
		defer it.wg.Done()
		defer actorSpan.End()
		if err := behavior.Start(childCtx, parent); err != nil {
			it.Send(primitives.NewEvent(primitives.ErrorPlatformEvent(desc.ID), err))
		}
	}()
}

func (it *Interpreter) stopInvoke(invokeID string) {
	it.mu.Lock()
	a, ok := it.actorz[invokeID]
	if ok {
		delete(it.actorz, invokeID)
	}
	it.mu.Unlock()
	if !ok {
		return
	}
	a.behavior.Stop()
	if a.cancel != nil {
		a.cancel()
	}
	it.logger.ActorStop(it.machine.id, invokeID)
}

// forwardToInvokes delivers event to every actor invoked with AutoForward
// (§4.7), before the macrostep that may process the same event runs.
func (it *Interpreter) forwardToInvokes(event primitives.Event) {
	it.mu.Lock()
	forwards := make([]actors.Behavior, 0)
	for _, a := range it.actorz {
		if a.autoForward {
			forwards = append(forwards, a.behavior)
		}
	}
	it.mu.Unlock()
	for _, b := range forwards {
		b.Send(event)
	}
}

func (it *Interpreter) scheduleSend(s SendEffect) {
	sendID := s.SendID
	if sendID == "" {
		sendID = it.idGen.NewID()
	}
	if !s.HasDelay || s.Delay <= 0 {
		it.deliverSend(s)
		return
	}
	timer := it.clock.AfterFunc(s.Delay, func() {
		it.mu.Lock()
		delete(it.timers, sendID)
		it.mu.Unlock()
		it.deliverSend(s)
	})
	it.mu.Lock()
	it.timers[sendID] = timer
	it.mu.Unlock()
}

func (it *Interpreter) deliverSend(s SendEffect) {
	switch {
	case s.To.Child != "":
		it.mu.Lock()
		a, ok := it.actorz[s.To.Child]
		it.mu.Unlock()
		if ok {
			a.behavior.Send(s.Event)
		}
	case s.To.Parent:
		it.mu.Lock()
		parent := it.parent
		it.mu.Unlock()
		if parent != nil {
			parent.Send(s.Event)
		}
	default:
		it.Send(s.Event)
	}
}

func (it *Interpreter) cancelSend(sendID string) {
	it.mu.Lock()
	t, ok := it.timers[sendID]
	if ok {
		delete(it.timers, sendID)
	}
	it.mu.Unlock()
	if ok {
		t.Stop()
	}
}

// interpreterParentRef adapts an Interpreter + invoke id into an
// actors.ParentRef, tagging done/error events with the invoking id and
// auto-forwarding raw emissions when the descriptor requested it.
type interpreterParentRef struct {
	it          *Interpreter
	invokeID    string
	autoForward bool
}

func (p *interpreterParentRef) Send(event primitives.Event) {
	if event.Type == primitives.EventEscalate {
		event = primitives.NewEvent(primitives.ErrorPlatformEvent(p.invokeID), event.Data)
	}
	p.it.Send(event)
}

