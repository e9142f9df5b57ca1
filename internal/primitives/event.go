// Event and the SCXML event envelope (§3, §6).
//
// Events are value types: once constructed, don't mutate them. NewEvent
// returns an Event by value, so Data is the only field that can heap-escape.
package primitives

import "fmt"

// Event is the user-facing event value sent to a machine or raised by its
// actions.
type Event struct {
	Type string
	Data any
}

// NewEvent creates and returns a new immutable Event.
func NewEvent(eventType string, data any) Event {
	return Event{Type: eventType, Data: data}
}

// EventOrigin classifies where an event came from, per the SCXML envelope.
type EventOrigin string

const (
	OriginExternal EventOrigin = "external"
	OriginInternal EventOrigin = "internal"
	OriginPlatform EventOrigin = "platform"
	OriginError    EventOrigin = "error"
)

// SCXMLEvent is the envelope carried alongside an Event through a macrostep:
// `{ name, type, sendid?, origin?, data }` (§3).
type SCXMLEvent struct {
	Name   string
	Type   EventOrigin
	SendID string
	Origin string
	Data   any
}

// NewSCXMLEvent wraps an Event in its envelope.
func NewSCXMLEvent(event Event, origin EventOrigin) SCXMLEvent {
	return SCXMLEvent{Name: event.Type, Type: origin, Data: event.Data}
}

// AsEvent strips the envelope back down to a plain Event.
func (e SCXMLEvent) AsEvent() Event {
	return Event{Type: e.Name, Data: e.Data}
}

// NullEvent is the eventless ("always") sentinel: its Type is the empty string.
var NullEvent = Event{Type: ""}

func IsNullEvent(e Event) bool { return e.Type == "" }

// Well-known event names (§6).
const (
	EventInit           = "xstate.init"
	EventUpdate         = "xstate.update"
	EventErrorExecution = "error.execution"

	// EventEscalate is never observed by machine authors: EscalateAction
	// resolves to a send({to: parent}) carrying this marker type, and the
	// interpreter's parent-ref rewrites it into error.platform.<id> as it
	// crosses into the invoking machine (§4.7, §8 Scenario 6).
	EventEscalate = "xstate.escalate"
)

func DoneInvokeEvent(invokeID string) string    { return fmt.Sprintf("done.invoke.%s", invokeID) }
func ErrorPlatformEvent(invokeID string) string { return fmt.Sprintf("error.platform.%s", invokeID) }
func DoneStateEvent(stateID string) string      { return fmt.Sprintf("done.state.%s", stateID) }
func AfterEvent(delayRef, sourceID string) string {
	return fmt.Sprintf("xstate.after(%s)#%s", delayRef, sourceID)
}
