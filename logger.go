package statechartx

import (
	"log"
	"time"
)

// Logger receives the interpreter's lifecycle events: macrostep
// boundaries, action execution, actor spawn/stop, errors.
type Logger interface {
	MacrostepStart(machineID, eventType string)
	MacrostepEnd(machineID string, steps int, d time.Duration)
	Action(machineID, kind string, d time.Duration, err error)
	ActorSpawn(machineID, invokeID, src string)
	ActorStop(machineID, invokeID string)
	Error(machineID string, err error)
}

// stdLogger is the default Logger, printing through the standard library
// logger with a "LOG: " prefix (log.Printf("LOG: ...")).
type stdLogger struct{}

// NewStdLogger returns the default stdlib-log-backed Logger.
func NewStdLogger() Logger { return stdLogger{} }

func (stdLogger) MacrostepStart(machineID, eventType string) {
	log.Printf("LOG: [%s] macrostep start, event %q", machineID, eventType)
}

func (stdLogger) MacrostepEnd(machineID string, steps int, d time.Duration) {
	log.Printf("LOG: [%s] macrostep end, %d microstep(s) in %v", machineID, steps, d)
}

func (stdLogger) Action(machineID, kind string, d time.Duration, err error) {
	log.Printf("LOG: [%s] action %s completed in %v: %v", machineID, kind, d, err)
}

func (stdLogger) ActorSpawn(machineID, invokeID, src string) {
	log.Printf("LOG: [%s] actor %q spawned (src=%s)", machineID, invokeID, src)
}

func (stdLogger) ActorStop(machineID, invokeID string) {
	log.Printf("LOG: [%s] actor %q stopped", machineID, invokeID)
}

func (stdLogger) Error(machineID string, err error) {
	log.Printf("LOG: [%s] error: %v", machineID, err)
}

// noopLogger discards everything; useful in tests that don't want log spam.
type noopLogger struct{}

// NewNoopLogger returns a Logger that discards every event.
func NewNoopLogger() Logger { return noopLogger{} }

func (noopLogger) MacrostepStart(string, string)            {}
func (noopLogger) MacrostepEnd(string, int, time.Duration)  {}
func (noopLogger) Action(string, string, time.Duration, error) {}
func (noopLogger) ActorSpawn(string, string, string)        {}
func (noopLogger) ActorStop(string, string)                 {}
func (noopLogger) Error(string, error)                       {}
