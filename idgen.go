package statechartx

import (
	"time"

	"github.com/google/uuid"
)

// IDGenerator produces send-ids and invoke-ids when a config omits an
// explicit one, matching SCXML's "platform generates a unique id" rule.
type IDGenerator interface {
	NewID() string
}

// uuidIDGenerator is the default IDGenerator.
type uuidIDGenerator struct{}

// NewUUIDIDGenerator returns the default uuid-backed IDGenerator.
func NewUUIDIDGenerator() IDGenerator { return uuidIDGenerator{} }

func (uuidIDGenerator) NewID() string { return uuid.NewString() }

// Timer is the handle returned by Clock.AfterFunc, mirroring time.Timer's
// Stop semantics closely enough to swap in a fake clock for tests.
type Timer interface {
	Stop() bool
}

// Clock abstracts time so delayed-send scheduling (§4.5) can be driven
// deterministically in tests instead of waiting on a real timer.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// realClock is the default Clock, backed directly by the time package.
type realClock struct{}

// NewRealClock returns the default real-time Clock.
func NewRealClock() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
