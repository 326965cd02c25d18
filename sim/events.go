package sim

import "github.com/cynecx/objc2"

// EventType identifies a runtime lifecycle event.
type EventType uint8

const (
	EventCreated EventType = iota
	EventRetained
	EventReleased
	EventDeallocated
	EventAutoreleased
	EventPoolOpened
	EventPoolDrained
	EventWeakRegistered
	EventWeakLoaded
	EventWeakDestroyed
)

var eventNames = map[EventType]string{
	EventCreated:        "created",
	EventRetained:       "retained",
	EventReleased:       "released",
	EventDeallocated:    "deallocated",
	EventAutoreleased:   "autoreleased",
	EventPoolOpened:     "pool opened",
	EventPoolDrained:    "pool drained",
	EventWeakRegistered: "weak registered",
	EventWeakLoaded:     "weak loaded",
	EventWeakDestroyed:  "weak destroyed",
}

// String returns a human-readable event name.
func (t EventType) String() string {
	if s, ok := eventNames[t]; ok {
		return s
	}
	return "unknown"
}

// Event describes one foreign call observed by the simulator.
type Event struct {
	Label string
	Ptr   objc2.Pointer
	Count int
	Type  EventType
}

// Observer receives runtime lifecycle events. Callbacks run with the
// simulator unlocked and must not assume the reported state is still
// current.
type Observer interface {
	OnRuntimeEvent(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// OnRuntimeEvent implements Observer.
func (f ObserverFunc) OnRuntimeEvent(e Event) {
	f(e)
}
