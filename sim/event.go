package sim

// VTime defines the time in the simulated space in the unit of system cycles.
type VTime uint64

// An Event is something going to happen in the future.
type Event interface {
	// Return the time that the event should happen
	Time() VTime

	// Returns the handler that can should handle the event
	Handler() Handler

	// IsSecondary tells if the event is a secondary event. Secondary event are
	// handled after all same-time primary events are handled.
	IsSecondary() bool
}

// EventBase provides the basic fields and getters for other events
type EventBase struct {
	ID        string
	time      VTime
	handler   Handler
	secondary bool
}

// NewEventBase creates a new EventBase
func NewEventBase(t VTime, handler Handler) *EventBase {
	e := new(EventBase)
	e.ID = GetIDGenerator().Generate()
	e.time = t
	e.handler = handler
	e.secondary = false

	return e
}

// Time return the time that the event is going to happen
func (e EventBase) Time() VTime {
	return e.time
}

// Handler returns the handler to handle the event.
func (e EventBase) Handler() Handler {
	return e.handler
}

// IsSecondary returns true if the event is a secondary event.
func (e EventBase) IsSecondary() bool {
	return e.secondary
}

// A Handler defines a domain for the events.
//
// One event is always constraint to one Handler, which means the event can
// only be scheduled by one handler and can only directly modify that handler.
type Handler interface {
	Handle(e Event) error
}

// WakeupEvent asks a handler to run at a specific time. It carries no payload;
// the handler is expected to inspect its own state when woken up.
type WakeupEvent struct {
	*EventBase
}

// NewWakeupEvent creates a new WakeupEvent.
func NewWakeupEvent(t VTime, handler Handler) *WakeupEvent {
	return &WakeupEvent{EventBase: NewEventBase(t, handler)}
}

// NewSecondaryWakeupEvent creates a WakeupEvent that is handled after all the
// primary events of the same time.
func NewSecondaryWakeupEvent(t VTime, handler Handler) *WakeupEvent {
	evt := NewWakeupEvent(t, handler)
	evt.secondary = true

	return evt
}
