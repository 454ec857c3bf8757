package sim

// Scheduler is the view of the simulation that a component needs to wake
// handlers up. Time is counted in system cycles.
type Scheduler interface {
	TimeTeller

	// ScheduleRelative wakes the handler up delay cycles from now.
	ScheduleRelative(handler Handler, delay VTime)

	// ScheduleAbsolute wakes the handler up at the given time, which must not
	// be in the past.
	ScheduleAbsolute(handler Handler, t VTime)
}

// NewScheduler creates a Scheduler that delivers WakeupEvents through the
// given event scheduler.
func NewScheduler(es EventScheduler) Scheduler {
	return &wakeupScheduler{es: es}
}

type wakeupScheduler struct {
	es EventScheduler
}

func (s *wakeupScheduler) CurrentTime() VTime {
	return s.es.CurrentTime()
}

func (s *wakeupScheduler) ScheduleRelative(handler Handler, delay VTime) {
	s.es.Schedule(NewWakeupEvent(s.es.CurrentTime()+delay, handler))
}

func (s *wakeupScheduler) ScheduleAbsolute(handler Handler, t VTime) {
	s.es.Schedule(NewWakeupEvent(t, handler))
}
