package memcontrol

import (
	"log"
	"reflect"

	"github.com/sarchlab/memctl/mem/memcontrol/internal/addressing"
	"github.com/sarchlab/memctl/mem/memcontrol/internal/refresh"
	"github.com/sarchlab/memctl/mem/memcontrol/internal/timing"
	"github.com/sarchlab/memctl/sim"
	"github.com/sarchlab/memctl/sim/queueing"
)

// IdleThreshold is the number of memory cycles without any queued work after
// which the controller stops ticking.
const IdleThreshold = 1000

// DriverState tells if the controller is ticking.
type DriverState int

// The states of the cycle driver.
const (
	DriverIdle DriverState = iota
	DriverActive
)

func (s DriverState) String() string {
	if s == DriverActive {
		return "Active"
	}

	return "Idle"
}

type bankState struct {
	queue queueing.Buffer
}

// head returns the first request of the queue, or nil if it is empty.
func (b *bankState) head() *Request {
	if b.queue.Size() == 0 {
		return nil
	}

	return b.queue.Peek().(*Request)
}

// old tells if the head of the queue belongs to the current aging batch.
func (b *bankState) old() bool {
	head := b.head()

	return head != nil && head.Old
}

// Comp is a memory controller that models a single channel with a closed
// page policy. Requests wait in an unbounded input queue, move into bounded
// per-bank queues at most one per cycle, and issue once no timing constraint
// holds them back.
type Comp struct {
	sim.HookableBase

	name      string
	cfg       Config
	scheduler sim.Scheduler
	consumer  sim.Handler
	rand      RandSource

	device           DeviceModel
	useInternalModel bool

	mapper    addressing.Mapper
	tracker   *timing.Tracker
	refresher *refresh.Scheduler

	banks       []bankState
	inputQueue  []*Request
	responses   responseQueue
	outstanding []*Request

	state      DriverState
	idleCount  int
	roundRobin int
	ageCounter int
	nextSeq    uint64
}

// Name returns the name of the controller.
func (c *Comp) Name() string {
	return c.name
}

// Config returns the configuration that the controller runs with.
func (c *Comp) Config() Config {
	return c.cfg
}

// State returns whether the controller is ticking.
func (c *Comp) State() DriverState {
	return c.state
}

// SetConsumer sets the handler that is woken up when responses are ready.
func (c *Comp) SetConsumer(consumer sim.Handler) {
	c.consumer = consumer
}

// Submit creates a request and submits it. See SubmitRequest.
func (c *Comp) Submit(
	addr uint64,
	accessType AccessType,
	handle interface{},
	extraDelay sim.VTime,
) *Request {
	req := NewRequest(addr, accessType, handle)
	c.SubmitRequest(req, extraDelay)

	return req
}

// SubmitRequest places a request in the input queue. The request may leave
// the input queue extraDelay system cycles from now. The input queue is
// FIFO, so a delayed request also holds back every request submitted after
// it, even those without delay. Submitting always succeeds, and wakes the
// controller up if it is idle.
func (c *Comp) SubmitRequest(req *Request, extraDelay sim.VTime) {
	c.nextSeq++
	req.Seq = c.nextSeq
	req.ArrivalTime = c.scheduler.CurrentTime() + extraDelay

	c.inputQueue = append(c.inputQueue, req)
	c.emit(HookPosSubmit, req, -1, 1)

	c.activate()
}

// IsReady returns true if a response can be taken now.
func (c *Comp) IsReady() bool {
	head := c.responses.head()

	return head != nil && head.ReadyTime <= c.scheduler.CurrentTime()
}

// Peek returns the first ready response without removing it. It panics if no
// response is ready.
func (c *Comp) Peek() *Request {
	if !c.IsReady() {
		log.Panicf("%s: peeking while no response is ready", c.name)
	}

	return c.responses.head()
}

// Drain removes and returns the first ready response. It panics if no
// response is ready.
func (c *Comp) Drain() *Request {
	if !c.IsReady() {
		log.Panicf("%s: draining while no response is ready", c.name)
	}

	return c.responses.pop()
}

// Handle runs one memory cycle.
func (c *Comp) Handle(e sim.Event) error {
	switch e.(type) {
	case *sim.WakeupEvent:
		c.wakeup()
	default:
		log.Panicf("%s cannot handle event of type %s",
			c.name, reflect.TypeOf(e))
	}

	return nil
}

func (c *Comp) activate() {
	if c.state == DriverActive {
		return
	}

	c.idleCount = IdleThreshold
	c.setState(DriverActive)
	c.scheduler.ScheduleRelative(c, 1)
}

func (c *Comp) setState(s DriverState) {
	c.state = s
	c.emit(HookPosStateChange, s, -1, 1)
}

func (c *Comp) wakeup() {
	if c.useInternalModel {
		c.executeCycle()

		if c.device != nil {
			c.device.Update()
		}
	} else {
		c.executeDeviceCycle()
	}

	c.idleCount--
	if c.idleCount <= 0 {
		c.setState(DriverIdle)
		return
	}

	c.scheduler.ScheduleRelative(c, sim.VTime(c.cfg.MemBusCycleMultiplier))
}

// enqueueResponse schedules the response of a request latency memory cycles
// from now. A response always takes at least one system cycle.
func (c *Comp) enqueueResponse(req *Request, latency int) {
	now := c.scheduler.CurrentTime()
	req.ReadyTime = now +
		sim.VTime(latency*c.cfg.MemBusCycleMultiplier) + 1

	c.responses.push(req)
	c.emit(HookPosResponse, req, -1, 1)

	if c.consumer != nil {
		c.scheduler.ScheduleAbsolute(c.consumer, req.ReadyTime)
	}
}
