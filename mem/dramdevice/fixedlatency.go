// Package dramdevice provides device-level DRAM timing models that can be
// attached to a memory controller.
package dramdevice

import (
	"log"

	"github.com/sarchlab/memctl/mem/memcontrol"
)

type transaction struct {
	isWrite bool
	addr    uint64
	doneAt  uint64
}

// FixedLatency is a device where every transaction takes the same number of
// memory cycles. At most capacity transactions can be in flight.
type FixedLatency struct {
	latency  uint64
	capacity int
	cycle    uint64
	inflight []transaction

	readDone  memcontrol.CompletionFunc
	writeDone memcontrol.CompletionFunc
}

// NewFixedLatency creates a FixedLatency device.
func NewFixedLatency(latency, capacity int) *FixedLatency {
	if latency < 0 {
		log.Panicf("device latency cannot be negative, got %d", latency)
	}

	if capacity <= 0 {
		log.Panicf("device capacity must be positive, got %d", capacity)
	}

	return &FixedLatency{
		latency:  uint64(latency),
		capacity: capacity,
	}
}

// AddTransaction accepts the transaction if the device has room for it.
func (d *FixedLatency) AddTransaction(isWrite bool, addr uint64) bool {
	if len(d.inflight) >= d.capacity {
		return false
	}

	d.inflight = append(d.inflight, transaction{
		isWrite: isWrite,
		addr:    addr,
		doneAt:  d.cycle + d.latency,
	})

	return true
}

// Update advances the device by one cycle and reports the transactions that
// finish in that cycle, oldest first.
func (d *FixedLatency) Update() {
	d.cycle++

	remaining := d.inflight[:0]
	var done []transaction

	for _, t := range d.inflight {
		if t.doneAt <= d.cycle {
			done = append(done, t)
			continue
		}

		remaining = append(remaining, t)
	}

	d.inflight = remaining

	for _, t := range done {
		d.complete(t)
	}
}

func (d *FixedLatency) complete(t transaction) {
	callback := d.readDone
	if t.isWrite {
		callback = d.writeDone
	}

	if callback != nil {
		callback(t.addr, d.cycle)
	}
}

// RegisterCallbacks sets the completion callbacks.
func (d *FixedLatency) RegisterCallbacks(
	readDone, writeDone memcontrol.CompletionFunc,
) {
	d.readDone = readDone
	d.writeDone = writeDone
}

// Cycle returns the number of cycles the device has run.
func (d *FixedLatency) Cycle() uint64 {
	return d.cycle
}

// InFlight returns the number of transactions that have not completed.
func (d *FixedLatency) InFlight() int {
	return len(d.inflight)
}
