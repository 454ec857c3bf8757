package memcontrol

import (
	"github.com/sarchlab/memctl/sim"
)

// AccessType tells the direction of a memory request.
type AccessType int

// A list of all the access types.
const (
	AccessRead AccessType = iota
	AccessWrite
	AccessWriteback
)

func (t AccessType) String() string {
	switch t {
	case AccessRead:
		return "R"
	case AccessWrite:
		return "W"
	case AccessWriteback:
		return "WB"
	default:
		return "?"
	}
}

// IsRead returns true if the access moves data out of the DRAM.
func (t AccessType) IsRead() bool {
	return t == AccessRead
}

// A Request is a memory access travelling through the controller.
type Request struct {
	// ID is unique in the simulation and is used for tracing.
	ID string

	// Seq is assigned on submission and strictly increases per controller.
	Seq uint64

	Address uint64
	Type    AccessType

	// ArrivalTime is when the request may leave the input queue.
	ArrivalTime sim.VTime

	// ReadyTime is when the response becomes visible to the consumer.
	ReadyTime sim.VTime

	// Handle is returned to the consumer with the response. Requests with a
	// nil handle, typically writebacks, produce no response.
	Handle interface{}

	// Old marks the bank-queue head that belongs to the current aging batch.
	// It is cleared when the request issues.
	Old bool
}

// NewRequest creates a request that has not been submitted yet.
func NewRequest(addr uint64, t AccessType, handle interface{}) *Request {
	return &Request{
		ID:      sim.GetIDGenerator().Generate(),
		Address: addr,
		Type:    t,
		Handle:  handle,
	}
}
