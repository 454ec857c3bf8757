package memcontrol

import "github.com/sarchlab/memctl/sim"

// Hook positions that the controller reports. Each invocation carries a
// Sample as the detail. Request related positions also carry the *Request as
// the item.
var (
	// HookPosSubmit marks a request entering the input queue.
	HookPosSubmit = &sim.HookPos{Name: "MemSubmit"}

	// HookPosResponse marks a response entering the response queue.
	HookPosResponse = &sim.HookPos{Name: "MemResponse"}

	// HookPosRead and HookPosWrite mark requests being issued to a bank.
	HookPosRead  = &sim.HookPos{Name: "MemRead"}
	HookPosWrite = &sim.HookPos{Name: "MemWrite"}

	// HookPosRefresh marks a refresh being issued to a bank.
	HookPosRefresh = &sim.HookPos{Name: "MemRefresh"}

	// Arbitration rejections, one per reason.
	HookPosBankBusy      = &sim.HookPos{Name: "MemBankBusy"}
	HookPosRandBusy      = &sim.HookPos{Name: "MemRandBusy"}
	HookPosNotOld        = &sim.HookPos{Name: "MemNotOld"}
	HookPosArbWait       = &sim.HookPos{Name: "MemArbWait"}
	HookPosBusBusy       = &sim.HookPos{Name: "MemBusBusy"}
	HookPosTfawBusy      = &sim.HookPos{Name: "MemTfawBusy"}
	HookPosReadWriteBusy = &sim.HookPos{Name: "MemReadWriteBusy"}
	HookPosDataBusBusy   = &sim.HookPos{Name: "MemDataBusBusy"}

	// HookPosWaitCycles reports the number of bank-queue heads that waited
	// during a cycle. In fixed-delay mode it also reports the added delay of
	// each issued request.
	HookPosWaitCycles = &sim.HookPos{Name: "MemWaitCycles"}

	// HookPosBankQueueDepth samples the number of requests behind the head
	// of a bank queue.
	HookPosBankQueueDepth = &sim.HookPos{Name: "MemBankQueueDepth"}

	// HookPosInputQueueDepth samples the length of the input queue.
	HookPosInputQueueDepth = &sim.HookPos{Name: "MemInputQueueDepth"}

	// HookPosStateChange marks the driver switching between idle and active.
	// The item is the new DriverState.
	HookPosStateChange = &sim.HookPos{Name: "MemStateChange"}
)

// RejectPositions lists the positions that report arbitration rejections.
var RejectPositions = []*sim.HookPos{
	HookPosBankBusy,
	HookPosRandBusy,
	HookPosNotOld,
	HookPosArbWait,
	HookPosBusBusy,
	HookPosTfawBusy,
	HookPosReadWriteBusy,
	HookPosDataBusBusy,
}

// A Sample is the detail of a controller hook invocation.
type Sample struct {
	// Bank is the flat bank index, or -1 if the event is not about a bank.
	Bank int

	// Value is 1 for plain events, otherwise a depth or a cycle count.
	Value int

	// Time is the simulation time of the event.
	Time sim.VTime
}

func (c *Comp) emit(pos *sim.HookPos, item interface{}, bank, value int) {
	if c.NumHooks() == 0 {
		return
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    pos,
		Item:   item,
		Detail: Sample{
			Bank:  bank,
			Value: value,
			Time:  c.scheduler.CurrentTime(),
		},
	})
}
