// Package timing tracks the bank, rank, and bus occupancy of a memory
// channel.
package timing

// BusTimes are the bus occupancy parameters, all in memory cycles.
type BusTimes struct {
	Basic          int
	ReadWriteDelay int
	RankRankDelay  int
}

// BusState is a snapshot of the channel bus counters.
type BusState struct {
	Basic       int
	Write       int
	ReadNewRank int
	LastRank    int
}

// A Tracker holds all the countdown counters of a channel. Counters count
// memory cycles and are decremented by Tick, never below zero.
type Tracker struct {
	busTimes BusTimes

	bankBusy []int
	windows  []ActivateWindow
	bus      BusState
}

// NewTracker creates a Tracker for numBanks banks and numRanks ranks, each
// rank with a tFAW window of the given width.
func NewTracker(numBanks, numRanks, tFAW int, busTimes BusTimes) *Tracker {
	t := &Tracker{
		busTimes: busTimes,
		bankBusy: make([]int, numBanks),
		windows:  make([]ActivateWindow, numRanks),
	}

	for i := range t.windows {
		t.windows[i] = NewActivateWindow(tFAW)
	}

	return t
}

// Tick counts down all the counters by one memory cycle.
func (t *Tracker) Tick() {
	for i := range t.bankBusy {
		if t.bankBusy[i] > 0 {
			t.bankBusy[i]--
		}
	}

	t.bus.Basic = countDown(t.bus.Basic)
	t.bus.Write = countDown(t.bus.Write)
	t.bus.ReadNewRank = countDown(t.bus.ReadNewRank)

	for i := range t.windows {
		t.windows[i].Shift()
	}
}

func countDown(c int) int {
	if c > 0 {
		return c - 1
	}

	return 0
}

// OccupyBank keeps the bank busy for the given number of cycles.
func (t *Tracker) OccupyBank(bank, cycles int) {
	t.bankBusy[bank] = cycles
}

// BankBusy returns true if the bank cannot be activated now.
func (t *Tracker) BankBusy(bank int) bool {
	return t.bankBusy[bank] > 0
}

// BankBusyCycles returns the number of cycles before the bank is free.
func (t *Tracker) BankBusyCycles(bank int) int {
	return t.bankBusy[bank]
}

// ChargeActivate counts an activate against the tFAW window of the rank.
func (t *Tracker) ChargeActivate(rank int) {
	t.windows[rank].Charge()
}

// ActivateCount returns the number of activates in the rank's window.
func (t *Tracker) ActivateCount(rank int) int {
	return t.windows[rank].Count()
}

// RankTFAWBlocked returns true if the rank has used up its activates for the
// current window.
func (t *Tracker) RankTFAWBlocked(rank int) bool {
	return t.windows[rank].Blocked()
}

// BusClaimedThisCycle returns true if some bank reserved the bus during the
// current cycle.
func (t *Tracker) BusClaimedThisCycle() bool {
	return t.bus.Basic == t.busTimes.Basic
}

// BusBasicBusy returns true if the address/data bus is still occupied.
func (t *Tracker) BusBasicBusy() bool {
	return t.bus.Basic > 0
}

// BusWriteBlocked returns true if a write cannot use the bus yet.
func (t *Tracker) BusWriteBlocked() bool {
	return t.bus.Write > 0
}

// BusReadNewRankBlocked returns true if a read to the rank must still wait for
// the bus to turn around from another rank.
func (t *Tracker) BusReadNewRankBlocked(rank int) bool {
	return rank != t.bus.LastRank && t.bus.ReadNewRank > 0
}

// ReserveForRead occupies the bus for a read from the rank. The read pays the
// read-to-write and rank-to-rank bubbles forward.
func (t *Tracker) ReserveForRead(rank int) {
	t.bus.LastRank = rank
	t.bus.Basic = t.busTimes.Basic
	t.bus.Write = t.busTimes.Basic + t.busTimes.ReadWriteDelay
	t.bus.ReadNewRank = t.busTimes.Basic + t.busTimes.RankRankDelay
}

// ReserveForWrite occupies the bus for a write to the rank.
func (t *Tracker) ReserveForWrite(rank int) {
	t.bus.LastRank = rank
	t.reserveBasic()
}

// ReserveForRefresh occupies the bus for a refresh. The last bus user stays
// unchanged since a refresh moves no data.
func (t *Tracker) ReserveForRefresh() {
	t.reserveBasic()
}

func (t *Tracker) reserveBasic() {
	t.bus.Basic = t.busTimes.Basic
	t.bus.Write = t.busTimes.Basic
	t.bus.ReadNewRank = t.busTimes.Basic
}

// Bus returns a snapshot of the bus counters.
func (t *Tracker) Bus() BusState {
	return t.bus
}
