// Package refresh decides when the banks of a channel need to be refreshed.
package refresh

import "log"

// MaxOwed is the number of refreshes that may be pending at once. Owing more
// means the channel cannot keep up with the refresh rate.
const MaxOwed = 10

// A Scheduler latches a refresh every interval cycles and hands the refreshes
// out to the banks in rotation.
type Scheduler struct {
	totalBanks int
	interval   int
	countdown  int
	owed       int
	nextBank   int
}

// NewScheduler creates a Scheduler. Every bank is refreshed once per
// refreshPeriod cycles, so the channel needs a refresh every
// refreshPeriod/totalBanks cycles. A refreshPeriod of 0 disables refresh.
func NewScheduler(refreshPeriod, totalBanks int) *Scheduler {
	if totalBanks <= 0 {
		log.Panicf("a channel must have at least one bank, got %d", totalBanks)
	}

	if refreshPeriod < 0 || (refreshPeriod > 0 && refreshPeriod < totalBanks) {
		log.Panicf("refresh period %d cannot be spread over %d banks",
			refreshPeriod, totalBanks)
	}

	return &Scheduler{
		totalBanks: totalBanks,
		interval:   refreshPeriod / totalBanks,
		countdown:  1,
	}
}

// Enabled returns true if refresh is modeled.
func (s *Scheduler) Enabled() bool {
	return s.interval > 0
}

// Tick advances the countdown by one cycle and latches a refresh when it
// expires.
func (s *Scheduler) Tick() {
	if !s.Enabled() {
		return
	}

	s.countdown--
	if s.countdown > 0 {
		return
	}

	s.countdown = s.interval

	if s.owed >= MaxOwed {
		log.Panicf("%d refreshes are owed, the channel cannot keep up",
			s.owed+1)
	}

	s.owed++
}

// Due returns true if the bank is the one that should be refreshed next.
func (s *Scheduler) Due(bank int) bool {
	return s.owed > 0 && s.nextBank == bank
}

// Issued records that the pending refresh of the next bank has been
// performed.
func (s *Scheduler) Issued() {
	if s.owed == 0 {
		log.Panic("issuing a refresh that is not owed")
	}

	s.owed--

	s.nextBank++
	if s.nextBank >= s.totalBanks {
		s.nextBank = 0
	}
}

// Owed returns the number of pending refreshes.
func (s *Scheduler) Owed() int {
	return s.owed
}

// NextBank returns the bank that the next refresh goes to.
func (s *Scheduler) NextBank() int {
	return s.nextBank
}
