package memcontrol

import "github.com/sarchlab/memctl/sim"

// Status is a snapshot of the controller's queues and counters.
type Status struct {
	Name          string    `json:"name"`
	Time          sim.VTime `json:"time"`
	State         string    `json:"state"`
	InputQueue    int       `json:"input_queue"`
	BankQueues    []int     `json:"bank_queues"`
	BankBusy      []int     `json:"bank_busy"`
	ResponseQueue int       `json:"response_queue"`
	Outstanding   int       `json:"outstanding"`
	RefreshOwed   int       `json:"refresh_owed"`
	AgeCounter    int       `json:"age_counter"`
	Activates     []int     `json:"activates"`
}

// Status returns a snapshot of the controller.
func (c *Comp) Status() Status {
	s := Status{
		Name:          c.name,
		Time:          c.scheduler.CurrentTime(),
		State:         c.state.String(),
		InputQueue:    len(c.inputQueue),
		ResponseQueue: c.responses.len(),
		Outstanding:   len(c.outstanding),
		RefreshOwed:   c.refresher.Owed(),
		AgeCounter:    c.ageCounter,
	}

	for i := range c.banks {
		s.BankQueues = append(s.BankQueues, c.banks[i].queue.Size())
		s.BankBusy = append(s.BankBusy, c.tracker.BankBusyCycles(i))
	}

	for r := 0; r < c.mapper.TotalRanks(); r++ {
		s.Activates = append(s.Activates, c.tracker.ActivateCount(r))
	}

	return s
}

// NumBanks returns the number of banks in the channel.
func (c *Comp) NumBanks() int {
	return len(c.banks)
}

// NumRanks returns the number of ranks in the channel.
func (c *Comp) NumRanks() int {
	return c.mapper.TotalRanks()
}

// BankOf returns the flat bank index that serves the address.
func (c *Comp) BankOf(addr uint64) int {
	return c.mapper.BankOf(addr)
}

// RankOf returns the rank that the bank belongs to.
func (c *Comp) RankOf(bank int) int {
	return c.mapper.RankOf(bank)
}

// InputQueueLength returns the number of requests not yet in a bank queue.
func (c *Comp) InputQueueLength() int {
	return len(c.inputQueue)
}

// BankQueueLength returns the number of requests queued at the bank.
func (c *Comp) BankQueueLength(bank int) int {
	return c.banks[bank].queue.Size()
}

// ResponseQueueLength returns the number of responses, ready or not.
func (c *Comp) ResponseQueueLength() int {
	return c.responses.len()
}

// OutstandingLength returns the number of requests held by the device model.
func (c *Comp) OutstandingLength() int {
	return len(c.outstanding)
}

// BankBusyCycles returns how many cycles the bank stays busy.
func (c *Comp) BankBusyCycles(bank int) int {
	return c.tracker.BankBusyCycles(bank)
}

// ActivateCount returns the number of activates in the rank's window.
func (c *Comp) ActivateCount(rank int) int {
	return c.tracker.ActivateCount(rank)
}

// RefreshOwed returns the number of pending refreshes.
func (c *Comp) RefreshOwed() int {
	return c.refresher.Owed()
}

// AgeCounter returns the age of the current aging batch.
func (c *Comp) AgeCounter() int {
	return c.ageCounter
}
