// Package tracing collects statistics from the hooks of memory controllers.
package tracing

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/sarchlab/memctl/mem/memcontrol"
	"github.com/sarchlab/memctl/sim"
)

// Stat summarizes the invocations of one hook position.
type Stat struct {
	Count uint64 `json:"count"`
	Sum   uint64 `json:"sum"`
	Max   int    `json:"max"`
}

// Average returns the mean value reported at the position.
func (s Stat) Average() float64 {
	if s.Count == 0 {
		return 0
	}

	return float64(s.Sum) / float64(s.Count)
}

// EventCounter is a hook that counts the events a memory controller reports.
// It is safe to read the counters while the simulation runs.
type EventCounter struct {
	lock  sync.Mutex
	stats map[string]*Stat
}

// NewEventCounter creates an empty EventCounter.
func NewEventCounter() *EventCounter {
	return &EventCounter{
		stats: make(map[string]*Stat),
	}
}

// Func records a hook invocation.
func (c *EventCounter) Func(ctx sim.HookCtx) {
	sample, ok := ctx.Detail.(memcontrol.Sample)
	if !ok {
		return
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	s, found := c.stats[ctx.Pos.Name]
	if !found {
		s = &Stat{}
		c.stats[ctx.Pos.Name] = s
	}

	s.Count++
	s.Sum += uint64(sample.Value)

	if sample.Value > s.Max {
		s.Max = sample.Value
	}
}

// Stat returns the statistics of a hook position.
func (c *EventCounter) Stat(pos *sim.HookPos) Stat {
	c.lock.Lock()
	defer c.lock.Unlock()

	s, found := c.stats[pos.Name]
	if !found {
		return Stat{}
	}

	return *s
}

// Count returns how many times a hook position was invoked.
func (c *EventCounter) Count(pos *sim.HookPos) uint64 {
	return c.Stat(pos).Count
}

// Snapshot returns a copy of all statistics, keyed by position name.
func (c *EventCounter) Snapshot() map[string]Stat {
	c.lock.Lock()
	defer c.lock.Unlock()

	snapshot := make(map[string]Stat, len(c.stats))
	for name, s := range c.stats {
		snapshot[name] = *s
	}

	return snapshot
}

type reportLine struct {
	label string
	pos   *sim.HookPos
	sum   bool
}

var reportLines = []reportLine{
	{"memory_requests", memcontrol.HookPosSubmit, false},
	{"memory_reads", memcontrol.HookPosRead, false},
	{"memory_writes", memcontrol.HookPosWrite, false},
	{"memory_refresh", memcontrol.HookPosRefresh, false},
	{"memory_waits", memcontrol.HookPosWaitCycles, true},
	{"memory_stalls_bank_busy", memcontrol.HookPosBankBusy, false},
	{"memory_stalls_random_busy", memcontrol.HookPosRandBusy, false},
	{"memory_stalls_anti_starvation", memcontrol.HookPosNotOld, false},
	{"memory_stalls_arbitration", memcontrol.HookPosArbWait, false},
	{"memory_stalls_bus_busy", memcontrol.HookPosBusBusy, false},
	{"memory_stalls_tfaw_busy", memcontrol.HookPosTfawBusy, false},
	{"memory_stalls_read_write_turnaround", memcontrol.HookPosReadWriteBusy, false},
	{"memory_stalls_read_read_rank_crossing", memcontrol.HookPosDataBusBusy, false},
}

// Report prints the counters in a fixed order, followed by any other
// position that was seen.
func (c *EventCounter) Report(w io.Writer) {
	snapshot := c.Snapshot()
	printed := make(map[string]bool)

	for _, l := range reportLines {
		s := snapshot[l.pos.Name]
		printed[l.pos.Name] = true

		if l.sum {
			fmt.Fprintf(w, "%s: %d\n", l.label, s.Sum)
			continue
		}

		fmt.Fprintf(w, "%s: %d\n", l.label, s.Count)
	}

	for _, pos := range []*sim.HookPos{
		memcontrol.HookPosBankQueueDepth,
		memcontrol.HookPosInputQueueDepth,
	} {
		s := snapshot[pos.Name]
		printed[pos.Name] = true
		fmt.Fprintf(w, "%s: samples %d, average %.2f, max %d\n",
			pos.Name, s.Count, s.Average(), s.Max)
	}

	var others []string
	for name := range snapshot {
		if !printed[name] {
			others = append(others, name)
		}
	}

	sort.Strings(others)

	for _, name := range others {
		fmt.Fprintf(w, "%s: %d\n", name, snapshot[name].Count)
	}
}
