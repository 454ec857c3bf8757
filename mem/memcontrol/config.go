package memcontrol

import (
	"fmt"
	"io"
	"log"

	"github.com/sarchlab/memctl/mem/memcontrol/internal/timing"
)

// Config holds the parameters of a memory controller. Times are in memory
// cycles unless noted.
type Config struct {
	// MemBusCycleMultiplier is the number of system cycles per memory cycle.
	MemBusCycleMultiplier int

	BanksPerRank    int
	RanksPerDimm    int
	DimmsPerChannel int

	// Bit offsets of the least significant bit of each address field.
	BankBit0 uint
	RankBit0 uint
	DimmBit0 uint

	// BankQueueSize is the capacity of each bank queue.
	BankQueueSize int

	BankBusyTime     int
	RankRankDelay    int
	ReadWriteDelay   int
	BasicBusBusyTime int

	// MemCtlLatency is the fixed latency from issue to response.
	MemCtlLatency int

	// RefreshPeriod is the time within which every bank is refreshed once.
	// 0 disables refresh.
	RefreshPeriod int

	// TFAW is the four-activate window. 0 disables the window.
	TFAW int

	// RandomArbitrate is the percentage of arbitration attempts rejected at
	// random. Any non-zero value also randomizes the round-robin start
	// position every cycle. Rejection only applies from 2 percent up.
	RandomArbitrate int

	// FixedDelay, if non-zero, turns off all contention modeling and adds
	// this many cycles to every request.
	FixedDelay int
}

// DefaultConfig returns a DDR-400 like configuration with two DIMMs of two
// ranks and eight banks each.
func DefaultConfig() Config {
	return Config{
		MemBusCycleMultiplier: 10,
		BanksPerRank:          8,
		RanksPerDimm:          2,
		DimmsPerChannel:       2,
		BankBit0:              8,
		RankBit0:              11,
		DimmBit0:              12,
		BankQueueSize:         12,
		BankBusyTime:          11,
		RankRankDelay:         1,
		ReadWriteDelay:        2,
		BasicBusBusyTime:      2,
		MemCtlLatency:         12,
		RefreshPeriod:         1560,
		TFAW:                  0,
		RandomArbitrate:       0,
		FixedDelay:            0,
	}
}

// TotalBanks returns the number of banks in the channel.
func (c Config) TotalBanks() int {
	return c.BanksPerRank * c.RanksPerDimm * c.DimmsPerChannel
}

// TotalRanks returns the number of ranks in the channel.
func (c Config) TotalRanks() int {
	return c.RanksPerDimm * c.DimmsPerChannel
}

// FixedDelayMode returns true if contention modeling is turned off.
func (c Config) FixedDelayMode() bool {
	return c.FixedDelay != 0
}

func (c Config) mustBeValid() {
	mustBeAtLeast("memory bus cycle multiplier", c.MemBusCycleMultiplier, 1)
	mustBeAtLeast("bank queue size", c.BankQueueSize, 1)
	mustBeAtLeast("basic bus busy time", c.BasicBusBusyTime, 1)
	mustBeAtLeast("bank busy time", c.BankBusyTime, 0)
	mustBeAtLeast("rank-rank delay", c.RankRankDelay, 0)
	mustBeAtLeast("read-write delay", c.ReadWriteDelay, 0)
	mustBeAtLeast("controller latency", c.MemCtlLatency, 0)
	mustBeAtLeast("fixed delay", c.FixedDelay, 0)

	if c.TFAW < 0 || c.TFAW > timing.MaxWindowWidth {
		log.Panicf("tFAW must be between 0 and %d, got %d",
			timing.MaxWindowWidth, c.TFAW)
	}

	if c.RandomArbitrate < 0 || c.RandomArbitrate > 100 {
		log.Panicf("random arbitration must be a percentage, got %d",
			c.RandomArbitrate)
	}
}

func mustBeAtLeast(what string, value, min int) {
	if value < min {
		log.Panicf("%s must be at least %d, got %d", what, min, value)
	}
}

// Print writes a human readable summary of the configuration.
func (c Config) Print(w io.Writer, name string) {
	fmt.Fprintf(w, "Memory Control %s:\n", name)
	fmt.Fprintf(w, "  System cycles per memory cycle: %d\n",
		c.MemBusCycleMultiplier)
	fmt.Fprintf(w, "  Basic read latency: %d\n", c.MemCtlLatency)

	if c.FixedDelayMode() {
		fmt.Fprintf(w, "  Fixed latency mode: added cycles = %d\n",
			c.FixedDelay)
	} else {
		fmt.Fprintf(w, "  Bank busy time: %d memory cycles\n", c.BankBusyTime)
		fmt.Fprintf(w, "  Memory channel busy time: %d\n", c.BasicBusBusyTime)
		fmt.Fprintf(w, "  Dead cycles between reads to different ranks: %d\n",
			c.RankRankDelay)
		fmt.Fprintf(w, "  Dead cycles between a read and a write: %d\n",
			c.ReadWriteDelay)
		fmt.Fprintf(w, "  tFAW (four-activate) window: %d\n", c.TFAW)
	}

	fmt.Fprintf(w, "  Banks per rank: %d\n", c.BanksPerRank)
	fmt.Fprintf(w, "  Ranks per DIMM: %d\n", c.RanksPerDimm)
	fmt.Fprintf(w, "  DIMMs per channel: %d\n", c.DimmsPerChannel)
	fmt.Fprintf(w, "  LSB of bank field in address: %d\n", c.BankBit0)
	fmt.Fprintf(w, "  LSB of rank field in address: %d\n", c.RankBit0)
	fmt.Fprintf(w, "  LSB of DIMM field in address: %d\n", c.DimmBit0)
	fmt.Fprintf(w, "  Max size of each bank queue: %d\n", c.BankQueueSize)
	fmt.Fprintf(w, "  Refresh period (within one bank): %d\n", c.RefreshPeriod)
	fmt.Fprintf(w, "  Arbitration randomness: %d\n", c.RandomArbitrate)
}
