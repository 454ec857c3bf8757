// Package addressing maps physical addresses to the banks and ranks of a
// memory channel.
package addressing

import (
	"log"
	"math/bits"
)

// Location identifies one bank in a channel.
type Location struct {
	Dimm int
	Rank int
	Bank int
}

// A Mapper extracts the DIMM, rank, and bank fields from a physical address.
// All granularities must be powers of two.
type Mapper struct {
	banksPerRank    int
	ranksPerDimm    int
	dimmsPerChannel int

	bankBit0 uint
	rankBit0 uint
	dimmBit0 uint
}

// MakeMapper creates a Mapper. The bit offsets give the position of the least
// significant bit of each field.
func MakeMapper(
	banksPerRank, ranksPerDimm, dimmsPerChannel int,
	bankBit0, rankBit0, dimmBit0 uint,
) Mapper {
	mustBePowerOfTwo("banks per rank", banksPerRank)
	mustBePowerOfTwo("ranks per DIMM", ranksPerDimm)
	mustBePowerOfTwo("DIMMs per channel", dimmsPerChannel)

	return Mapper{
		banksPerRank:    banksPerRank,
		ranksPerDimm:    ranksPerDimm,
		dimmsPerChannel: dimmsPerChannel,
		bankBit0:        bankBit0,
		rankBit0:        rankBit0,
		dimmBit0:        dimmBit0,
	}
}

func mustBePowerOfTwo(what string, n int) {
	if n <= 0 || bits.OnesCount(uint(n)) != 1 {
		log.Panicf("%s must be a power of two, got %d", what, n)
	}
}

// TotalBanks returns the number of banks in the channel.
func (m Mapper) TotalBanks() int {
	return m.banksPerRank * m.ranksPerDimm * m.dimmsPerChannel
}

// TotalRanks returns the number of ranks in the channel.
func (m Mapper) TotalRanks() int {
	return m.ranksPerDimm * m.dimmsPerChannel
}

// Locate returns the DIMM, rank within the DIMM, and bank within the rank that
// the address falls in.
func (m Mapper) Locate(addr uint64) Location {
	return Location{
		Dimm: int((addr >> m.dimmBit0) & uint64(m.dimmsPerChannel-1)),
		Rank: int((addr >> m.rankBit0) & uint64(m.ranksPerDimm-1)),
		Bank: int((addr >> m.bankBit0) & uint64(m.banksPerRank-1)),
	}
}

// FlatBank returns the channel-wide index of the bank at the location.
func (m Mapper) FlatBank(loc Location) int {
	return loc.Dimm*m.ranksPerDimm*m.banksPerRank +
		loc.Rank*m.banksPerRank +
		loc.Bank
}

// BankOf returns an index that is unique for each bank in the channel.
func (m Mapper) BankOf(addr uint64) int {
	return m.FlatBank(m.Locate(addr))
}

// RankOf returns the channel-wide rank index of a flat bank index.
func (m Mapper) RankOf(bank int) int {
	if bank < 0 {
		log.Panicf("bank index %d is negative", bank)
	}

	rank := bank / m.banksPerRank
	if rank >= m.TotalRanks() {
		log.Panicf("bank %d maps to rank %d, but there are only %d ranks",
			bank, rank, m.TotalRanks())
	}

	return rank
}
