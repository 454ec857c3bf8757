package main

import (
	"fmt"
	"math/bits"
	"math/rand"

	"github.com/sarchlab/memctl/mem/memcontrol"
)

const lineSize = 64

// Workload address patterns.
const (
	patternRandom     = "random"
	patternSequential = "sequential"
	patternSingleBank = "single-bank"
)

// An access is one synthetic request.
type access struct {
	addr       uint64
	accessType memcontrol.AccessType
}

// workload generates a deterministic stream of accesses for a controller
// configuration.
type workload struct {
	pattern          string
	readPercent      int
	writebackPercent int
	rand             *rand.Rand

	// fieldTop is the first address bit above the DIMM, rank, and bank
	// fields.
	fieldTop uint
	next     uint64
}

func newWorkload(
	cfg memcontrol.Config,
	pattern string,
	readPercent, writebackPercent int,
	seed int64,
) (*workload, error) {
	switch pattern {
	case patternRandom, patternSequential, patternSingleBank:
	default:
		return nil, fmt.Errorf("unknown pattern %q", pattern)
	}

	if readPercent < 0 || writebackPercent < 0 ||
		readPercent+writebackPercent > 100 {
		return nil, fmt.Errorf(
			"read (%d%%) and writeback (%d%%) shares must add up to at "+
				"most 100%%", readPercent, writebackPercent)
	}

	return &workload{
		pattern:          pattern,
		readPercent:      readPercent,
		writebackPercent: writebackPercent,
		rand:             rand.New(rand.NewSource(seed)),
		fieldTop:         fieldTop(cfg),
	}, nil
}

func fieldTop(cfg memcontrol.Config) uint {
	top := cfg.BankBit0 + fieldWidth(cfg.BanksPerRank)
	top = max(top, cfg.RankBit0+fieldWidth(cfg.RanksPerDimm))
	top = max(top, cfg.DimmBit0+fieldWidth(cfg.DimmsPerChannel))

	return top
}

func fieldWidth(n int) uint {
	return uint(bits.Len(uint(n)) - 1)
}

func (w *workload) nextAccess() access {
	a := access{
		addr:       w.nextAddress(),
		accessType: w.nextType(),
	}

	w.next++

	return a
}

func (w *workload) nextAddress() uint64 {
	switch w.pattern {
	case patternSequential:
		return w.next * lineSize
	case patternSingleBank:
		return w.next << w.fieldTop
	default:
		span := int64(1) << (w.fieldTop + 4)
		return uint64(w.rand.Int63n(span)) &^ (lineSize - 1)
	}
}

func (w *workload) nextType() memcontrol.AccessType {
	roll := w.rand.Intn(100)

	switch {
	case roll < w.readPercent:
		return memcontrol.AccessRead
	case roll < w.readPercent+w.writebackPercent:
		return memcontrol.AccessWriteback
	default:
		return memcontrol.AccessWrite
	}
}
