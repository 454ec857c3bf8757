package memcontrol

import (
	"fmt"
	"log"

	"github.com/sarchlab/memctl/mem/memcontrol/internal/addressing"
	"github.com/sarchlab/memctl/mem/memcontrol/internal/refresh"
	"github.com/sarchlab/memctl/mem/memcontrol/internal/timing"
	"github.com/sarchlab/memctl/sim"
	"github.com/sarchlab/memctl/sim/queueing"
)

// Builder can build memory controllers.
type Builder struct {
	scheduler        sim.Scheduler
	consumer         sim.Handler
	cfg              Config
	rand             RandSource
	device           DeviceModel
	useInternalModel bool
}

// MakeBuilder returns a Builder with the default configuration.
func MakeBuilder() Builder {
	return Builder{
		cfg:              DefaultConfig(),
		useInternalModel: true,
	}
}

// WithEngine sets the engine that drives the controller.
func (b Builder) WithEngine(engine sim.EventScheduler) Builder {
	b.scheduler = sim.NewScheduler(engine)
	return b
}

// WithScheduler sets the scheduler that drives the controller.
func (b Builder) WithScheduler(scheduler sim.Scheduler) Builder {
	b.scheduler = scheduler
	return b
}

// WithConsumer sets the handler that is woken up when a response becomes
// ready.
func (b Builder) WithConsumer(consumer sim.Handler) Builder {
	b.consumer = consumer
	return b
}

// WithConfig replaces the whole configuration.
func (b Builder) WithConfig(cfg Config) Builder {
	b.cfg = cfg
	return b
}

// WithMemBusCycleMultiplier sets the number of system cycles per memory
// cycle.
func (b Builder) WithMemBusCycleMultiplier(n int) Builder {
	b.cfg.MemBusCycleMultiplier = n
	return b
}

// WithBanksPerRank sets the number of banks in each rank.
func (b Builder) WithBanksPerRank(n int) Builder {
	b.cfg.BanksPerRank = n
	return b
}

// WithRanksPerDimm sets the number of ranks on each DIMM.
func (b Builder) WithRanksPerDimm(n int) Builder {
	b.cfg.RanksPerDimm = n
	return b
}

// WithDimmsPerChannel sets the number of DIMMs in the channel.
func (b Builder) WithDimmsPerChannel(n int) Builder {
	b.cfg.DimmsPerChannel = n
	return b
}

// WithBankBit0 sets the lowest address bit of the bank field.
func (b Builder) WithBankBit0(bit uint) Builder {
	b.cfg.BankBit0 = bit
	return b
}

// WithRankBit0 sets the lowest address bit of the rank field.
func (b Builder) WithRankBit0(bit uint) Builder {
	b.cfg.RankBit0 = bit
	return b
}

// WithDimmBit0 sets the lowest address bit of the DIMM field.
func (b Builder) WithDimmBit0(bit uint) Builder {
	b.cfg.DimmBit0 = bit
	return b
}

// WithBankQueueSize sets the capacity of each bank queue.
func (b Builder) WithBankQueueSize(n int) Builder {
	b.cfg.BankQueueSize = n
	return b
}

// WithBankBusyTime sets how long a bank stays busy after an activate.
func (b Builder) WithBankBusyTime(cycles int) Builder {
	b.cfg.BankBusyTime = cycles
	return b
}

// WithRankRankDelay sets the bubble between reads to different ranks.
func (b Builder) WithRankRankDelay(cycles int) Builder {
	b.cfg.RankRankDelay = cycles
	return b
}

// WithReadWriteDelay sets the bubble between a read and a following write.
func (b Builder) WithReadWriteDelay(cycles int) Builder {
	b.cfg.ReadWriteDelay = cycles
	return b
}

// WithBasicBusBusyTime sets how long each access occupies the bus.
func (b Builder) WithBasicBusBusyTime(cycles int) Builder {
	b.cfg.BasicBusBusyTime = cycles
	return b
}

// WithMemCtlLatency sets the latency from issue to response.
func (b Builder) WithMemCtlLatency(cycles int) Builder {
	b.cfg.MemCtlLatency = cycles
	return b
}

// WithRefreshPeriod sets the period within which every bank is refreshed.
func (b Builder) WithRefreshPeriod(cycles int) Builder {
	b.cfg.RefreshPeriod = cycles
	return b
}

// WithTFAW sets the four-activate window.
func (b Builder) WithTFAW(cycles int) Builder {
	b.cfg.TFAW = cycles
	return b
}

// WithRandomArbitrate sets the percentage of randomly rejected arbitrations.
func (b Builder) WithRandomArbitrate(percent int) Builder {
	b.cfg.RandomArbitrate = percent
	return b
}

// WithFixedDelay turns off contention modeling and adds a flat latency.
func (b Builder) WithFixedDelay(cycles int) Builder {
	b.cfg.FixedDelay = cycles
	return b
}

// WithRandSource sets the source of arbitration randomness.
func (b Builder) WithRandSource(r RandSource) Builder {
	b.rand = r
	return b
}

// WithSeed seeds the arbitration randomness.
func (b Builder) WithSeed(seed int64) Builder {
	b.rand = NewRandSource(seed)
	return b
}

// WithDeviceModel attaches a device-level timing model.
func (b Builder) WithDeviceModel(device DeviceModel) Builder {
	b.device = device
	return b
}

// WithInternalTimingModel selects who decides the timing. When false, the
// attached device model decides when requests complete.
func (b Builder) WithInternalTimingModel(use bool) Builder {
	b.useInternalModel = use
	return b
}

// Build creates a memory controller.
func (b Builder) Build(name string) *Comp {
	b.cfg.mustBeValid()

	if b.scheduler == nil {
		log.Panicf("memory controller %s has no engine", name)
	}

	if !b.useInternalModel && b.device == nil {
		log.Panicf("memory controller %s needs a device model "+
			"when the internal timing model is off", name)
	}

	c := &Comp{
		name:             name,
		cfg:              b.cfg,
		scheduler:        b.scheduler,
		consumer:         b.consumer,
		rand:             b.rand,
		device:           b.device,
		useInternalModel: b.useInternalModel,
	}

	if c.rand == nil {
		c.rand = NewRandSource(1)
	}

	c.mapper = addressing.MakeMapper(
		b.cfg.BanksPerRank, b.cfg.RanksPerDimm, b.cfg.DimmsPerChannel,
		b.cfg.BankBit0, b.cfg.RankBit0, b.cfg.DimmBit0,
	)
	c.tracker = timing.NewTracker(
		c.mapper.TotalBanks(), c.mapper.TotalRanks(), b.cfg.TFAW,
		timing.BusTimes{
			Basic:          b.cfg.BasicBusBusyTime,
			ReadWriteDelay: b.cfg.ReadWriteDelay,
			RankRankDelay:  b.cfg.RankRankDelay,
		},
	)
	c.refresher = refresh.NewScheduler(b.cfg.RefreshPeriod, c.mapper.TotalBanks())

	c.banks = make([]bankState, c.mapper.TotalBanks())
	for i := range c.banks {
		c.banks[i].queue = queueing.NewBuffer(
			fmt.Sprintf("%s.Bank[%d]", name, i), b.cfg.BankQueueSize)
	}

	if c.device != nil {
		c.device.RegisterCallbacks(c.deviceCompleted, c.deviceCompleted)
	}

	return c
}
