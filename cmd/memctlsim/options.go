package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sarchlab/memctl/mem/memcontrol"
	"github.com/spf13/cobra"
)

const envPrefix = "MEMCTL_"

// A configOption binds one controller parameter to a command-line flag and
// an environment key.
type configOption struct {
	flag  string
	env   string
	usage string
	get   func(c *memcontrol.Config) int
	set   func(c *memcontrol.Config, v int)
}

var configOptions = []configOption{
	{
		flag:  "mem-bus-cycle-multiplier",
		env:   "MEM_BUS_CYCLE_MULTIPLIER",
		usage: "System cycles per memory cycle.",
		get:   func(c *memcontrol.Config) int { return c.MemBusCycleMultiplier },
		set:   func(c *memcontrol.Config, v int) { c.MemBusCycleMultiplier = v },
	},
	{
		flag:  "banks-per-rank",
		env:   "BANKS_PER_RANK",
		usage: "Number of banks in each rank.",
		get:   func(c *memcontrol.Config) int { return c.BanksPerRank },
		set:   func(c *memcontrol.Config, v int) { c.BanksPerRank = v },
	},
	{
		flag:  "ranks-per-dimm",
		env:   "RANKS_PER_DIMM",
		usage: "Number of ranks on each DIMM.",
		get:   func(c *memcontrol.Config) int { return c.RanksPerDimm },
		set:   func(c *memcontrol.Config, v int) { c.RanksPerDimm = v },
	},
	{
		flag:  "dimms-per-channel",
		env:   "DIMMS_PER_CHANNEL",
		usage: "Number of DIMMs on the channel.",
		get:   func(c *memcontrol.Config) int { return c.DimmsPerChannel },
		set:   func(c *memcontrol.Config, v int) { c.DimmsPerChannel = v },
	},
	{
		flag:  "bank-bit0",
		env:   "BANK_BIT_0",
		usage: "Least significant address bit of the bank field.",
		get:   func(c *memcontrol.Config) int { return int(c.BankBit0) },
		set:   func(c *memcontrol.Config, v int) { c.BankBit0 = uint(v) },
	},
	{
		flag:  "rank-bit0",
		env:   "RANK_BIT_0",
		usage: "Least significant address bit of the rank field.",
		get:   func(c *memcontrol.Config) int { return int(c.RankBit0) },
		set:   func(c *memcontrol.Config, v int) { c.RankBit0 = uint(v) },
	},
	{
		flag:  "dimm-bit0",
		env:   "DIMM_BIT_0",
		usage: "Least significant address bit of the DIMM field.",
		get:   func(c *memcontrol.Config) int { return int(c.DimmBit0) },
		set:   func(c *memcontrol.Config, v int) { c.DimmBit0 = uint(v) },
	},
	{
		flag:  "bank-queue-size",
		env:   "BANK_QUEUE_SIZE",
		usage: "Capacity of each bank queue.",
		get:   func(c *memcontrol.Config) int { return c.BankQueueSize },
		set:   func(c *memcontrol.Config, v int) { c.BankQueueSize = v },
	},
	{
		flag:  "bank-busy-time",
		env:   "BANK_BUSY_TIME",
		usage: "Memory cycles a bank stays busy after an access.",
		get:   func(c *memcontrol.Config) int { return c.BankBusyTime },
		set:   func(c *memcontrol.Config, v int) { c.BankBusyTime = v },
	},
	{
		flag:  "rank-rank-delay",
		env:   "RANK_RANK_DELAY",
		usage: "Dead cycles between reads to different ranks.",
		get:   func(c *memcontrol.Config) int { return c.RankRankDelay },
		set:   func(c *memcontrol.Config, v int) { c.RankRankDelay = v },
	},
	{
		flag:  "read-write-delay",
		env:   "READ_WRITE_DELAY",
		usage: "Dead cycles between a read and a write.",
		get:   func(c *memcontrol.Config) int { return c.ReadWriteDelay },
		set:   func(c *memcontrol.Config, v int) { c.ReadWriteDelay = v },
	},
	{
		flag:  "basic-bus-busy-time",
		env:   "BASIC_BUS_BUSY_TIME",
		usage: "Memory cycles the data bus is held by one transfer.",
		get:   func(c *memcontrol.Config) int { return c.BasicBusBusyTime },
		set:   func(c *memcontrol.Config, v int) { c.BasicBusBusyTime = v },
	},
	{
		flag:  "mem-ctl-latency",
		env:   "MEM_CTL_LATENCY",
		usage: "Memory cycles from issue to response.",
		get:   func(c *memcontrol.Config) int { return c.MemCtlLatency },
		set:   func(c *memcontrol.Config, v int) { c.MemCtlLatency = v },
	},
	{
		flag:  "refresh-period",
		env:   "REFRESH_PERIOD",
		usage: "Memory cycles within which every bank is refreshed. 0 disables refresh.",
		get:   func(c *memcontrol.Config) int { return c.RefreshPeriod },
		set:   func(c *memcontrol.Config, v int) { c.RefreshPeriod = v },
	},
	{
		flag:  "tfaw",
		env:   "TFAW",
		usage: "Four-activate window in memory cycles. 0 disables the window.",
		get:   func(c *memcontrol.Config) int { return c.TFAW },
		set:   func(c *memcontrol.Config, v int) { c.TFAW = v },
	},
	{
		flag:  "random-arbitrate",
		env:   "RANDOM_ARBITRATE",
		usage: "Percentage of arbitration attempts rejected at random.",
		get:   func(c *memcontrol.Config) int { return c.RandomArbitrate },
		set:   func(c *memcontrol.Config, v int) { c.RandomArbitrate = v },
	},
	{
		flag:  "fixed-delay",
		env:   "FIXED_DELAY",
		usage: "Turn off contention modeling and add this many cycles.",
		get:   func(c *memcontrol.Config) int { return c.FixedDelay },
		set:   func(c *memcontrol.Config, v int) { c.FixedDelay = v },
	},
}

func (o configOption) envKey() string {
	return envPrefix + o.env
}

// addConfigFlags registers one flag per controller parameter, using the
// defaults as the flag defaults.
func addConfigFlags(cmd *cobra.Command) {
	defaults := memcontrol.DefaultConfig()

	for _, o := range configOptions {
		cmd.Flags().Int(o.flag, o.get(&defaults), o.usage)
	}

	cmd.Flags().String("env", ".env",
		"File with "+envPrefix+"* settings. Ignored if it does not exist.")
}

// loadConfig builds the controller configuration. Values are layered with
// the defaults at the bottom, then the env file, then the process
// environment, and the flags that were set explicitly on top.
func loadConfig(cmd *cobra.Command) (memcontrol.Config, error) {
	cfg := memcontrol.DefaultConfig()

	envFile, _ := cmd.Flags().GetString("env")

	fileValues, err := readEnvFile(envFile)
	if err != nil {
		return cfg, err
	}

	for _, o := range configOptions {
		raw, found := fileValues[o.envKey()]

		if v, ok := os.LookupEnv(o.envKey()); ok {
			raw, found = v, true
		}

		if !found {
			continue
		}

		v, err := strconv.Atoi(raw)
		if err != nil {
			return cfg, fmt.Errorf("%s: %q is not an integer",
				o.envKey(), raw)
		}

		o.set(&cfg, v)
	}

	for _, o := range configOptions {
		if !cmd.Flags().Changed(o.flag) {
			continue
		}

		v, err := cmd.Flags().GetInt(o.flag)
		if err != nil {
			return cfg, err
		}

		o.set(&cfg, v)
	}

	return cfg, nil
}

func readEnvFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	values, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return values, nil
}
