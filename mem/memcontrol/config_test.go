package memcontrol

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Config", func() {
	It("should count banks and ranks", func() {
		cfg := DefaultConfig()

		Expect(cfg.TotalBanks()).To(Equal(32))
		Expect(cfg.TotalRanks()).To(Equal(4))
		Expect(cfg.FixedDelayMode()).To(BeFalse())
	})

	It("should reject out of range values", func() {
		cfg := DefaultConfig()
		cfg.RandomArbitrate = 101
		Expect(cfg.mustBeValid).To(Panic())

		cfg = DefaultConfig()
		cfg.BasicBusBusyTime = 0
		Expect(cfg.mustBeValid).To(Panic())

		cfg = DefaultConfig()
		cfg.MemBusCycleMultiplier = 0
		Expect(cfg.mustBeValid).To(Panic())

		Expect(DefaultConfig().mustBeValid).NotTo(Panic())
	})

	It("should print the timing parameters", func() {
		buf := new(bytes.Buffer)
		DefaultConfig().Print(buf, "MemCtl")

		Expect(buf.String()).To(ContainSubstring("Memory Control MemCtl:"))
		Expect(buf.String()).To(ContainSubstring("Bank busy time: 11"))
	})

	It("should print the fixed delay instead of the timing", func() {
		cfg := DefaultConfig()
		cfg.FixedDelay = 50

		buf := new(bytes.Buffer)
		cfg.Print(buf, "MemCtl")

		Expect(buf.String()).To(ContainSubstring("added cycles = 50"))
		Expect(buf.String()).NotTo(ContainSubstring("Bank busy time"))
	})
})
