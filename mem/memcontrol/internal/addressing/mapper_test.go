package addressing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Mapper", func() {
	var m Mapper

	BeforeEach(func() {
		m = MakeMapper(8, 2, 2, 8, 11, 12)
	})

	It("should count banks and ranks", func() {
		Expect(m.TotalBanks()).To(Equal(32))
		Expect(m.TotalRanks()).To(Equal(4))
	})

	It("should locate addresses", func() {
		Expect(m.Locate(0)).To(Equal(Location{}))
		Expect(m.Locate(0x500)).To(Equal(Location{Bank: 5}))
		Expect(m.Locate(0xB00)).To(Equal(Location{Rank: 1, Bank: 3}))
		Expect(m.Locate(0x1F00)).To(Equal(Location{Dimm: 1, Rank: 1, Bank: 7}))
	})

	It("should ignore bits outside the fields", func() {
		Expect(m.BankOf(0x500)).To(Equal(m.BankOf(0xFFFF_E000_0000_0500)))
		Expect(m.BankOf(0x5FF)).To(Equal(5))
	})

	It("should give flat bank indices", func() {
		Expect(m.BankOf(0)).To(Equal(0))
		Expect(m.BankOf(0x500)).To(Equal(5))
		Expect(m.BankOf(0xB00)).To(Equal(11))
		Expect(m.BankOf(0x1F00)).To(Equal(31))
	})

	It("should give every bank a distinct index", func() {
		seen := make(map[int]bool)
		for addr := uint64(0); addr < 1<<13; addr += 1 << 8 {
			seen[m.BankOf(addr)] = true
		}

		Expect(seen).To(HaveLen(m.TotalBanks()))
	})

	It("should find the rank of a bank", func() {
		Expect(m.RankOf(0)).To(Equal(0))
		Expect(m.RankOf(7)).To(Equal(0))
		Expect(m.RankOf(8)).To(Equal(1))
		Expect(m.RankOf(31)).To(Equal(3))
	})

	It("should panic if the rank is out of range", func() {
		Expect(func() { m.RankOf(32) }).To(Panic())
		Expect(func() { m.RankOf(-1) }).To(Panic())
	})

	It("should reject granularities that are not powers of two", func() {
		Expect(func() { MakeMapper(6, 1, 1, 8, 11, 12) }).To(Panic())
		Expect(func() { MakeMapper(8, 0, 1, 8, 11, 12) }).To(Panic())
		Expect(func() { MakeMapper(8, 1, 3, 8, 11, 12) }).To(Panic())
	})

	It("should handle a single-bank channel", func() {
		single := MakeMapper(1, 1, 1, 8, 11, 12)

		Expect(single.TotalBanks()).To(Equal(1))
		Expect(single.BankOf(0xFFFF_FFFF)).To(Equal(0))
		Expect(single.RankOf(0)).To(Equal(0))
	})
})
