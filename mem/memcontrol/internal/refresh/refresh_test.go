package refresh

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Scheduler", func() {
	var s *Scheduler

	BeforeEach(func() {
		s = NewScheduler(80, 8)
	})

	It("should latch a refresh on the first cycle", func() {
		Expect(s.Owed()).To(Equal(0))

		s.Tick()

		Expect(s.Owed()).To(Equal(1))
		Expect(s.Due(0)).To(BeTrue())
		Expect(s.Due(1)).To(BeFalse())
	})

	It("should latch a refresh every period/banks cycles", func() {
		s.Tick()
		s.Issued()

		for i := 0; i < 9; i++ {
			s.Tick()
			Expect(s.Owed()).To(Equal(0))
		}

		s.Tick()
		Expect(s.Owed()).To(Equal(1))
	})

	It("should rotate through the banks", func() {
		for i := 0; i < 8; i++ {
			s.Tick()
			Expect(s.Due(i)).To(BeTrue())
			s.Issued()

			for j := 0; j < 9; j++ {
				s.Tick()
			}
		}

		Expect(s.NextBank()).To(Equal(0))
	})

	It("should panic when too many refreshes are owed", func() {
		for i := 0; i < 100; i++ {
			s.Tick()
		}

		Expect(s.Owed()).To(Equal(MaxOwed))
		Expect(func() { s.Tick() }).To(Panic())
	})

	It("should panic when issuing a refresh that is not owed", func() {
		Expect(func() { s.Issued() }).To(Panic())
	})

	It("should do nothing when disabled", func() {
		s = NewScheduler(0, 8)
		Expect(s.Enabled()).To(BeFalse())

		for i := 0; i < 1000; i++ {
			s.Tick()
		}

		Expect(s.Owed()).To(Equal(0))
	})

	It("should reject periods shorter than the bank count", func() {
		Expect(func() { NewScheduler(4, 8) }).To(Panic())
		Expect(func() { NewScheduler(-1, 8) }).To(Panic())
		Expect(func() { NewScheduler(80, 0) }).To(Panic())
	})
})
