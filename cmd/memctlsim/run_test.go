package main

import (
	"bytes"
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/memctl/mem/memcontrol"
)

var _ = Describe("Simulation", func() {
	var (
		cfg  memcontrol.Config
		opts runOptions
		out  *bytes.Buffer
	)

	BeforeEach(func() {
		cfg = memcontrol.DefaultConfig()
		opts = defaultRunOptions()
		opts.requests = 300
		out = new(bytes.Buffer)
	})

	It("should deliver a response for every non-writeback request", func() {
		result, err := simulate(context.Background(), cfg, opts, out)

		Expect(err).NotTo(HaveOccurred())
		Expect(result.submitted).To(Equal(uint64(300)))
		Expect(result.responses).To(Equal(result.latency.Count()))
		Expect(result.counter.Count(memcontrol.HookPosSubmit)).
			To(Equal(uint64(300)))
		Expect(out.String()).To(ContainSubstring("Responses received"))
		Expect(out.String()).To(ContainSubstring("Memory Control MemCtl"))
	})

	It("should run the single-bank pattern slower than the random one", func() {
		opts.gap = 0
		random, err := simulate(context.Background(), cfg, opts, out)
		Expect(err).NotTo(HaveOccurred())

		opts.pattern = patternSingleBank
		single, err := simulate(context.Background(), cfg, opts, out)
		Expect(err).NotTo(HaveOccurred())

		Expect(single.latency.Average()).
			To(BeNumerically(">", random.latency.Average()))
	})

	It("should run with an external device", func() {
		opts.externalDevice = true
		opts.deviceLatency = 5
		opts.deviceCapacity = 4

		result, err := simulate(context.Background(), cfg, opts, out)

		Expect(err).NotTo(HaveOccurred())
		Expect(result.responses).To(BeNumerically(">", 0))
		Expect(result.responses).To(Equal(result.latency.Count()))
	})

	It("should report a bad pattern", func() {
		opts.pattern = "zigzag"

		_, err := simulate(context.Background(), cfg, opts, out)

		Expect(err).To(HaveOccurred())
	})
})
