package memcontrol

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/memctl/sim"
	gomock "go.uber.org/mock/gomock"
)

var _ = Describe("Device model", func() {
	var (
		mockCtrl  *gomock.Controller
		engine    *sim.SerialEngine
		device    *MockDeviceModel
		readDone  CompletionFunc
		writeDone CompletionFunc
		builder   Builder
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = sim.NewSerialEngine()
		device = NewMockDeviceModel(mockCtrl)

		device.EXPECT().
			RegisterCallbacks(gomock.Any(), gomock.Any()).
			Do(func(r, w CompletionFunc) {
				readDone = r
				writeDone = w
			})

		builder = MakeBuilder().
			WithEngine(engine).
			WithMemBusCycleMultiplier(1).
			WithBanksPerRank(1).
			WithRanksPerDimm(1).
			WithDimmsPerChannel(1).
			WithRefreshPeriod(0).
			WithDeviceModel(device)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	Context("when the device decides the timing", func() {
		var comp *Comp

		BeforeEach(func() {
			comp = builder.WithInternalTimingModel(false).Build("MemCtl")
			device.EXPECT().Update().AnyTimes()
		})

		It("should respond when the device completes", func() {
			device.EXPECT().AddTransaction(false, uint64(0x100)).Return(true)

			comp.Submit(0x100, AccessRead, "h", 0)

			Expect(engine.RunUntil(1)).To(Succeed())
			Expect(comp.InputQueueLength()).To(Equal(0))
			Expect(comp.OutstandingLength()).To(Equal(1))

			readDone(0x100, 7)

			Expect(comp.OutstandingLength()).To(Equal(0))
			Expect(comp.ResponseQueueLength()).To(Equal(1))
			Expect(comp.IsReady()).To(BeFalse())

			Expect(engine.RunUntil(2)).To(Succeed())
			Expect(comp.IsReady()).To(BeTrue())
			Expect(comp.Drain().Handle).To(Equal("h"))
		})

		It("should retry refused transactions in order", func() {
			gomock.InOrder(
				device.EXPECT().AddTransaction(true, uint64(0x100)).Return(false),
				device.EXPECT().AddTransaction(true, uint64(0x100)).Return(true),
				device.EXPECT().AddTransaction(false, uint64(0x200)).Return(true),
			)

			comp.Submit(0x100, AccessWrite, "w", 0)
			comp.Submit(0x200, AccessRead, "r", 0)

			Expect(engine.RunUntil(1)).To(Succeed())
			Expect(comp.InputQueueLength()).To(Equal(2))

			Expect(engine.RunUntil(2)).To(Succeed())
			Expect(comp.InputQueueLength()).To(Equal(0))
			Expect(comp.OutstandingLength()).To(Equal(2))

			writeDone(0x100, 9)
			Expect(comp.OutstandingLength()).To(Equal(1))
			Expect(comp.ResponseQueueLength()).To(Equal(1))
		})

		It("should not respond to writebacks", func() {
			device.EXPECT().AddTransaction(true, uint64(0x100)).Return(true)

			comp.Submit(0x100, AccessWriteback, nil, 0)

			Expect(engine.RunUntil(1)).To(Succeed())
			writeDone(0x100, 3)

			Expect(comp.OutstandingLength()).To(Equal(0))
			Expect(comp.ResponseQueueLength()).To(Equal(0))
		})
	})

	Context("when the internal model decides the timing", func() {
		It("should only mirror issued requests to the device", func() {
			comp := builder.Build("MemCtl")

			device.EXPECT().Update().MinTimes(2)
			device.EXPECT().AddTransaction(false, uint64(0x100)).Return(false)

			comp.Submit(0x100, AccessRead, "h", 0)

			Expect(engine.RunUntil(3)).To(Succeed())
			Expect(comp.ResponseQueueLength()).To(Equal(1))

			readDone(0x100, 1)
			Expect(comp.ResponseQueueLength()).To(Equal(1))
			Expect(comp.OutstandingLength()).To(Equal(0))
		})
	})

	It("should refuse to build without a device when the internal model is off", func() {
		Expect(func() {
			MakeBuilder().
				WithEngine(engine).
				WithInternalTimingModel(false).
				Build("MemCtl")
		}).To(Panic())

		Expect(builder.Build("MemCtl").Name()).To(Equal("MemCtl"))
	})
})
