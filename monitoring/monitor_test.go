package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/memctl/mem/memcontrol"
	"github.com/sarchlab/memctl/sim"
	"github.com/sarchlab/memctl/tracing"
)

var _ = Describe("Monitor", func() {
	var (
		m       *Monitor
		engine  *sim.SerialEngine
		comp    *memcontrol.Comp
		counter *tracing.EventCounter
	)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		m.Router().ServeHTTP(rec, req)

		return rec
	}

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		comp = memcontrol.MakeBuilder().
			WithEngine(engine).
			WithMemBusCycleMultiplier(1).
			WithBankQueueSize(4).
			Build("MemCtl")
		counter = tracing.NewEventCounter()
		comp.AcceptHook(counter)

		m = NewMonitor()
		m.RegisterEngine(engine)
		m.RegisterController(comp)
		m.RegisterEventCounter(comp.Name(), counter)
	})

	It("should use a random port for reserved port numbers", func() {
		Expect(m.WithPortNumber(80).portNumber).To(Equal(0))
		Expect(m.WithPortNumber(8080).portNumber).To(Equal(8080))
	})

	It("should list components", func() {
		rec := get("/api/list_components")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(Equal(`["MemCtl"]`))
	})

	It("should report the current time", func() {
		comp.Submit(0x0, memcontrol.AccessRead, 1, 0)
		Expect(engine.RunUntil(3)).To(Succeed())

		Expect(get("/api/now").Body.String()).To(Equal(`{"now":3}`))
	})

	It("should report the controller status", func() {
		comp.Submit(0x0, memcontrol.AccessRead, 1, 0)
		comp.Submit(0x0, memcontrol.AccessRead, 2, 0)

		rec := get("/api/status/MemCtl")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var s memcontrol.Status
		Expect(json.Unmarshal(rec.Body.Bytes(), &s)).To(Succeed())
		Expect(s.Name).To(Equal("MemCtl"))
		Expect(s.InputQueue).To(Equal(2))
		Expect(s.State).To(Equal("Active"))
		Expect(s.BankQueues).To(HaveLen(32))
	})

	It("should return 404 for unknown controllers", func() {
		Expect(get("/api/status/Nope").Code).To(Equal(http.StatusNotFound))
		Expect(get("/api/stats/Nope").Code).To(Equal(http.StatusNotFound))
		Expect(get("/api/component/Nope").Code).To(Equal(http.StatusNotFound))
	})

	It("should report event counters", func() {
		comp.Submit(0x0, memcontrol.AccessRead, 1, 0)
		Expect(engine.Run()).To(Succeed())

		var stats map[string]tracing.Stat
		rec := get("/api/stats/MemCtl")
		Expect(json.Unmarshal(rec.Body.Bytes(), &stats)).To(Succeed())
		Expect(stats[memcontrol.HookPosRead.Name].Count).To(Equal(uint64(1)))
	})

	It("should list the fullest bank queues first", func() {
		comp.Submit(0x1F00, memcontrol.AccessRead, 1, 0)
		comp.Submit(0x1F00, memcontrol.AccessRead, 2, 0)
		comp.Submit(0x1F00, memcontrol.AccessRead, 3, 0)
		Expect(engine.RunUntil(4)).To(Succeed())

		var levels []bufferLevel
		rec := get("/api/buffers?limit=2")
		Expect(json.Unmarshal(rec.Body.Bytes(), &levels)).To(Succeed())
		Expect(levels).To(HaveLen(2))
		Expect(levels[0].Buffer).To(Equal("MemCtl.Bank[31]"))
		Expect(levels[0].Level).To(Equal(2))
		Expect(levels[0].Cap).To(Equal(4))

		Expect(get("/api/buffers?limit=x").Code).To(Equal(http.StatusBadRequest))
	})

	It("should serialize a component", func() {
		rec := get("/api/component/MemCtl")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.Len()).To(BeNumerically(">", 0))
	})

	It("should pause and continue the engine", func() {
		Expect(get("/api/pause").Code).To(Equal(http.StatusOK))
		Expect(m.userPaused).To(BeTrue())

		Expect(get("/api/status/MemCtl").Code).To(Equal(http.StatusOK))

		Expect(get("/api/continue").Code).To(Equal(http.StatusOK))
		Expect(m.userPaused).To(BeFalse())
	})

	It("should track progress bars", func() {
		bar := m.CreateProgressBar("Requests", 3)
		bar.IncrementInProgress(2)
		bar.MoveInProgressToFinished(1)

		var bars []map[string]any
		rec := get("/api/progress")
		Expect(json.Unmarshal(rec.Body.Bytes(), &bars)).To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0]["name"]).To(Equal("Requests"))
		Expect(bars[0]["finished"]).To(BeNumerically("==", 1))
		Expect(bars[0]["in_progress"]).To(BeNumerically("==", 1))

		m.CompleteProgressBar(bar)
		Expect(get("/api/progress").Body.String()).To(Equal("[]"))
	})

	It("should report resource usage", func() {
		rec := get("/api/resource")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("memory_size"))
	})
})

var _ = Describe("ProgressBar", func() {
	It("should not move more than what is in progress", func() {
		bar := &ProgressBar{Total: 2}
		bar.IncrementInProgress(1)
		bar.MoveInProgressToFinished(5)

		Expect(bar.InProgress).To(BeZero())
		Expect(bar.Finished).To(Equal(uint64(1)))
		Expect(bar.Done()).To(BeFalse())

		bar.IncrementFinished(1)
		Expect(bar.Done()).To(BeTrue())
	})
})
