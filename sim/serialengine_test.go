package sim

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"
)

type endRecorder struct {
	endedAt []VTime
}

func (r *endRecorder) Handle(now VTime) {
	r.endedAt = append(r.endedAt, now)
}

type eventCounter struct {
	before, after int
}

func (c *eventCounter) Func(ctx HookCtx) {
	switch ctx.Pos {
	case HookPosBeforeEvent:
		c.before++
	case HookPosAfterEvent:
		c.after++
	}
}

var _ = Describe("SerialEngine", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *SerialEngine
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = NewSerialEngine()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	mockEvent := func(t VTime, h Handler, secondary bool) *MockEvent {
		evt := NewMockEvent(mockCtrl)
		evt.EXPECT().Time().Return(t).AnyTimes()
		evt.EXPECT().Handler().Return(h).AnyTimes()
		evt.EXPECT().IsSecondary().Return(secondary).AnyTimes()

		return evt
	}

	It("should schedule events", func() {
		handler1 := NewMockHandler(mockCtrl)
		handler2 := NewMockHandler(mockCtrl)
		evt1 := mockEvent(4, handler1, false)
		evt2 := mockEvent(2, handler2, false)
		evt3 := mockEvent(3, handler1, false)
		evt4 := mockEvent(5, handler1, false)

		handleEvt2 := handler2.EXPECT().Handle(evt2).DoAndReturn(func(Event) error {
			engine.Schedule(evt3)
			engine.Schedule(evt4)
			return nil
		})
		handleEvt3 := handler1.EXPECT().Handle(evt3).After(handleEvt2)
		handleEvt1 := handler1.EXPECT().Handle(evt1).After(handleEvt3)
		handler1.EXPECT().Handle(evt4).After(handleEvt1)

		engine.Schedule(evt1)
		engine.Schedule(evt2)

		Expect(engine.Run()).To(Succeed())
		Expect(engine.CurrentTime()).To(Equal(VTime(5)))
	})

	It("should consider secondary events", func() {
		handler1 := NewMockHandler(mockCtrl)
		handler2 := NewMockHandler(mockCtrl)
		handler3 := NewMockHandler(mockCtrl)
		evt1 := mockEvent(2, handler1, true)
		evt2 := mockEvent(2, handler2, false)
		evt3 := mockEvent(2, handler3, false)

		handleEvt2 := handler2.EXPECT().Handle(evt2)
		handleEvt3 := handler3.EXPECT().Handle(evt3)
		handler1.EXPECT().Handle(evt1).After(handleEvt2).After(handleEvt3)

		engine.Schedule(evt1)
		engine.Schedule(evt2)
		engine.Schedule(evt3)

		Expect(engine.Run()).To(Succeed())
	})

	It("should keep insertion order for events of the same time", func() {
		handler := NewMockHandler(mockCtrl)
		evt1 := mockEvent(7, handler, false)
		evt2 := mockEvent(7, handler, false)
		evt3 := mockEvent(7, handler, false)

		h1 := handler.EXPECT().Handle(evt1)
		h2 := handler.EXPECT().Handle(evt2).After(h1)
		handler.EXPECT().Handle(evt3).After(h2)

		engine.Schedule(evt1)
		engine.Schedule(evt2)
		engine.Schedule(evt3)

		Expect(engine.Run()).To(Succeed())
	})

	It("should panic when scheduling an event in the past", func() {
		handler := NewMockHandler(mockCtrl)
		evt1 := mockEvent(10, handler, false)
		evt2 := mockEvent(3, handler, false)

		handler.EXPECT().Handle(evt1).DoAndReturn(func(Event) error {
			engine.Schedule(evt2)
			return nil
		})

		engine.Schedule(evt1)

		Expect(func() { _ = engine.Run() }).To(Panic())
	})

	It("should stop at the deadline with RunUntil", func() {
		handler := NewMockHandler(mockCtrl)
		evt1 := mockEvent(2, handler, false)
		evt2 := mockEvent(9, handler, false)

		handler.EXPECT().Handle(evt1)
		engine.Schedule(evt1)
		engine.Schedule(evt2)

		Expect(engine.RunUntil(5)).To(Succeed())
		Expect(engine.CurrentTime()).To(Equal(VTime(2)))

		handler.EXPECT().Handle(evt2)
		Expect(engine.Run()).To(Succeed())
		Expect(engine.CurrentTime()).To(Equal(VTime(9)))
	})

	It("should return the handler error", func() {
		handler := NewMockHandler(mockCtrl)
		evt1 := mockEvent(1, handler, false)
		evt2 := mockEvent(2, handler, false)
		handler.EXPECT().Handle(evt1).Return(errors.New("boom"))

		engine.Schedule(evt1)
		engine.Schedule(evt2)

		Expect(engine.Run()).To(MatchError("boom"))
	})

	It("should invoke hooks around each event", func() {
		handler := NewMockHandler(mockCtrl)
		handler.EXPECT().Handle(gomock.Any()).Times(2)
		counter := &eventCounter{}
		engine.AcceptHook(counter)

		engine.Schedule(mockEvent(1, handler, false))
		engine.Schedule(mockEvent(2, handler, true))

		Expect(engine.Run()).To(Succeed())
		Expect(counter.before).To(Equal(2))
		Expect(counter.after).To(Equal(2))
	})

	It("should call simulation end handlers", func() {
		handler := NewMockHandler(mockCtrl)
		handler.EXPECT().Handle(gomock.Any())
		rec := &endRecorder{}
		engine.RegisterSimulationEndHandler(rec)

		engine.Schedule(mockEvent(42, handler, false))
		Expect(engine.Run()).To(Succeed())
		engine.Finished()

		Expect(rec.endedAt).To(Equal([]VTime{42}))
	})
})
