package sim

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"
)

var _ = Describe("EventQueueImpl", func() {
	var (
		mockCtrl *gomock.Controller
		queue    *EventQueueImpl
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		queue = NewEventQueue()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should pop in order", func() {
		numEvents := 100
		for i := 0; i < numEvents; i++ {
			event := NewMockEvent(mockCtrl)
			event.EXPECT().
				Time().
				Return(VTime(rand.Intn(1000))).
				AnyTimes()
			queue.Push(event)
		}

		Expect(queue.Len()).To(Equal(numEvents))

		now := VTime(0)
		for i := 0; i < numEvents; i++ {
			Expect(queue.Peek().Time()).To(BeNumerically(">=", now))
			event := queue.Pop()
			Expect(event.Time()).To(BeNumerically(">=", now))
			now = event.Time()
		}

		Expect(queue.Len()).To(Equal(0))
	})

	It("should pop same-time events first in first out", func() {
		events := make([]Event, 0)
		for i := 0; i < 10; i++ {
			event := NewMockEvent(mockCtrl)
			event.EXPECT().Time().Return(VTime(5)).AnyTimes()
			queue.Push(event)
			events = append(events, event)
		}

		for i := 0; i < 10; i++ {
			Expect(queue.Pop()).To(BeIdenticalTo(events[i]))
		}
	})
})
