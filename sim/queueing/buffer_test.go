package queueing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/memctl/sim"
)

type recordingHook struct {
	positions []*sim.HookPos
	items     []interface{}
}

func (h *recordingHook) Func(ctx sim.HookCtx) {
	h.positions = append(h.positions, ctx.Pos)
	h.items = append(h.items, ctx.Item)
}

var _ = Describe("BufferImpl", func() {
	var (
		buf Buffer
	)

	BeforeEach(func() {
		buf = NewBuffer("Buf", 2)
	})

	It("should allow push and pop", func() {
		Expect(buf.Name()).To(Equal("Buf"))
		Expect(buf.Capacity()).To(Equal(2))
		Expect(buf.CanPush()).To(BeTrue())

		buf.Push(1)
		Expect(buf.CanPush()).To(BeTrue())
		Expect(buf.Size()).To(Equal(1))

		buf.Push(2)
		Expect(buf.CanPush()).To(BeFalse())
		Expect(buf.Size()).To(Equal(2))
		Expect(func() {
			buf.Push(3)
		}).To(Panic())

		Expect(buf.Peek()).To(Equal(1))
		Expect(buf.Pop()).To(Equal(1))
		Expect(buf.Size()).To(Equal(1))
		Expect(buf.Peek()).To(Equal(2))
		Expect(buf.Pop()).To(Equal(2))
		Expect(buf.Size()).To(Equal(0))
		Expect(buf.Peek()).To(BeNil())
		Expect(buf.Pop()).To(BeNil())
	})

	It("should clear", func() {
		buf.Push(2)
		Expect(buf.Size()).To(Equal(1))

		buf.Clear()

		Expect(buf.Size()).To(Equal(0))
		Expect(buf.Peek()).To(BeNil())
	})

	It("should invoke hooks on push and pop", func() {
		hook := &recordingHook{}
		buf.AcceptHook(hook)

		buf.Push("a")
		buf.Pop()

		Expect(hook.positions).To(Equal([]*sim.HookPos{
			HookPosBufPush, HookPosBufPop,
		}))
		Expect(hook.items).To(Equal([]interface{}{"a", "a"}))
	})

	It("should reject a non-positive capacity", func() {
		Expect(func() { NewBuffer("Bad", 0) }).To(Panic())
	})
})
