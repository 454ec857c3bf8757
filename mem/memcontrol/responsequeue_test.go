package memcontrol

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/memctl/sim"
)

var _ = Describe("Response queue", func() {
	It("should order by ready time and keep ties in push order", func() {
		q := &responseQueue{}

		times := []sim.VTime{5, 3, 5, 1}
		for i, t := range times {
			q.push(&Request{Seq: uint64(i), ReadyTime: t})
		}

		Expect(q.len()).To(Equal(4))
		Expect(q.head().ReadyTime).To(Equal(sim.VTime(1)))

		var seqs []uint64
		for q.len() > 0 {
			seqs = append(seqs, q.pop().Seq)
		}

		Expect(seqs).To(Equal([]uint64{3, 1, 0, 2}))
		Expect(q.head()).To(BeNil())
	})
})
