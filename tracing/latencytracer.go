package tracing

import (
	"sync"

	"github.com/sarchlab/memctl/mem/memcontrol"
	"github.com/sarchlab/memctl/sim"
)

// LatencyTracer measures the time from submission to response readiness.
type LatencyTracer struct {
	lock  sync.Mutex
	count uint64
	total sim.VTime
	min   sim.VTime
	max   sim.VTime
}

// NewLatencyTracer creates a LatencyTracer.
func NewLatencyTracer() *LatencyTracer {
	return &LatencyTracer{}
}

// Func records the latency of each response.
func (t *LatencyTracer) Func(ctx sim.HookCtx) {
	if ctx.Pos != memcontrol.HookPosResponse {
		return
	}

	req, ok := ctx.Item.(*memcontrol.Request)
	if !ok {
		return
	}

	latency := req.ReadyTime - req.ArrivalTime

	t.lock.Lock()
	defer t.lock.Unlock()

	if t.count == 0 || latency < t.min {
		t.min = latency
	}

	if latency > t.max {
		t.max = latency
	}

	t.total += latency
	t.count++
}

// Count returns the number of responses seen.
func (t *LatencyTracer) Count() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.count
}

// Average returns the mean latency in system cycles.
func (t *LatencyTracer) Average() float64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.count == 0 {
		return 0
	}

	return float64(t.total) / float64(t.count)
}

// Min returns the shortest latency.
func (t *LatencyTracer) Min() sim.VTime {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.min
}

// Max returns the longest latency.
func (t *LatencyTracer) Max() sim.VTime {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.max
}
