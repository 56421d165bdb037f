package sim

import (
	"github.com/pthm-cable/gridmind/agentsim"
)

// scheduleEntry orders an agent by due time, ties broken by
// registration sequence. The stable secondary key guarantees
// deterministic replay given identical engine outputs.
type scheduleEntry struct {
	agent *agentsim.Agent
	due   float64
	index int // heap index
}

// scheduleHeap implements heap.Interface over pending agents.
type scheduleHeap []*scheduleEntry

func (h scheduleHeap) Len() int { return len(h) }

func (h scheduleHeap) Less(i, j int) bool {
	if h[i].due != h[j].due {
		return h[i].due < h[j].due
	}
	return h[i].agent.Seq < h[j].agent.Seq
}

func (h scheduleHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *scheduleHeap) Push(x any) {
	e := x.(*scheduleEntry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *scheduleHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[0 : n-1]
	return e
}
