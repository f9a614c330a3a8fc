package workerpool

import "github.com/Izzette/go-gtask/api/types"

// queuedItem pairs a WorkItem with a monotonic arrival sequence number so that items of equal priority are broken by
// FIFO order, exactly as spec.md §4.6 "Scheduling" requires.
type queuedItem struct {
	item types.WorkItem
	seq  uint64
}

// itemHeap is a [container/heap.Interface] min-heap ordered by (priority, seq): lower priority value is more urgent,
// ties broken by earlier arrival.
type itemHeap []queuedItem

func (h itemHeap) Len() int { return len(h) }

func (h itemHeap) Less(i, j int) bool {
	pi, pj := h[i].item.Priority(), h[j].item.Priority()
	if pi != pj {
		return pi < pj
	}

	return h[i].seq < h[j].seq
}

func (h itemHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *itemHeap) Push(x any) {
	*h = append(*h, x.(queuedItem))
}

func (h *itemHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]

	return item
}
