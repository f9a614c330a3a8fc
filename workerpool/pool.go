// Package workerpool implements [types.WorkerPool]: a bounded, priority-ordered pool of goroutines executing
// [types.WorkItem] instances, grounded on the teacher library's workpool.pool[PoolResourceT] (request channel +
// sync.WaitGroup + atomic.Bool started), generalized with a priority heap in place of a plain FIFO channel and with
// the nested-blocking transient-worker accounting spec.md §4.6 and §9 call for.
package workerpool

import (
	"container/heap"
	"sync"
	"sync/atomic"

	"github.com/Izzette/go-gtask/api/types"
)

// defaultMaxTransient bounds the number of extra goroutines the pool will spawn in response to nested
// [Pool.EnterBlocking] calls, so a pathological nesting chain cannot grow the process-wide thread count without
// bound (spec.md §9 "capped by a hard maximum").
const defaultMaxTransient = 64

// New creates (but does not start) a Pool with the given fixed concurrency.
// It is equivalent to calling [NewWithTransientLimit] with the package default transient-worker cap.
func New(concurrency int) *Pool {
	return NewWithTransientLimit(concurrency, defaultMaxTransient)
}

// NewWithTransientLimit creates (but does not start) a Pool with the given fixed concurrency and the given cap on
// the number of transient workers it may spawn to compensate for nested blocking (see [Pool.EnterBlocking]).
func NewWithTransientLimit(concurrency int, maxTransient int) *Pool {
	if concurrency <= 0 {
		panic("workerpool: Pool must have at least one worker")
	}

	p := &Pool{
		concurrency:  uint(concurrency),
		maxTransient: maxTransient,
	}
	p.cond = sync.NewCond(&p.mu)
	p.wg.Add(concurrency)

	return p
}

// Pool implements [types.WorkerPool].
type Pool struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  itemHeap
	closed bool

	concurrency uint
	started     atomic.Bool

	wg          sync.WaitGroup
	transientWG sync.WaitGroup

	seq atomic.Uint64

	blockers        atomic.Int32
	transientActive atomic.Int32
	maxTransient    int
}

var _ types.WorkerPool = (*Pool)(nil)

// Start implements [types.WorkerPool.Start].
func (p *Pool) Start() {
	if p.started.Swap(true) {
		panic("workerpool: attempt to start a previously started Pool")
	}

	for i := uint(0); i < p.concurrency; i++ {
		go p.worker(&p.wg)
	}
}

// Close implements [types.WorkerPool.Close].
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()

		return
	}
	p.closed = true
	p.cond.Broadcast()
	p.mu.Unlock()

	if !p.started.Load() {
		return
	}
	p.wg.Wait()
	p.transientWG.Wait()
}

// Enqueue implements [types.WorkerPool.Enqueue].
func (p *Pool) Enqueue(item types.WorkItem) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		panic("workerpool: attempt to enqueue work on a closed Pool")
	}

	heap.Push(&p.queue, queuedItem{item: item, seq: p.seq.Add(1)})
	p.cond.Signal()
}

// EnterBlocking must be called by a WorkItem that is about to block the calling worker goroutine waiting on a nested
// unit of work (spec.md §4.6 "Nesting safety"). It increments the blocked-worker count and, if the pool has spare
// capacity under its transient cap, spawns one additional worker goroutine to keep the pool from stalling.
// Every call to EnterBlocking must be paired with exactly one call to [Pool.ExitBlocking].
func (p *Pool) EnterBlocking() {
	p.blockers.Add(1)

	for {
		cur := p.transientActive.Load()
		if cur >= int32(p.maxTransient) {
			return
		}
		if p.transientActive.CompareAndSwap(cur, cur+1) {
			p.transientWG.Add(1)
			go p.worker(&p.transientWG)

			return
		}
	}
}

// ExitBlocking must be called when a worker goroutine that previously called [Pool.EnterBlocking] has finished
// waiting on its nested unit of work.
func (p *Pool) ExitBlocking() {
	p.blockers.Add(-1)
}

// worker pulls items off the priority queue until the Pool is closed and drained.
func (p *Pool) worker(wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		item, ok := p.pop()
		if !ok {
			return
		}
		p.run(item)
	}
}

// run executes item, recovering a panic so that one misbehaving WorkItem cannot kill a worker goroutine and shrink
// the pool's effective concurrency.
func (p *Pool) run(item types.WorkItem) {
	defer func() {
		_ = recover()
	}()

	item.Run()
}

// pop blocks until an item is available or the Pool is closed with an empty queue.
func (p *Pool) pop() (types.WorkItem, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for p.queue.Len() == 0 && !p.closed {
		p.cond.Wait()
	}

	if p.queue.Len() == 0 {
		return nil, false
	}

	qi := heap.Pop(&p.queue).(queuedItem)

	return qi.item, true
}
