package hierarchy

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool is a fixed-size work-stealing pool used by the Hierarchy
// Builder's map step (spec.md §4.4, §5: "groups are dispatched to a
// worker pool ... no locks inside workers"). Adapted from the shape of
// _examples/gogpu-gg's internal/parallel.WorkerPool — that package is
// unexported from its own module, so the pattern is reproduced here
// rather than imported.
type WorkerPool struct {
	queues  []chan func()
	wg      sync.WaitGroup
	closed  atomic.Bool
	next    atomic.Uint64
	workers int
}

// NewWorkerPool creates a pool with the given number of workers,
// defaulting to runtime.GOMAXPROCS(0) when workers <= 0.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &WorkerPool{
		queues:  make([]chan func(), workers),
		workers: workers,
	}
	for i := range p.queues {
		p.queues[i] = make(chan func(), 256)
	}
	for i := 0; i < workers; i++ {
		go p.run(i)
	}
	return p
}

func (p *WorkerPool) run(id int) {
	own := p.queues[id]
	for {
		select {
		case task, ok := <-own:
			if !ok {
				return
			}
			task()
			p.wg.Done()
		default:
			if task := p.steal(id); task != nil {
				task()
				p.wg.Done()
				continue
			}
			task, ok := <-own
			if !ok {
				return
			}
			task()
			p.wg.Done()
		}
	}
}

func (p *WorkerPool) steal(self int) func() {
	for i := 0; i < len(p.queues); i++ {
		if i == self {
			continue
		}
		select {
		case task := <-p.queues[i]:
			return task
		default:
		}
	}
	return nil
}

// Submit enqueues a task onto a round-robin worker queue.
func (p *WorkerPool) Submit(task func()) {
	p.wg.Add(1)
	idx := int(p.next.Add(1)) % p.workers
	p.queues[idx] <- task
}

// Wait blocks until every submitted task has completed. This is the
// hierarchy builder's single synchronization point per level
// (spec.md §5: "the reduce step is single-threaded and is the only
// synchronization point per level").
func (p *WorkerPool) Wait() { p.wg.Wait() }

// Close shuts down every worker goroutine. Calls after the first are
// no-ops.
func (p *WorkerPool) Close() {
	if p.closed.Swap(true) {
		return
	}
	for _, q := range p.queues {
		close(q)
	}
}

// Workers reports the pool's fixed worker count.
func (p *WorkerPool) Workers() int { return p.workers }
