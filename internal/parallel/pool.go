// Package parallel provides the worker pool and cancelable tasks behind
// background measurement.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool runs background work on a fixed set of goroutines.
//
// Each worker has its own queue and steals from the others when its queue is
// empty, so a long measurement task on one worker does not hold up short
// tasks queued behind it.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers   int
	queues    []chan func()
	active    []atomic.Int32
	done      chan struct{}
	wg        sync.WaitGroup
	running   atomic.Bool
	submitted atomic.Uint64
}

// NewWorkerPool creates a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	queueSize := max(workers*4, 8)

	p := &WorkerPool{
		workers: workers,
		queues:  make([]chan func(), workers),
		active:  make([]atomic.Int32, workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan func(), queueSize)
	}

	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}

	return p
}

var shared = sync.OnceValue(func() *WorkerPool {
	return NewWorkerPool(0)
})

// Shared returns the process-wide pool used by layouts that do not bring
// their own. It is never closed.
func Shared() *WorkerPool {
	return shared()
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	own := p.queues[id]

	for {
		select {
		case <-p.done:
			p.drain(own)
			return

		case work := <-own:
			p.run(id, work)

		default:
			if stolen := p.steal(id); stolen != nil {
				p.run(id, stolen)
				continue
			}
			select {
			case <-p.done:
				p.drain(own)
				return
			case work := <-own:
				p.run(id, work)
			}
		}
	}
}

func (p *WorkerPool) run(id int, work func()) {
	if work == nil {
		return
	}
	p.active[id].Add(1)
	defer p.active[id].Add(-1)
	work()
}

func (p *WorkerPool) drain(queue chan func()) {
	for {
		select {
		case work := <-queue:
			if work != nil {
				work()
			}
		default:
			return
		}
	}
}

// steal takes work from another worker's queue, or returns nil.
func (p *WorkerPool) steal(self int) func() {
	for i := range p.workers {
		if i == self {
			continue
		}
		select {
		case work := <-p.queues[i]:
			return work
		default:
		}
	}
	return nil
}

// Submit queues fn on the least loaded worker: the one with the fewest
// queued plus running items. It reports false if the pool is closed and fn
// will not run.
func (p *WorkerPool) Submit(fn func()) bool {
	if fn == nil || !p.running.Load() {
		return false
	}

	target := 0
	minLoad := p.load(0)
	for i := 1; i < p.workers; i++ {
		if l := p.load(i); l < minLoad {
			minLoad = l
			target = i
		}
	}

	select {
	case p.queues[target] <- fn:
		p.submitted.Add(1)
		return true
	case <-p.done:
		return false
	}
}

func (p *WorkerPool) load(i int) int {
	return len(p.queues[i]) + int(p.active[i].Load())
}

// Close stops accepting work, runs what is queued and stops the workers.
// Close is safe to call multiple times.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning returns true if the pool is still accepting work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}

// Active returns the number of work items currently running.
func (p *WorkerPool) Active() int {
	total := 0
	for i := range p.active {
		total += int(p.active[i].Load())
	}
	return total
}

// QueuedWork returns the approximate number of queued work items.
func (p *WorkerPool) QueuedWork() int {
	total := 0
	for _, q := range p.queues {
		total += len(q)
	}
	return total
}

// Submitted returns the number of work items accepted since creation.
func (p *WorkerPool) Submitted() uint64 {
	return p.submitted.Load()
}
