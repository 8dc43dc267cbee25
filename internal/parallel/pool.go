package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a fixed set of goroutines that execute kernel workgroups.
//
// Each worker owns a queue. A worker whose queue is empty steals from the
// other queues before blocking, so slow workgroups (dense cloud regions,
// long light marches) do not leave the remaining workers idle.
//
// Pool is safe for concurrent use.
type Pool struct {
	workers int
	queues  []chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool

	// runs is read-held by every Run so Close waits for them.
	runs sync.RWMutex

	// executed counts finished work items over the pool lifetime.
	executed atomic.Uint64
}

// NewPool starts a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	queueSize := max(workers*4, 8)

	p := &Pool{
		workers: workers,
		queues:  make([]chan func(), workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan func(), queueSize)
	}

	p.running.Store(true)
	p.wg.Add(workers)
	for i := range workers {
		go p.loop(i)
	}
	return p
}

func (p *Pool) loop(id int) {
	defer p.wg.Done()

	own := p.queues[id]
	for {
		select {
		case <-p.done:
			p.drain(own)
			return
		case fn := <-own:
			p.run(fn)
		default:
			if fn := p.steal(id); fn != nil {
				p.run(fn)
				continue
			}
			select {
			case <-p.done:
				p.drain(own)
				return
			case fn := <-own:
				p.run(fn)
			}
		}
	}
}

func (p *Pool) run(fn func()) {
	if fn == nil {
		return
	}
	fn()
	p.executed.Add(1)
}

func (p *Pool) drain(queue chan func()) {
	for {
		select {
		case fn := <-queue:
			p.run(fn)
		default:
			return
		}
	}
}

func (p *Pool) steal(self int) func() {
	for i := range p.workers {
		if i == self {
			continue
		}
		select {
		case fn := <-p.queues[i]:
			return fn
		default:
		}
	}
	return nil
}

// Run distributes work round-robin across the workers and blocks until every
// item has finished. Run on a closed pool executes the items inline.
func (p *Pool) Run(work []func()) {
	if len(work) == 0 {
		return
	}
	p.runs.RLock()
	defer p.runs.RUnlock()
	if !p.running.Load() {
		for _, fn := range work {
			fn()
		}
		return
	}

	var wg sync.WaitGroup
	wg.Add(len(work))
	for i, fn := range work {
		wrapped := func() {
			defer wg.Done()
			fn()
		}
		select {
		case p.queues[i%p.workers] <- wrapped:
		case <-p.done:
			wrapped()
		}
	}
	wg.Wait()
}

// Close waits for in-flight Run calls, then stops the workers.
// Close is safe to call multiple times.
func (p *Pool) Close() {
	p.runs.Lock()
	if !p.running.CompareAndSwap(true, false) {
		p.runs.Unlock()
		return
	}
	close(p.done)
	p.runs.Unlock()
	p.wg.Wait()
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int { return p.workers }

// IsRunning reports whether the pool still accepts work.
func (p *Pool) IsRunning() bool { return p.running.Load() }

// Executed returns the number of work items run by the workers.
func (p *Pool) Executed() uint64 { return p.executed.Load() }
