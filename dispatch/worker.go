package dispatch

import (
	"fmt"
	"runtime/debug"

	"github.com/sourcegraph/conc/pool"
)

// fatalTaskPanic re-raises a worker task panic on a fresh goroutine,
// outside the pool's own recovery, so an invariant violation crashes the
// process instead of waiting for a Wait call that long-lived queues never
// make. Swapped in tests.
var fatalTaskPanic = func(r any, stack []byte) {
	go func() {
		panic(fmt.Sprintf("dispatch: worker task panicked: %v\n%s", r, stack))
	}()
}

// WorkerQueue runs blocking work (filesystem lookups, remote fetches,
// loader execution) off the main goroutine on a bounded goroutine pool.
type WorkerQueue struct {
	p *pool.Pool
}

// NewWorkerQueue creates a queue backed by at most maxWorkers goroutines.
// maxWorkers <= 0 leaves the pool unbounded.
func NewWorkerQueue(maxWorkers int) *WorkerQueue {
	p := pool.New()
	if maxWorkers > 0 {
		p = p.WithMaxGoroutines(maxWorkers)
	}
	return &WorkerQueue{p: p}
}

// Async schedules fn to run on the pool. A panic in fn is fatal: it is
// recovered ahead of the pool's catcher and re-raised immediately rather
// than deferred to Wait.
func (q *WorkerQueue) Async(fn func()) {
	q.p.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				fatalTaskPanic(r, debug.Stack())
			}
		}()
		fn()
	})
}

// Wait blocks until all scheduled work has finished. The queue must not
// be reused afterwards.
func (q *WorkerQueue) Wait() {
	q.p.Wait()
}
