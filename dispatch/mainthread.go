package dispatch

import (
	"sync"
	"sync/atomic"
)

// MainThread is a run loop owned by a single goroutine, the designated
// thread of the host environment. All asset state transitions and
// observer notifications are marshalled onto it.
type MainThread struct {
	tasks    chan func()
	runner   atomic.Uint64
	done     chan struct{}
	stopOnce sync.Once
}

func NewMainThread() *MainThread {
	return &MainThread{
		tasks: make(chan func(), 256),
		done:  make(chan struct{}),
	}
}

// Run claims the calling goroutine as the main thread and processes
// dispatched callbacks until Stop is called. Blocks for the lifetime of
// the loop.
func (m *MainThread) Run() {
	m.runner.Store(goid())
	defer m.runner.Store(0)

	for {
		select {
		case fn := <-m.tasks:
			fn()
		case <-m.done:
			// Drain what was already queued so no scheduled update
			// is silently lost at shutdown.
			for {
				select {
				case fn := <-m.tasks:
					fn()
				default:
					return
				}
			}
		}
	}
}

// Stop terminates the run loop after draining queued callbacks.
func (m *MainThread) Stop() {
	m.stopOnce.Do(func() { close(m.done) })
}

// IsCurrent reports whether the calling goroutine is the one running the
// loop. False when the loop is not running.
func (m *MainThread) IsCurrent() bool {
	id := m.runner.Load()
	return id != 0 && id == goid()
}

// Dispatch enqueues fn onto the run loop. Never invokes fn inline, even
// when called from the main goroutine.
func (m *MainThread) Dispatch(fn func()) {
	select {
	case m.tasks <- fn:
	case <-m.done:
	}
}

// Invoke runs fn on the main goroutine and waits for it to finish. When
// called from the main goroutine, fn runs inline.
func (m *MainThread) Invoke(fn func()) {
	if m.IsCurrent() {
		fn()
		return
	}

	ch := make(chan struct{})
	m.Dispatch(func() {
		defer close(ch)
		fn()
	})
	select {
	case <-ch:
	case <-m.done:
	}
}
