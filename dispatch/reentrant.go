package dispatch

import (
	"sync"
	"sync/atomic"
)

// ReentrantMutex is a mutex that may be re-locked by the goroutine that
// already owns it. The zero value is ready to use.
//
// Unlock must be called once per Lock, from the owning goroutine.
type ReentrantMutex struct {
	mu    sync.Mutex
	owner atomic.Uint64
	depth int
}

func (m *ReentrantMutex) Lock() {
	id := goid()
	if m.owner.Load() == id {
		m.depth++
		return
	}
	m.mu.Lock()
	m.owner.Store(id)
	m.depth = 1
}

func (m *ReentrantMutex) Unlock() {
	if m.owner.Load() != goid() {
		panic("dispatch: ReentrantMutex unlocked by non-owner goroutine")
	}
	m.depth--
	if m.depth < 0 {
		panic("dispatch: ReentrantMutex unlock without lock")
	}
	if m.depth == 0 {
		m.owner.Store(0)
		m.mu.Unlock()
	}
}

// Held reports whether the calling goroutine currently owns the mutex.
func (m *ReentrantMutex) Held() bool {
	return m.owner.Load() == goid()
}
