// Package dispatch provides the scheduling primitives the asset engine
// runs on: a designated main goroutine, a worker queue for blocking I/O,
// and a goroutine-aware re-entrant mutex.
//
// # Main Thread
//
// MainThread models the host environment's designated thread as a run
// loop owned by exactly one goroutine:
//
//	main := dispatch.NewMainThread()
//	go main.Run()
//	defer main.Stop()
//
//	main.Dispatch(func() { ... })     // marshalled onto the run loop
//	main.IsCurrent()                  // true only on the running goroutine
//
// All asset state transitions and observer notifications happen on this
// goroutine; nothing dispatched to it may block.
//
// # Worker Queue
//
// WorkerQueue wraps a panic-propagating goroutine pool for filesystem
// lookups, remote fetches and loader execution:
//
//	workers := dispatch.NewWorkerQueue(4)
//	workers.Async(func() { ... })
//
// # Re-entrant Locking
//
// ReentrantMutex allows the transaction protocol's release/reacquire
// around observer callbacks to nest with locking performed elsewhere in
// the same call stack. Ownership is tracked per goroutine.
package dispatch
