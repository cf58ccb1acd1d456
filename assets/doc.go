// Package assets implements the asset resolution and loading engine.
//
// The Manager owns an index of managed assets keyed by AssetKey. Each
// managed asset moves through a small resolution state machine (initial,
// resolving, ready, failed-retryable, failed-permanently) while its
// consumers, one per registered load observer, move through their own
// loading states independently.
//
// # Update model
//
// All state transitions and observer notifications happen on a single
// designated goroutine, the main dispatcher. Mutations from any
// goroutine mark a key dirty; dirty keys are drained in batched
// transactions that process at most one consumer per asset per pass and
// re-enqueue the key while work remains. The manager's lock is released
// around every observer callback, so observers may freely call back into
// the manager.
//
// # Load deduplication
//
// Consumers requesting the same output type, preferred size and attached
// data share one request handler when the loader declares its results
// reusable. Handlers are reference counted; a handler that loses its
// last consumer is cancelled asynchronously through the same queue that
// starts loads, so cancellation and start never race.
//
// # Staleness
//
// Every resolution attempt is stamped with a monotonically increasing
// identifier. Completions carrying a stale identifier are dropped, which
// makes overriding a resolved location safe at any time.
package assets
