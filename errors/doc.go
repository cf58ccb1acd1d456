// Package errors provides structured error types for the asset engine.
//
// Errors are categorized by Phase (where the error occurred) and Kind
// (error category). The Kind also drives the retry policy: KindRetryable
// failures are re-attempted when a new consumer is added to the asset,
// while KindNotFound and KindLoaderNotFound are surfaced immediately and
// never retried automatically.
//
// Use the convenience constructors for common patterns:
//
//	err := errors.NotFoundWithCandidates("icon.png", "app", []string{"a.png", "b.png"})
//	err := errors.LoaderNotFound("https", "image")
//	err := errors.Retryable(errors.PhaseFetch, "app:icon.png", cause)
//
// All errors implement the standard error interface and support
// errors.Is/As. Failures never cross goroutine boundaries as panics; they
// are carried as explicit values through the callback chain.
package errors
