package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseResolve Phase = "resolve" // asset location resolution
	PhaseLoad    Phase = "load"    // loader execution
	PhaseFetch   Phase = "fetch"   // remote module fetching
	PhaseCatalog Phase = "catalog" // asset catalog parsing
	PhaseStore   Phase = "store"   // asset bytes store
	PhaseUpdate  Phase = "update"  // manager update pass
)

// Kind categorizes the error
type Kind string

const (
	// KindNotFound marks a permanent resolution failure: the asset is
	// absent from its owning module. Not retried automatically.
	KindNotFound Kind = "not_found"

	// KindRetryable marks a transient failure (e.g. a remote fetch
	// error). Retried the next time a consumer is added to the asset.
	KindRetryable Kind = "retryable"

	// KindLoaderNotFound means no loader is registered for the resolved
	// scheme and requested output type.
	KindLoaderNotFound Kind = "loader_not_found"

	// KindLoadFailed means the loader itself reported an error or
	// produced a nil artifact.
	KindLoadFailed Kind = "load_failed"

	KindCancelled    Kind = "cancelled"
	KindInvalidInput Kind = "invalid_input"
	KindClosed       Kind = "closed"
)

// Error is the structured error type used throughout the engine
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Asset  string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Asset != "" {
		b.WriteString(" asset '")
		b.WriteString(e.Asset)
		b.WriteByte('\'')
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// IsRetryable reports whether err marks a transient failure that a later
// resolution attempt may clear.
func IsRetryable(err error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind == KindRetryable
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Convenience constructors for common error patterns

// NotFound creates a permanent resolution failure
func NotFound(phase Phase, asset, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Asset:  asset,
		Detail: detail,
	}
}

// NotFoundWithCandidates creates a permanent resolution failure whose
// message enumerates every checked candidate URL.
func NotFoundWithCandidates(asset, module string, candidates []string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindNotFound,
		Asset:  asset,
		Detail: fmt.Sprintf("not found in module '%s', candidates are: [%s]", module, strings.Join(candidates, ", ")),
	}
}

// Retryable creates a transient failure
func Retryable(phase Phase, asset string, cause error) *Error {
	return &Error{
		Phase: phase,
		Kind:  KindRetryable,
		Asset: asset,
		Cause: cause,
	}
}

// LoaderNotFound reports that no loader serves a scheme and output type
func LoaderNotFound(scheme, outputType string) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindLoaderNotFound,
		Detail: fmt.Sprintf("cannot resolve loader for URL scheme '%s' and output type '%s'", scheme, outputType),
	}
}

// LoadFailed wraps a loader-reported failure
func LoadFailed(asset string, cause error) *Error {
	return &Error{
		Phase: PhaseLoad,
		Kind:  KindLoadFailed,
		Asset: asset,
		Cause: cause,
	}
}

// NilAsset reports a loader that completed successfully with no artifact
func NilAsset(asset string) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindLoadFailed,
		Asset:  asset,
		Detail: "loader provided a null asset",
	}
}

// Cancelled creates a cancellation error
func Cancelled(phase Phase, asset string) *Error {
	return &Error{
		Phase: phase,
		Kind:  KindCancelled,
		Asset: asset,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
