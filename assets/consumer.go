package assets

import (
	"context"

	assetengine "github.com/wippyai/asset-engine"
)

type consumerState uint8

const (
	consumerStateInitial consumerState = iota
	consumerStateLoading
	consumerStateLoaded
	consumerStateFailed
	consumerStateRemoved
)

func (s consumerState) String() string {
	switch s {
	case consumerStateInitial:
		return "initial"
	case consumerStateLoading:
		return "loading"
	case consumerStateLoaded:
		return "loaded"
	case consumerStateFailed:
		return "failed"
	case consumerStateRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// assetConsumer is one registered interest in an asset. A nil observer
// marks the consumer for removal on the next update pass; the entry is
// swept rather than destroyed synchronously so the consumer list is never
// mutated mid-iteration. All fields are guarded by the manager's lock.
type assetConsumer struct {
	observer assetengine.AssetLoadObserver
	ctx      context.Context

	outputType      assetengine.OutputType
	preferredWidth  int
	preferredHeight int
	attachedData    any

	state   consumerState
	loaded  assetengine.LoadedAsset
	loadErr error

	// handler is the shared load request currently serving this
	// consumer, or nil.
	handler *requestHandler

	// notified records whether the observer has seen the current
	// loaded/loadErr, preventing duplicate notifications in one pass.
	notified bool
}

func (c *assetConsumer) clearResult() {
	c.loaded = nil
	c.loadErr = nil
}
