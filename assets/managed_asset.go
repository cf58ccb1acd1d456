package assets

import (
	assetengine "github.com/wippyai/asset-engine"
)

// AssetState is the resolution state of a ManagedAsset.
type AssetState uint8

const (
	// AssetStateInitial means resolution has not started.
	AssetStateInitial AssetState = iota

	// AssetStateResolvingLocation means an asynchronous resolution is in
	// flight.
	AssetStateResolvingLocation

	// AssetStateReady means the asset has a resolved location.
	AssetStateReady

	// AssetStateFailedRetryable means resolution failed transiently; it
	// is re-attempted when a new consumer arrives.
	AssetStateFailedRetryable

	// AssetStateFailedPermanently means the asset cannot exist.
	AssetStateFailedPermanently
)

func (s AssetState) String() string {
	switch s {
	case AssetStateInitial:
		return "initial"
	case AssetStateResolvingLocation:
		return "resolving"
	case AssetStateReady:
		return "ready"
	case AssetStateFailedRetryable:
		return "failed-retryable"
	case AssetStateFailedPermanently:
		return "failed-permanently"
	default:
		return "unknown"
	}
}

// ManagedAsset is the per-key aggregate owned by the manager's index:
// resolution state, the consumer list, and per-loader payload caches.
// All fields are guarded by the manager's lock.
type ManagedAsset struct {
	key        assetengine.AssetKey
	state      AssetState
	resolveID  uint64
	location   assetengine.AssetLocation // valid in AssetStateReady
	resolveErr error                     // valid in AssetStateFailed*
	consumers  []*assetConsumer
	payloads   map[assetengine.Loader]*assetengine.PayloadCache
	observable *Observable
}

func newManagedAsset(key assetengine.AssetKey) *ManagedAsset {
	return &ManagedAsset{key: key}
}

// Key returns the asset's identity.
func (a *ManagedAsset) Key() assetengine.AssetKey { return a.key }

// State returns the current resolution state.
func (a *ManagedAsset) State() AssetState { return a.state }

// ConsumerCount returns the number of registered consumers.
func (a *ManagedAsset) ConsumerCount() int { return len(a.consumers) }

// ResolvedLocation returns the resolved location when the asset is Ready.
func (a *ManagedAsset) ResolvedLocation() (assetengine.AssetLocation, bool) {
	if a.state != AssetStateReady {
		return assetengine.AssetLocation{}, false
	}
	return a.location, true
}

// Err returns the resolution error when the asset is in a failed state.
func (a *ManagedAsset) Err() error {
	return a.resolveErr
}

func (a *ManagedAsset) hasConsumers() bool { return len(a.consumers) > 0 }

func (a *ManagedAsset) addConsumer() *assetConsumer {
	c := &assetConsumer{}
	a.consumers = append(a.consumers, c)
	return c
}

func (a *ManagedAsset) removeConsumer(c *assetConsumer) {
	for i, cur := range a.consumers {
		if cur == c {
			a.consumers = append(a.consumers[:i], a.consumers[i+1:]...)
			return
		}
	}
}

// payloadCacheFor returns the payload cache bound to a loader identity,
// creating it on first use.
func (a *ManagedAsset) payloadCacheFor(loader assetengine.Loader) *assetengine.PayloadCache {
	if a.payloads == nil {
		a.payloads = make(map[assetengine.Loader]*assetengine.PayloadCache)
	}
	cache, ok := a.payloads[loader]
	if !ok {
		cache = assetengine.NewPayloadCache()
		a.payloads[loader] = cache
	}
	return cache
}

// clearPayloadCaches drops every loader's cache. Called when the resolved
// location changes, since cached intermediates belong to the old bytes.
func (a *ManagedAsset) clearPayloadCaches() {
	a.payloads = nil
}
