package assets

import (
	"sync"
	"sync/atomic"

	assetengine "github.com/wippyai/asset-engine"
)

// Observable is the externally shared handle representing one watchable
// asset, independent of any single consumer. It implements
// assetengine.Asset.
type Observable struct {
	mgr *Manager
	key assetengine.AssetKey

	sizeMu         sync.Mutex
	expectedWidth  int
	expectedHeight int

	released atomic.Bool
}

func (o *Observable) Key() assetengine.AssetKey { return o.key }

// ExpectedSize returns the dimensions advertised by the asset catalog,
// or (0, 0) when unknown.
func (o *Observable) ExpectedSize() (width, height int) {
	o.sizeMu.Lock()
	defer o.sizeMu.Unlock()
	return o.expectedWidth, o.expectedHeight
}

func (o *Observable) setExpectedSize(width, height int) {
	o.sizeMu.Lock()
	o.expectedWidth = width
	o.expectedHeight = height
	o.sizeMu.Unlock()
}

// Release drops the handle. Once the underlying asset also has no
// consumers it becomes eligible for eviction on the next update pass.
// Release is idempotent.
func (o *Observable) Release() {
	if o.released.Swap(true) {
		return
	}
	o.mgr.onObservableReleased(o)
}
