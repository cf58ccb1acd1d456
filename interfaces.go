package assetengine

import "context"

// Asset is an externally shared handle representing a watchable asset,
// independent of any single consumer. Handles stay valid until released.
type Asset interface {
	// Key returns the identity of the underlying asset.
	Key() AssetKey

	// ExpectedSize returns the dimensions the asset catalog advertises
	// for this asset, or (0, 0) when unknown.
	ExpectedSize() (width, height int)

	// Release drops the handle. The managed asset may be evicted on the
	// next update pass once no consumers remain.
	Release()
}

// AssetLoadObserver receives the outcome of one registered interest in an
// asset. Exactly one of loaded or errorMessage is meaningful per call.
// Invoked on the designated main goroutine; implementations may call back
// into the manager.
type AssetLoadObserver interface {
	OnLoad(asset Asset, loaded LoadedAsset, errorMessage string)
}

// LocalResolver resolves a bundle-relative asset path to a local URL.
// An empty result means the asset is not present locally.
type LocalResolver interface {
	ResolveLocalAssetURL(bundleName, path string) string
}

// RemoteModuleResources exposes the resources of one fetched remote module.
type RemoteModuleResources interface {
	// ResourceCacheURL returns the locally cached URL for a resource path.
	ResourceCacheURL(path string) (string, bool)

	// AllURLs maps every known resource name to its URL. Used to build
	// diagnostics listing candidates when a lookup fails.
	AllURLs() map[string]string
}

// RemoteModuleProvider fetches the resources of a remote module. The
// callback may be invoked from any goroutine.
type RemoteModuleProvider interface {
	LoadResources(bundleName string, done func(RemoteModuleResources, error))
}

// Catalog looks up per-asset specs published by a bundle.
type Catalog interface {
	SpecsForName(name string) (AssetSpecs, bool)
}

// Bundle describes one module that owns assets.
type Bundle interface {
	Name() string

	// HasRemoteAssets reports whether asset resolution must consult a
	// RemoteModuleProvider for this bundle.
	HasRemoteAssets() bool

	// AssetCatalog returns the bundle's catalog, if it publishes one.
	AssetCatalog() (Catalog, error)
}

// BundleProvider resolves bundle names referenced by asset keys.
type BundleProvider interface {
	Bundle(name string) (Bundle, bool)
}

// LoadRequest carries the parameters of one asset load.
type LoadRequest struct {
	Context         context.Context
	Key             AssetKey
	URL             string
	PreferredWidth  int
	PreferredHeight int
	AttachedData    any
	PayloadCache    *PayloadCache
}

// CancelFunc aborts an in-flight load or download. May be nil when the
// operation cannot be cancelled.
type CancelFunc func()

// Loader decodes the bytes behind a resolved location into a LoadedAsset.
// Load must not block the calling goroutine beyond dispatching work; the
// completion callback may fire from any goroutine and must fire exactly
// once unless the returned CancelFunc runs first.
type Loader interface {
	// CanReuseLoadedAssets reports whether results may be shared across
	// consumers with identical request parameters.
	CanReuseLoadedAssets() bool

	Load(req LoadRequest, done func(LoadedAsset, error)) CancelFunc
}

// LoaderResolver finds a loader for a URL scheme and output type.
type LoaderResolver interface {
	ResolveAssetLoader(scheme string, output OutputType) (Loader, bool)
}

// Downloader fetches raw bytes for a URL.
type Downloader interface {
	Download(url string, done func([]byte, error)) CancelFunc
}

// MainDispatcher marshals work onto the designated main goroutine.
type MainDispatcher interface {
	IsCurrent() bool
	Dispatch(fn func())
}

// AsyncQueue runs blocking work off the main goroutine.
type AsyncQueue interface {
	Async(fn func())
}
