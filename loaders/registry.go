package loaders

import (
	"sync"

	assetengine "github.com/wippyai/asset-engine"
)

type loaderKey struct {
	scheme string
	output assetengine.OutputType
}

// Registry maps (URL scheme, output type) pairs to loaders and URL
// schemes to downloaders. It implements assetengine.LoaderResolver.
type Registry struct {
	mu          sync.RWMutex
	loaders     map[loaderKey]assetengine.Loader
	downloaders map[string]assetengine.Downloader
}

func NewRegistry() *Registry {
	return &Registry{
		loaders:     make(map[loaderKey]assetengine.Loader),
		downloaders: make(map[string]assetengine.Downloader),
	}
}

// RegisterLoader registers l for every given scheme at the given output
// type. Later registrations win.
func (r *Registry) RegisterLoader(l assetengine.Loader, output assetengine.OutputType, schemes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, scheme := range schemes {
		r.loaders[loaderKey{scheme: scheme, output: output}] = l
	}
}

// RegisterDownloader registers d as the byte source for a scheme.
func (r *Registry) RegisterDownloader(scheme string, d assetengine.Downloader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.downloaders[scheme] = d
}

// Downloader returns the downloader registered for a scheme.
func (r *Registry) Downloader(scheme string) (assetengine.Downloader, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.downloaders[scheme]
	return d, ok
}

// ResolveAssetLoader implements assetengine.LoaderResolver.
func (r *Registry) ResolveAssetLoader(scheme string, output assetengine.OutputType) (assetengine.Loader, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.loaders[loaderKey{scheme: scheme, output: output}]
	return l, ok
}
