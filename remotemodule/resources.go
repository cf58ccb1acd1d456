package remotemodule

import (
	assetengine "github.com/wippyai/asset-engine"
	"github.com/wippyai/asset-engine/errors"
)

// Resources is an immutable snapshot of one remote module's resources,
// mapping resource paths to locally cached URLs.
type Resources struct {
	urls map[string]string
}

func NewResources(urls map[string]string) *Resources {
	m := make(map[string]string, len(urls))
	for k, v := range urls {
		m[k] = v
	}
	return &Resources{urls: m}
}

// ResourceCacheURL implements assetengine.RemoteModuleResources.
func (r *Resources) ResourceCacheURL(path string) (string, bool) {
	u, ok := r.urls[path]
	return u, ok
}

// AllURLs implements assetengine.RemoteModuleResources. The returned map
// is a copy.
func (r *Resources) AllURLs() map[string]string {
	m := make(map[string]string, len(r.urls))
	for k, v := range r.urls {
		m[k] = v
	}
	return m
}

// StaticProvider serves fixed per-bundle resources. Useful for tests and
// for hosts that prefetch their modules.
type StaticProvider struct {
	modules map[string]*Resources
}

func NewStaticProvider() *StaticProvider {
	return &StaticProvider{modules: make(map[string]*Resources)}
}

func (p *StaticProvider) Add(bundleName string, res *Resources) {
	p.modules[bundleName] = res
}

// LoadResources implements assetengine.RemoteModuleProvider. The callback
// fires inline.
func (p *StaticProvider) LoadResources(bundleName string, done func(assetengine.RemoteModuleResources, error)) {
	res, ok := p.modules[bundleName]
	if !ok {
		done(nil, errors.NotFound(errors.PhaseFetch, bundleName, "unknown remote module"))
		return
	}
	done(res, nil)
}
