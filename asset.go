package assetengine

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// AssetKey identifies an asset: either a (bundle, path) pair or a URL.
// Keys are immutable values, comparable, and usable as map keys.
type AssetKey struct {
	Bundle string
	Path   string
	URL    string
}

// BundleKey returns the key of an asset located inside a bundle.
func BundleKey(bundle, path string) AssetKey {
	return AssetKey{Bundle: bundle, Path: path}
}

// URLKey returns the key of an asset identified directly by URL.
func URLKey(url string) AssetKey {
	return AssetKey{URL: url}
}

// IsURL reports whether the key identifies an asset by URL rather than
// by bundle and path.
func (k AssetKey) IsURL() bool {
	return k.URL != ""
}

func (k AssetKey) String() string {
	if k.IsURL() {
		return k.URL
	}
	return k.Bundle + ":" + k.Path
}

// Hash returns a stable 64-bit hash of the key.
func (k AssetKey) Hash() uint64 {
	var d xxhash.Digest
	d.Reset()
	_, _ = d.WriteString(k.Bundle)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(k.Path)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(k.URL)
	return d.Sum64()
}

// Less defines a total order over keys for deterministic iteration.
func (k AssetKey) Less(other AssetKey) bool {
	if k.Bundle != other.Bundle {
		return k.Bundle < other.Bundle
	}
	if k.Path != other.Path {
		return k.Path < other.Path
	}
	return k.URL < other.URL
}

// IsAssetURL reports whether a string should be treated as an asset URL
// rather than a bundle-relative path.
func IsAssetURL(s string) bool {
	if strings.Contains(s, "://") {
		return true
	}
	return strings.HasPrefix(s, "data:image/")
}

// AssetLocation is the resolved physical address of an asset.
type AssetLocation struct {
	URL         string
	IsLocalFile bool
}

// Scheme returns the URL scheme of the location, or "" if none can be
// determined.
func (l AssetLocation) Scheme() string {
	if i := strings.Index(l.URL, "://"); i >= 0 {
		return l.URL[:i]
	}
	if strings.HasPrefix(l.URL, "data:") {
		return "data"
	}
	return ""
}

// OutputType selects the artifact a consumer wants a loader to produce.
type OutputType uint8

const (
	OutputBytes OutputType = iota
	OutputImage
	OutputAnimatedImage
	OutputVideo
	OutputFont
)

func (t OutputType) String() string {
	switch t {
	case OutputBytes:
		return "bytes"
	case OutputImage:
		return "image"
	case OutputAnimatedImage:
		return "animated-image"
	case OutputVideo:
		return "video"
	case OutputFont:
		return "font"
	default:
		return "unknown"
	}
}

// LoadedAsset is a decoded artifact produced by a Loader.
type LoadedAsset interface {
	Output() OutputType
}

// BytesAsset is the raw-bytes artifact produced by byte-oriented loaders.
type BytesAsset struct {
	Bytes []byte
}

func (a *BytesAsset) Output() OutputType { return OutputBytes }

// AssetSpecs describes the expected dimensions of a catalog entry.
type AssetSpecs struct {
	Width  int
	Height int
}
