package loaders

import (
	assetengine "github.com/wippyai/asset-engine"
)

// payloadCacheKey is where DownloaderLoader stashes fetched bytes in the
// per-asset payload cache, so a location fetched once is not fetched
// again for a consumer with different request parameters.
const payloadCacheKey = "downloaded-bytes"

// DownloaderLoader adapts a Downloader into a Loader producing raw bytes.
// It backs both the asset-bytes store scheme and plain http(s) byte
// loads.
type DownloaderLoader struct {
	downloader assetengine.Downloader
	schemes    []string
}

func NewDownloaderLoader(d assetengine.Downloader, schemes ...string) *DownloaderLoader {
	return &DownloaderLoader{downloader: d, schemes: schemes}
}

// Schemes returns the URL schemes this adapter was built for.
func (l *DownloaderLoader) Schemes() []string { return l.schemes }

// RegisterInto registers the adapter for all of its schemes at the bytes
// output type.
func (l *DownloaderLoader) RegisterInto(r *Registry) {
	r.RegisterLoader(l, assetengine.OutputBytes, l.schemes...)
}

func (l *DownloaderLoader) CanReuseLoadedAssets() bool { return true }

func (l *DownloaderLoader) Load(req assetengine.LoadRequest, done func(assetengine.LoadedAsset, error)) assetengine.CancelFunc {
	if req.PayloadCache != nil {
		if cached, ok := req.PayloadCache.Get(payloadCacheKey); ok {
			done(&assetengine.BytesAsset{Bytes: cached.([]byte)}, nil)
			return nil
		}
	}

	return l.downloader.Download(req.URL, func(bytes []byte, err error) {
		if err != nil {
			done(nil, err)
			return
		}
		if req.PayloadCache != nil {
			req.PayloadCache.Put(payloadCacheKey, bytes)
		}
		done(&assetengine.BytesAsset{Bytes: bytes}, nil)
	})
}
