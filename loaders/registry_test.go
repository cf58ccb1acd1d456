package loaders

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	assetengine "github.com/wippyai/asset-engine"
	"github.com/wippyai/asset-engine/errors"
)

type fakeDownloader struct {
	data  []byte
	err   error
	calls int
}

func (d *fakeDownloader) Download(url string, done func([]byte, error)) assetengine.CancelFunc {
	d.calls++
	done(d.data, d.err)
	return nil
}

func TestRegistry_Resolve(t *testing.T) {
	r := NewRegistry()
	fl := NewFileLoader()
	r.RegisterLoader(fl, assetengine.OutputBytes, "file")

	got, ok := r.ResolveAssetLoader("file", assetengine.OutputBytes)
	if !ok || got != assetengine.Loader(fl) {
		t.Fatal("registered loader not resolved")
	}

	if _, ok := r.ResolveAssetLoader("file", assetengine.OutputImage); ok {
		t.Fatal("resolved loader for unregistered output type")
	}
	if _, ok := r.ResolveAssetLoader("https", assetengine.OutputBytes); ok {
		t.Fatal("resolved loader for unregistered scheme")
	}
}

func TestRegistry_Downloader(t *testing.T) {
	r := NewRegistry()
	d := &fakeDownloader{data: []byte("x")}
	r.RegisterDownloader("asset-bytes", d)

	if _, ok := r.Downloader("asset-bytes"); !ok {
		t.Fatal("registered downloader not found")
	}
	if _, ok := r.Downloader("https"); ok {
		t.Fatal("unexpected downloader for https")
	}
}

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "icon.png")
	if err := os.WriteFile(path, []byte("png-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewFileLoader()
	if !l.CanReuseLoadedAssets() {
		t.Fatal("file loads should be reusable")
	}

	var got assetengine.LoadedAsset
	var gotErr error
	l.Load(assetengine.LoadRequest{
		Key: assetengine.BundleKey("app", "icon.png"),
		URL: "file://" + path,
	}, func(a assetengine.LoadedAsset, err error) {
		got, gotErr = a, err
	})

	if gotErr != nil {
		t.Fatalf("load failed: %v", gotErr)
	}
	ba, ok := got.(*assetengine.BytesAsset)
	if !ok || !bytes.Equal(ba.Bytes, []byte("png-bytes")) {
		t.Fatalf("unexpected artifact %#v", got)
	}
}

func TestFileLoader_Missing(t *testing.T) {
	l := NewFileLoader()

	var gotErr error
	l.Load(assetengine.LoadRequest{
		Key: assetengine.URLKey("file:///nope/missing.png"),
		URL: "file:///nope/missing.png",
	}, func(a assetengine.LoadedAsset, err error) {
		gotErr = err
	})

	if gotErr == nil {
		t.Fatal("expected error for missing file")
	}
	var e *errors.Error
	if !stderrors.As(gotErr, &e) || e.Kind != errors.KindLoadFailed {
		t.Fatalf("unexpected error %v", gotErr)
	}
}

func TestDownloaderLoader(t *testing.T) {
	d := &fakeDownloader{data: []byte("fetched")}
	l := NewDownloaderLoader(d, "asset-bytes")

	cache := assetengine.NewPayloadCache()
	req := assetengine.LoadRequest{
		Key:          assetengine.URLKey("asset-bytes://abc"),
		URL:          "asset-bytes://abc",
		PayloadCache: cache,
	}

	var got assetengine.LoadedAsset
	l.Load(req, func(a assetengine.LoadedAsset, err error) { got = a })
	if ba := got.(*assetengine.BytesAsset); !bytes.Equal(ba.Bytes, []byte("fetched")) {
		t.Fatalf("unexpected bytes %q", ba.Bytes)
	}
	if d.calls != 1 {
		t.Fatalf("expected 1 download, got %d", d.calls)
	}

	// Second load for the same asset hits the payload cache.
	l.Load(req, func(a assetengine.LoadedAsset, err error) { got = a })
	if d.calls != 1 {
		t.Fatalf("payload cache not used, %d downloads", d.calls)
	}
	if ba := got.(*assetengine.BytesAsset); !bytes.Equal(ba.Bytes, []byte("fetched")) {
		t.Fatalf("unexpected cached bytes %q", ba.Bytes)
	}
}

func TestDownloaderLoader_RegisterInto(t *testing.T) {
	r := NewRegistry()
	l := NewDownloaderLoader(&fakeDownloader{}, "asset-bytes", "blob")
	l.RegisterInto(r)

	for _, scheme := range []string{"asset-bytes", "blob"} {
		if _, ok := r.ResolveAssetLoader(scheme, assetengine.OutputBytes); !ok {
			t.Fatalf("scheme %q not registered", scheme)
		}
	}
}
