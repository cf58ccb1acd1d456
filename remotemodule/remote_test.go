package remotemodule

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	assetengine "github.com/wippyai/asset-engine"
	"github.com/wippyai/asset-engine/errors"
)

func TestResources(t *testing.T) {
	res := NewResources(map[string]string{
		"icon.png": "https://cdn.example.com/icon.png",
	})

	url, ok := res.ResourceCacheURL("icon.png")
	if !ok || url != "https://cdn.example.com/icon.png" {
		t.Fatalf("ResourceCacheURL returned %q, %v", url, ok)
	}
	if _, ok := res.ResourceCacheURL("missing.png"); ok {
		t.Fatal("unexpected hit for missing.png")
	}

	all := res.AllURLs()
	if len(all) != 1 {
		t.Fatalf("AllURLs has %d entries", len(all))
	}
	// Mutating the copy must not affect the snapshot.
	all["x"] = "y"
	if len(res.AllURLs()) != 1 {
		t.Fatal("AllURLs exposed internal map")
	}
}

func TestStaticProvider(t *testing.T) {
	p := NewStaticProvider()
	p.Add("app", NewResources(map[string]string{"a.png": "https://x/a.png"}))

	var got assetengine.RemoteModuleResources
	var gotErr error
	p.LoadResources("app", func(r assetengine.RemoteModuleResources, err error) {
		got, gotErr = r, err
	})
	if gotErr != nil || got == nil {
		t.Fatalf("LoadResources: %v, %v", got, gotErr)
	}

	p.LoadResources("ghost", func(r assetengine.RemoteModuleResources, err error) {
		got, gotErr = r, err
	})
	if gotErr == nil {
		t.Fatal("expected error for unknown module")
	}
}

func TestHTTPProvider_Fetch(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/app/manifest.yaml" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("resources:\n  icon.png: https://cdn/icon.png\n"))
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, WithMaxRetries(0))

	done := make(chan struct{})
	var got assetengine.RemoteModuleResources
	var gotErr error
	p.LoadResources("app", func(r assetengine.RemoteModuleResources, err error) {
		got, gotErr = r, err
		close(done)
	})
	<-done

	if gotErr != nil {
		t.Fatalf("fetch failed: %v", gotErr)
	}
	url, ok := got.ResourceCacheURL("icon.png")
	if !ok || url != "https://cdn/icon.png" {
		t.Fatalf("unexpected resource URL %q, %v", url, ok)
	}

	// Second load is served from the memoized snapshot.
	done2 := make(chan struct{})
	p.LoadResources("app", func(r assetengine.RemoteModuleResources, err error) {
		close(done2)
	})
	<-done2
	if hits.Load() != 1 {
		t.Fatalf("expected 1 HTTP hit, got %d", hits.Load())
	}

	p.Invalidate("app")
	done3 := make(chan struct{})
	p.LoadResources("app", func(r assetengine.RemoteModuleResources, err error) {
		close(done3)
	})
	<-done3
	if hits.Load() != 2 {
		t.Fatalf("expected refetch after Invalidate, got %d hits", hits.Load())
	}
}

func TestHTTPProvider_RetryableOnServerError(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, WithMaxRetries(2))

	done := make(chan struct{})
	var gotErr error
	p.LoadResources("app", func(r assetengine.RemoteModuleResources, err error) {
		gotErr = err
		close(done)
	})
	<-done

	if !errors.IsRetryable(gotErr) {
		t.Fatalf("server error not retryable: %v", gotErr)
	}
	if hits.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", hits.Load())
	}
}

func TestHTTPProvider_NoRetryOnClientError(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, WithMaxRetries(5))

	done := make(chan struct{})
	var gotErr error
	p.LoadResources("missing", func(r assetengine.RemoteModuleResources, err error) {
		gotErr = err
		close(done)
	})
	<-done

	if gotErr == nil {
		t.Fatal("expected error")
	}
	if hits.Load() != 1 {
		t.Fatalf("client error retried %d times", hits.Load())
	}
}
