package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleCatalog = `
assets:
  icon.png:
    width: 24
    height: 24
  splash.png:
    width: 1024
    height: 768
`

func TestParse(t *testing.T) {
	c, err := Parse([]byte(sampleCatalog))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if c.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", c.Len())
	}

	spec, ok := c.SpecsForName("icon.png")
	if !ok {
		t.Fatal("icon.png missing")
	}
	if spec.Width != 24 || spec.Height != 24 {
		t.Fatalf("wrong specs for icon.png: %+v", spec)
	}

	if _, ok := c.SpecsForName("missing.png"); ok {
		t.Fatal("unexpected entry missing.png")
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("assets: [not, a, map]")); err == nil {
		t.Fatal("expected error for malformed catalog")
	}

	if _, err := Parse([]byte("assets:\n  a.png: {width: -1, height: 2}")); err == nil {
		t.Fatal("expected error for negative dimensions")
	}
}

func TestCatalog_Names(t *testing.T) {
	c, err := Parse([]byte(sampleCatalog))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	names := c.Names()
	if len(names) != 2 || names[0] != "icon.png" || names[1] != "splash.png" {
		t.Fatalf("unexpected names: %v", names)
	}
}

func writeBundleDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	res := filepath.Join(root, "res")
	if err := os.MkdirAll(res, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(res, "catalog.yaml"), []byte(sampleCatalog), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(res, "icon.png"), []byte("png-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestDirBundle(t *testing.T) {
	root := writeBundleDir(t)
	b := NewDirBundle("app", root)

	if b.Name() != "app" {
		t.Fatalf("wrong name %q", b.Name())
	}
	if b.HasRemoteAssets() {
		t.Fatal("DirBundle reported remote assets")
	}

	cat, err := b.AssetCatalog()
	if err != nil {
		t.Fatalf("AssetCatalog failed: %v", err)
	}
	if _, ok := cat.SpecsForName("icon.png"); !ok {
		t.Fatal("catalog missing icon.png")
	}

	url := b.ResolveLocalAssetURL("app", "icon.png")
	if !strings.HasPrefix(url, "file://") {
		t.Fatalf("expected file URL, got %q", url)
	}

	if got := b.ResolveLocalAssetURL("app", "absent.png"); got != "" {
		t.Fatalf("resolved nonexistent asset to %q", got)
	}
	if got := b.ResolveLocalAssetURL("other", "icon.png"); got != "" {
		t.Fatalf("resolved foreign bundle to %q", got)
	}
}

func TestDirBundle_MissingCatalog(t *testing.T) {
	b := NewDirBundle("empty", t.TempDir())
	cat, err := b.AssetCatalog()
	if err != nil {
		t.Fatalf("missing catalog should not fail: %v", err)
	}
	if _, ok := cat.SpecsForName("anything"); ok {
		t.Fatal("empty catalog returned specs")
	}
}

func TestBundleSet(t *testing.T) {
	root := writeBundleDir(t)
	set := NewBundleSet()
	set.Add(NewDirBundle("app", root))

	if _, ok := set.Bundle("app"); !ok {
		t.Fatal("bundle app missing from set")
	}
	if _, ok := set.Bundle("ghost"); ok {
		t.Fatal("unexpected bundle ghost")
	}

	if url := set.ResolveLocalAssetURL("app", "icon.png"); url == "" {
		t.Fatal("set did not delegate resolution")
	}
	if url := set.ResolveLocalAssetURL("ghost", "icon.png"); url != "" {
		t.Fatalf("resolved unknown bundle to %q", url)
	}
}
