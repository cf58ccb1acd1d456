package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	assetengine "github.com/wippyai/asset-engine"
	"github.com/wippyai/asset-engine/assets"
	"github.com/wippyai/asset-engine/catalog"
	"github.com/wippyai/asset-engine/dispatch"
	"github.com/wippyai/asset-engine/loaders"
	"github.com/wippyai/asset-engine/remotemodule"
)

func main() {
	var (
		bundleSpec  = flag.String("bundle", "", "Bundle directories (name=dir,name2=dir2)")
		remoteURL   = flag.String("remote", "", "Base URL of a remote module manifest server")
		loadKey     = flag.String("load", "", "Asset to load (bundle:path or a URL)")
		output      = flag.String("output", "bytes", "Output type (bytes, image, animated-image, video, font)")
		width       = flag.Int("width", 0, "Preferred width")
		height      = flag.Int("height", 0, "Preferred height")
		timeout     = flag.Duration("timeout", 30*time.Second, "Load timeout")
		list        = flag.Bool("list", false, "List catalog entries of the bundles and exit")
		verbose     = flag.Bool("v", false, "Verbose logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *bundleSpec == "" && *loadKey == "" && !*interactive {
		fmt.Fprintln(os.Stderr, "Usage: assets -bundle name=dir[,name2=dir2] -load bundle:path [-output type]")
		fmt.Fprintln(os.Stderr, "       assets -load https://example.com/image.png")
		fmt.Fprintln(os.Stderr, "       assets -bundle name=dir -list")
		fmt.Fprintln(os.Stderr, "       assets -bundle name=dir -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		log, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer log.Sync()
		assets.SetLogger(log)
	}

	bundles, err := parseBundles(*bundleSpec)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *list {
		if err := listCatalogs(bundles); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	eng := newEngine(bundles, *remoteURL)
	defer eng.close()

	if *interactive {
		if err := runInteractive(eng); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := load(eng, *loadKey, *output, *width, *height, *timeout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// engine bundles the manager with the goroutines backing it.
type engine struct {
	mgr     *assets.Manager
	bundles *catalog.BundleSet
	main    *dispatch.MainThread
}

func newEngine(bundles *catalog.BundleSet, remoteURL string) *engine {
	registry := loaders.NewRegistry()
	registry.RegisterLoader(loaders.NewFileLoader(), assetengine.OutputBytes, "file")

	downloader := loaders.NewHTTPDownloader(http.DefaultClient)
	registry.RegisterDownloader("http", downloader)
	registry.RegisterDownloader("https", downloader)
	loaders.NewDownloaderLoader(downloader, "http", "https").RegisterInto(registry)

	main := dispatch.NewMainThread()
	go main.Run()

	cfg := assets.Config{
		Resolver: bundles,
		Bundles:  bundles,
		Loaders:  registry,
		Main:     main,
		Workers:  dispatch.NewWorkerQueue(4),
		Logger:   assets.Logger(),
	}
	if remoteURL != "" {
		cfg.Remote = remotemodule.NewHTTPProvider(remoteURL, remotemodule.WithLogger(assets.Logger()))
	}

	return &engine{
		mgr:     assets.NewManager(cfg),
		bundles: bundles,
		main:    main,
	}
}

func (e *engine) close() {
	e.main.Stop()
}

func parseBundles(spec string) (*catalog.BundleSet, error) {
	set := catalog.NewBundleSet()
	if spec == "" {
		return set, nil
	}
	for _, entry := range strings.Split(spec, ",") {
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid bundle mapping %q, want name=dir", entry)
		}
		info, err := os.Stat(parts[1])
		if err != nil {
			return nil, fmt.Errorf("bundle %s: %w", parts[0], err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("bundle %s: %s is not a directory", parts[0], parts[1])
		}
		set.Add(catalog.NewDirBundle(parts[0], parts[1]))
	}
	return set, nil
}

func listCatalogs(bundles *catalog.BundleSet) error {
	for _, name := range bundles.Names() {
		b, _ := bundles.Bundle(name)
		cat, err := b.AssetCatalog()
		if err != nil {
			return fmt.Errorf("catalog of %s: %w", name, err)
		}
		fmt.Printf("Bundle: %s\n", name)
		c, ok := cat.(*catalog.Catalog)
		if !ok || c.Len() == 0 {
			fmt.Println("  (no catalog entries)")
			continue
		}
		for _, entry := range c.Names() {
			specs, _ := c.SpecsForName(entry)
			fmt.Printf("  %s (%dx%d)\n", entry, specs.Width, specs.Height)
		}
	}
	return nil
}

func parseKey(s string) (assetengine.AssetKey, error) {
	if assetengine.IsAssetURL(s) {
		return assetengine.URLKey(s), nil
	}
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return assetengine.AssetKey{}, fmt.Errorf("invalid asset key %q, want bundle:path or a URL", s)
	}
	return assetengine.BundleKey(parts[0], parts[1]), nil
}

func parseOutput(s string) (assetengine.OutputType, error) {
	switch s {
	case "bytes":
		return assetengine.OutputBytes, nil
	case "image":
		return assetengine.OutputImage, nil
	case "animated-image":
		return assetengine.OutputAnimatedImage, nil
	case "video":
		return assetengine.OutputVideo, nil
	case "font":
		return assetengine.OutputFont, nil
	default:
		return 0, fmt.Errorf("unknown output type %q", s)
	}
}

type loadResult struct {
	loaded assetengine.LoadedAsset
	errMsg string
}

// chanObserver delivers the first notification to a channel.
type chanObserver struct {
	ch chan loadResult
}

func newChanObserver() *chanObserver {
	return &chanObserver{ch: make(chan loadResult, 1)}
}

func (o *chanObserver) OnLoad(asset assetengine.Asset, loaded assetengine.LoadedAsset, errMsg string) {
	select {
	case o.ch <- loadResult{loaded: loaded, errMsg: errMsg}:
	default:
	}
}

func load(eng *engine, keyStr, outputStr string, width, height int, timeout time.Duration) error {
	if keyStr == "" {
		return fmt.Errorf("no asset given, use -load")
	}

	key, err := parseKey(keyStr)
	if err != nil {
		return err
	}
	output, err := parseOutput(outputStr)
	if err != nil {
		return err
	}

	asset := eng.mgr.GetAsset(key)
	defer asset.Release()

	if w, h := asset.ExpectedSize(); w > 0 || h > 0 {
		fmt.Printf("Expected size: %dx%d\n", w, h)
	}

	obs := newChanObserver()
	eng.mgr.AddAssetLoadObserver(context.Background(), key, obs, output, width, height, nil)
	defer eng.mgr.RemoveAssetLoadObserver(key, obs)

	fmt.Printf("Loading %s as %s...\n", key, output)

	select {
	case res := <-obs.ch:
		if res.errMsg != "" {
			return fmt.Errorf("load failed: %s", res.errMsg)
		}
		describeLoaded(res.loaded)
	case <-time.After(timeout):
		return fmt.Errorf("timed out after %s", timeout)
	}

	if location, ok := eng.mgr.ResolvedAssetLocation(key); ok {
		fmt.Printf("Resolved location: %s", location.URL)
		if location.IsLocalFile {
			fmt.Printf(" (local file)")
		}
		fmt.Println()
	}

	return nil
}

func describeLoaded(loaded assetengine.LoadedAsset) {
	switch a := loaded.(type) {
	case *assetengine.BytesAsset:
		fmt.Printf("Loaded %d bytes\n", len(a.Bytes))
	default:
		fmt.Printf("Loaded %s asset\n", loaded.Output())
	}
}
