// Package assetengine provides an asset resolution and loading engine.
//
// The engine turns an abstract asset identifier (a path inside a bundle,
// a remote-module resource, or a URL) into a concrete, loaded artifact,
// while coordinating an arbitrary number of concurrent consumers,
// deduplicating in-flight loads, and delivering all results on a single
// designated goroutine.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	assetengine/         Root package with core value types and collaborator interfaces
//	├── assets/          Manager: per-asset state machines, transactions, load dedup
//	├── catalog/         Asset catalog parsing and directory-backed bundles
//	├── dispatch/        Main-thread run loop, worker queue, re-entrant locking
//	├── errors/          Structured error types for debugging
//	├── loaders/         Loader registry and built-in file/HTTP/bytes loaders
//	├── remotemodule/    Remote-module resource providers
//	└── store/           In-memory asset bytes behind synthetic URLs
//
// # Quick Start
//
// Create a manager and observe an asset:
//
//	main := dispatch.NewMainThread()
//	go main.Run()
//
//	reg := loaders.NewRegistry()
//	reg.RegisterLoader(loaders.NewFileLoader(), assetengine.OutputBytes, "file")
//
//	mgr := assets.NewManager(assets.Config{
//	    Resolver: myResolver,
//	    Loaders:  reg,
//	    Main:     main,
//	    Workers:  dispatch.NewWorkerQueue(4),
//	})
//
//	key := assetengine.BundleKey("app", "icon.png")
//	mgr.AddAssetLoadObserver(ctx, key, observer, assetengine.OutputBytes, 64, 64, nil)
//
// The observer's OnLoad is invoked on the main goroutine with either a
// loaded artifact or a human-readable error message.
//
// # Thread Safety
//
// All Manager methods are safe for concurrent use. State transitions and
// observer notifications happen exclusively on the designated main
// goroutine; blocking I/O (filesystem lookups, remote fetches, loader
// execution) runs on a worker queue and results are marshalled back under
// the manager's lock.
//
// # Staleness
//
// Every resolution attempt captures a monotonically increasing resolve id.
// Asynchronous completions carrying a stale id are silently dropped, which
// is the sole mechanism preventing races from late-arriving resolutions.
package assetengine
