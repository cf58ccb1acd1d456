package assets

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	assetengine "github.com/wippyai/asset-engine"
	"github.com/wippyai/asset-engine/dispatch"
	"github.com/wippyai/asset-engine/errors"
	"github.com/wippyai/asset-engine/loaders"
	"github.com/wippyai/asset-engine/store"
)

// Listener receives manager-level hooks. OnManagedAssetUpdated fires once
// per processed key while the manager's lock is held; implementations
// must not block and must not call back into the manager from it.
// OnPerformedUpdates fires once per fully drained transaction, outside
// the lock.
type Listener interface {
	OnManagedAssetUpdated(*ManagedAsset)
	OnPerformedUpdates()
}

// Config carries the manager's collaborators.
type Config struct {
	// Resolver locates bundle assets on the local filesystem. Optional.
	Resolver assetengine.LocalResolver

	// Remote fetches remote-module resources. Optional; bundles with
	// remote assets fail retryably without it.
	Remote assetengine.RemoteModuleProvider

	// Bundles resolves bundle names referenced by asset keys. Optional;
	// without it no catalog sizes are available and every bundle is
	// treated as local-only.
	Bundles assetengine.BundleProvider

	// Loaders is the loader registry consulted per (scheme, output
	// type). Required.
	Loaders *loaders.Registry

	// Main is the designated goroutine that owns all state transitions
	// and observer notifications. Required.
	Main assetengine.MainDispatcher

	// Workers runs blocking resolution and loading work. Required.
	Workers assetengine.AsyncQueue

	// Logger defaults to the package logger.
	Logger *zap.Logger
}

// Manager owns the key to ManagedAsset index, the scheduling and locking
// policy, and the public asset API. All methods are safe for concurrent
// use.
type Manager struct {
	resolver assetengine.LocalResolver
	remote   assetengine.RemoteModuleProvider
	bundles  assetengine.BundleProvider
	loaders  *loaders.Registry
	main     assetengine.MainDispatcher
	workers  assetengine.AsyncQueue
	logger   *zap.Logger

	mu dispatch.ReentrantMutex

	// All fields below are guarded by mu.
	assets                map[assetengine.AssetKey]*ManagedAsset
	resolveSeq            uint64
	scheduledUpdates      []assetengine.AssetKey
	pauseCount            int
	pendingLoads          []*requestHandler
	pendingLoadsScheduled bool
	curTx                 *transaction
	listener              Listener
	removeUnused          bool
	bytesStore            *store.BytesStore
}

func NewManager(cfg Config) *Manager {
	if cfg.Loaders == nil {
		panic("assets: Config.Loaders is required")
	}
	if cfg.Main == nil || cfg.Workers == nil {
		panic("assets: Config.Main and Config.Workers are required")
	}
	log := cfg.Logger
	if log == nil {
		log = Logger()
	}
	return &Manager{
		resolver: cfg.Resolver,
		remote:   cfg.Remote,
		bundles:  cfg.Bundles,
		loaders:  cfg.Loaders,
		main:     cfg.Main,
		workers:  cfg.Workers,
		logger:   log,
		assets:   make(map[assetengine.AssetKey]*ManagedAsset),
	}
}

// SetListener installs the manager-level listener.
func (m *Manager) SetListener(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listener = l
}

// SetRemoveUnusedLocalAssets controls whether bundle assets with no
// consumers and no observable are evicted from the index. URL assets are
// always evicted when unused.
func (m *Manager) SetRemoveUnusedLocalAssets(remove bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeUnused = remove
}

// GetAsset returns the shared observable handle for a key, creating the
// managed asset on first reference. Repeated calls return the same
// handle while it is alive.
func (m *Manager) GetAsset(key assetengine.AssetKey) assetengine.Asset {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lockedGetAsset(key)
}

// CreateAssetWithBytes registers an in-memory payload under a generated
// asset-bytes:// URL and returns its observable handle.
func (m *Manager) CreateAssetWithBytes(bytes []byte) assetengine.Asset {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.bytesStore == nil {
		m.bytesStore = store.NewBytesStore()
		// Byte payloads behind generated URLs flow through the regular
		// loading pipeline: the store serves as the downloader for its
		// scheme, and the adapter makes bytes output loadable.
		m.loaders.RegisterDownloader(store.URLScheme, m.bytesStore)
		loaders.NewDownloaderLoader(m.bytesStore, store.URLScheme).RegisterInto(m.loaders)
	}

	key := assetengine.URLKey(m.bytesStore.RegisterAssetBytes(bytes))
	return m.lockedGetAsset(key)
}

func (m *Manager) lockedGetAsset(key assetengine.AssetKey) assetengine.Asset {
	ma := m.getOrCreateManagedAsset(key)
	if ma.observable != nil {
		return ma.observable
	}
	ma.observable = m.createObservable(key)
	return ma.observable
}

// IsAssetAlive reports whether a managed asset exists for the key.
func (m *Manager) IsAssetAlive(key assetengine.AssetKey) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.assets[key] != nil
}

// ResolvedAssetLocation returns the resolved location for a key, if the
// asset exists and is Ready.
func (m *Manager) ResolvedAssetLocation(key assetengine.AssetKey) (assetengine.AssetLocation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ma := m.assets[key]
	if ma == nil {
		return assetengine.AssetLocation{}, false
	}
	return ma.ResolvedLocation()
}

// SetResolvedAssetLocation overrides an asset's resolved location, e.g.
// on hot-reload of an asset catalog. The asset re-enters Ready directly;
// every consumer is reset to its initial state because data loaded from
// the previous location is now invalid.
func (m *Manager) SetResolvedAssetLocation(key assetengine.AssetKey, location assetengine.AssetLocation) {
	m.mu.Lock()

	ma := m.getOrCreateManagedAsset(key)
	if ma.state == AssetStateReady && ma.location == location {
		m.mu.Unlock()
		return
	}

	for _, c := range ma.consumers {
		c.clearResult()
		c.state = consumerStateInitial
		c.notified = false
		m.updateConsumerRequestHandler(c, nil)
	}

	ma.resolveID = 0
	ma.clearPayloadCaches()
	ma.location = location
	ma.resolveErr = nil
	ma.state = AssetStateReady

	if ma.hasConsumers() {
		m.scheduleAssetUpdateAndUnlock(key)
		return
	}
	m.mu.Unlock()
}

// AddAssetLoadObserver registers one interest in an asset. The observer
// is notified on the main goroutine once the asset loads or fails. A nil
// ctx is treated as context.Background.
func (m *Manager) AddAssetLoadObserver(
	ctx context.Context,
	key assetengine.AssetKey,
	observer assetengine.AssetLoadObserver,
	outputType assetengine.OutputType,
	preferredWidth, preferredHeight int,
	attachedData any,
) {
	if ctx == nil {
		ctx = context.Background()
	}

	m.mu.Lock()

	ma := m.getOrCreateManagedAsset(key)
	c := ma.addConsumer()
	c.ctx = ctx
	c.observer = observer
	c.outputType = outputType
	c.preferredWidth = preferredWidth
	c.preferredHeight = preferredHeight
	c.attachedData = attachedData

	if ma.state == AssetStateFailedRetryable {
		// Retry the resolving now that we have a new consumer.
		ma.state = AssetStateInitial
	}

	m.scheduleAssetUpdateAndUnlock(key)
}

// RemoveAssetLoadObserver marks the consumer registered with observer for
// removal. The entry is swept on the next update pass.
func (m *Manager) RemoveAssetLoadObserver(key assetengine.AssetKey, observer assetengine.AssetLoadObserver) {
	m.mu.Lock()

	ma := m.assets[key]
	if ma == nil {
		m.mu.Unlock()
		return
	}

	for _, c := range ma.consumers {
		if c.observer == observer {
			c.observer = nil
			break
		}
	}

	m.scheduleAssetUpdateAndUnlock(key)
}

// UpdateObserverPreferredSize retargets future loads of the consumer
// registered with observer. The consumer detaches from its current
// request handler and re-enters its initial state, so the next pass
// issues (or joins) a load at the new size; an in-flight shared load for
// other consumers is unaffected.
func (m *Manager) UpdateObserverPreferredSize(
	key assetengine.AssetKey,
	observer assetengine.AssetLoadObserver,
	preferredWidth, preferredHeight int,
) {
	m.mu.Lock()

	ma := m.assets[key]
	if ma == nil {
		m.mu.Unlock()
		return
	}

	for _, c := range ma.consumers {
		if c.observer != observer {
			continue
		}
		if c.preferredWidth == preferredWidth && c.preferredHeight == preferredHeight {
			break
		}

		c.preferredWidth = preferredWidth
		c.preferredHeight = preferredHeight
		c.clearResult()
		c.state = consumerStateInitial
		c.notified = false
		m.updateConsumerRequestHandler(c, nil)

		m.scheduleAssetUpdateAndUnlock(key)
		return
	}

	m.mu.Unlock()
}

// OnAssetCatalogChanged recomputes the cached expected dimensions for
// every observable of the bundle.
func (m *Manager) OnAssetCatalogChanged(bundle assetengine.Bundle) {
	cat, catErr := bundle.AssetCatalog()

	m.mu.Lock()
	defer m.mu.Unlock()

	for key, ma := range m.assets {
		if key.Bundle == bundle.Name() && ma.observable != nil {
			updateObservableSize(ma.observable, key.Path, cat, catErr)
		}
	}
}

// BeginPauseUpdates increments the pause scope. While paused, scheduled
// updates accumulate without flushing. Nestable.
func (m *Manager) BeginPauseUpdates() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pauseCount++
}

// EndPauseUpdates closes one pause scope. On the transition back to
// zero, accumulated updates are flushed: synchronously when already on
// the main goroutine, otherwise rescheduled onto it.
func (m *Manager) EndPauseUpdates() {
	m.mu.Lock()

	if m.pauseCount <= 0 {
		m.mu.Unlock()
		panic("assets: EndPauseUpdates without BeginPauseUpdates")
	}

	isMain := m.main.IsCurrent()

	if m.pauseCount == 1 && len(m.scheduledUpdates) > 0 && isMain {
		m.performUpdatesAndUnlock()
		m.mu.Lock()
	}

	m.pauseCount--

	if m.pauseCount == 0 {
		m.scheduleFlushLoadRequests()
		if len(m.scheduledUpdates) > 0 {
			if !isMain {
				m.mu.Unlock()
				m.schedulePerformUpdates()
				return
			}
			// An update arrived while the pass above was notifying.
			m.performUpdatesAndUnlock()
			return
		}
	}

	m.mu.Unlock()
}

// FlushUpdates drains pending updates. No-op unless called on the main
// goroutine with updates pending.
func (m *Manager) FlushUpdates() {
	m.mu.Lock()

	if len(m.scheduledUpdates) == 0 || !m.main.IsCurrent() {
		m.mu.Unlock()
		return
	}

	m.performUpdatesAndUnlock()
}

// AssetInfo is a point-in-time snapshot of one managed asset.
type AssetInfo struct {
	Key         assetengine.AssetKey
	State       AssetState
	Consumers   int
	Location    assetengine.AssetLocation
	HasLocation bool
	Err         error
}

// Snapshot returns the state of every managed asset, ordered by key.
func (m *Manager) Snapshot() []AssetInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	infos := make([]AssetInfo, 0, len(m.assets))
	for key, ma := range m.assets {
		info := AssetInfo{
			Key:       key,
			State:     ma.state,
			Consumers: len(ma.consumers),
			Err:       ma.resolveErr,
		}
		info.Location, info.HasLocation = ma.ResolvedLocation()
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key.Less(infos[j].Key) })
	return infos
}

// --- index ---

func (m *Manager) getOrCreateManagedAsset(key assetengine.AssetKey) *ManagedAsset {
	ma := m.assets[key]
	if ma == nil {
		ma = newManagedAsset(key)
		m.assets[key] = ma
	}
	return ma
}

func (m *Manager) createObservable(key assetengine.AssetKey) *Observable {
	o := &Observable{mgr: m, key: key}
	if !key.IsURL() && m.bundles != nil {
		if b, ok := m.bundles.Bundle(key.Bundle); ok {
			cat, err := b.AssetCatalog()
			updateObservableSize(o, key.Path, cat, err)
		}
	}
	return o
}

func updateObservableSize(o *Observable, path string, cat assetengine.Catalog, catErr error) {
	var width, height int
	if catErr == nil && cat != nil {
		if specs, ok := cat.SpecsForName(path); ok {
			width = specs.Width
			height = specs.Height
		}
	}
	o.setExpectedSize(width, height)
}

func (m *Manager) onObservableReleased(o *Observable) {
	m.mu.Lock()

	ma := m.assets[o.key]
	if ma == nil {
		m.mu.Unlock()
		return
	}
	if ma.observable == o {
		ma.observable = nil
	}

	m.scheduleAssetUpdateAndUnlock(o.key)
}

// removeManagedAssetIfNeeded evicts an asset nobody is interested in.
// Bundle assets are kept unless removal of unused local assets is
// enabled; URL assets are always evicted once unused.
func (m *Manager) removeManagedAssetIfNeeded(key assetengine.AssetKey, ma *ManagedAsset) bool {
	if (!key.IsURL() && !m.removeUnused) || ma.hasConsumers() || ma.observable != nil {
		return false
	}

	delete(m.assets, key)

	if m.bytesStore != nil && store.IsAssetBytesURL(key.URL) {
		m.bytesStore.UnregisterAssetBytes(key.URL)
	}

	return true
}

// --- update scheduling ---

// scheduleAssetUpdateAndUnlock enqueues an update for key and releases
// the lock. Inside a transaction on the main goroutine the update joins
// the transaction's queue; otherwise it lands on the manager-level
// pending list and a flush is started (inline on the main goroutine,
// rescheduled onto it from anywhere else).
func (m *Manager) scheduleAssetUpdateAndUnlock(key assetengine.AssetKey) {
	// curTx is only current for the goroutine running the transaction;
	// a worker scheduling an update mid-callback must not touch the
	// main goroutine's queue.
	if m.curTx != nil && m.main.IsCurrent() {
		m.curTx.enqueueUpdate(key)
		m.mu.Unlock()
		return
	}

	needFlush := m.pauseCount == 0 && len(m.scheduledUpdates) == 0
	m.scheduledUpdates = append(m.scheduledUpdates, key)

	if needFlush {
		if m.main.IsCurrent() {
			m.performUpdatesAndUnlock()
			return
		}
		m.mu.Unlock()
		m.schedulePerformUpdates()
		return
	}

	m.mu.Unlock()
}

func (m *Manager) schedulePerformUpdates() {
	m.main.Dispatch(func() {
		m.mu.Lock()
		if len(m.scheduledUpdates) == 0 || m.pauseCount > 0 {
			m.mu.Unlock()
			return
		}
		m.performUpdatesAndUnlock()
	})
}

// performUpdatesAndUnlock drains the pending-update list inside one
// transaction. Caller must hold the lock and be on the main goroutine;
// the lock is released on return.
func (m *Manager) performUpdatesAndUnlock() {
	if !m.main.IsCurrent() {
		panic("assets: performUpdates off the main goroutine")
	}

	if m.curTx != nil {
		// Re-entered from inside an active transaction; fold the
		// pending keys into it rather than nesting.
		for _, key := range m.scheduledUpdates {
			m.curTx.enqueueUpdate(key)
		}
		m.scheduledUpdates = m.scheduledUpdates[:0]
		m.mu.Unlock()
		return
	}

	tx := newTransaction(m)
	tx.locked = true
	m.curTx = tx

	for _, key := range m.scheduledUpdates {
		tx.enqueueUpdate(key)
	}
	m.scheduledUpdates = m.scheduledUpdates[:0]

	for {
		key, ok := tx.dequeueUpdate()
		if !ok {
			break
		}
		tx.acquireLock()
		m.updateAsset(tx, key)
	}

	tx.acquireLock()
	m.curTx = nil
	listener := m.listener
	tx.releaseLock()

	if listener != nil {
		listener.OnPerformedUpdates()
	}
}

// updateAsset processes one dirty key. Called with the lock held; may
// release it (resolution dispatch, observer notification).
func (m *Manager) updateAsset(tx *transaction, key assetengine.AssetKey) {
	ma := m.assets[key]
	if ma == nil {
		return
	}

	if !m.removeManagedAssetIfNeeded(key, ma) {
		switch ma.state {
		case AssetStateInitial:
			if ma.hasConsumers() {
				m.resolveAssetLocation(tx, key, ma)
			}
		case AssetStateResolvingLocation:
			// Waiting on an asynchronous completion.
		case AssetStateReady, AssetStateFailedRetryable, AssetStateFailedPermanently:
			m.updateAssetConsumers(tx, key, ma)
		}
	}

	// The branches above may have released the lock around dispatch or
	// notification.
	tx.acquireLock()
	if m.listener != nil {
		m.listener.OnManagedAssetUpdated(ma)
	}
}

// --- resolution ---

func (m *Manager) resolveAssetLocation(tx *transaction, key assetengine.AssetKey, ma *ManagedAsset) {
	assertState(ma, AssetStateInitial)
	ma.state = AssetStateResolvingLocation

	m.resolveSeq++
	resolveID := m.resolveSeq
	ma.resolveID = resolveID

	if key.IsURL() {
		// URL assets resolve to themselves, synchronously.
		m.updateAssetLocation(key, ma, assetengine.AssetLocation{URL: key.URL}, nil)
		tx.enqueueUpdate(key)
		return
	}

	if m.bundleHasRemoteAssets(key.Bundle) {
		tx.releaseLock()
		m.remote.LoadResources(key.Bundle, func(res assetengine.RemoteModuleResources, err error) {
			m.workers.Async(func() {
				m.onRemoteResourcesLoaded(key, res, err, resolveID)
			})
		})
		return
	}

	tx.releaseLock()
	m.workers.Async(func() {
		m.resolveLocalAndUpdate(key, resolveID)
	})
}

func (m *Manager) bundleHasRemoteAssets(bundleName string) bool {
	if m.remote == nil || m.bundles == nil {
		return false
	}
	b, ok := m.bundles.Bundle(bundleName)
	return ok && b.HasRemoteAssets()
}

func (m *Manager) resolveLocalAssetLocation(key assetengine.AssetKey) (assetengine.AssetLocation, error) {
	if m.resolver != nil {
		if url := m.resolver.ResolveLocalAssetURL(key.Bundle, key.Path); url != "" {
			return assetengine.AssetLocation{URL: url, IsLocalFile: true}, nil
		}
	}

	return assetengine.AssetLocation{}, errors.NotFound(errors.PhaseResolve, key.String(),
		fmt.Sprintf("did not find asset '%s' in local module '%s'", key.Path, key.Bundle))
}

// resolveLocalAndUpdate runs on the worker queue.
func (m *Manager) resolveLocalAndUpdate(key assetengine.AssetKey, resolveID uint64) {
	location, err := m.resolveLocalAssetLocation(key)

	m.mu.Lock()

	ma := m.assets[key]
	if ma == nil || ma.resolveID != resolveID {
		m.mu.Unlock()
		return
	}

	m.updateAssetLocation(key, ma, location, err)
	m.scheduleAssetUpdateAndUnlock(key)
}

func (m *Manager) resolveRemoteAssetLocation(key assetengine.AssetKey, res assetengine.RemoteModuleResources) (assetengine.AssetLocation, error) {
	if cacheURL, ok := res.ResourceCacheURL(key.Path); ok {
		return assetengine.AssetLocation{URL: cacheURL}, nil
	}

	if m.resolver != nil {
		if url := m.resolver.ResolveLocalAssetURL(key.Bundle, key.Path); url != "" {
			return assetengine.AssetLocation{URL: url, IsLocalFile: true}, nil
		}
	}

	all := res.AllURLs()
	candidates := make([]string, 0, len(all))
	for name := range all {
		candidates = append(candidates, name)
	}
	sort.Strings(candidates)

	return assetengine.AssetLocation{}, errors.NotFoundWithCandidates(key.Path, key.Bundle, candidates)
}

// onRemoteResourcesLoaded runs on the worker queue.
func (m *Manager) onRemoteResourcesLoaded(key assetengine.AssetKey, res assetengine.RemoteModuleResources, provErr error, resolveID uint64) {
	var location assetengine.AssetLocation
	var err error
	if provErr == nil {
		location, err = m.resolveRemoteAssetLocation(key, res)
	}

	m.mu.Lock()

	ma := m.assets[key]
	if ma == nil {
		m.mu.Unlock()
		return
	}
	if ma.resolveID != resolveID {
		m.logger.Debug("dropping stale resolution",
			zap.String("asset", key.String()),
			zap.Uint64("resolveId", resolveID),
			zap.Uint64("current", ma.resolveID))
		m.mu.Unlock()
		return
	}

	assertState(ma, AssetStateResolvingLocation)

	if provErr != nil {
		// The provider itself failed; a later fetch may succeed.
		ma.state = AssetStateFailedRetryable
		ma.resolveErr = errors.Retryable(errors.PhaseFetch, key.String(), provErr)
	} else {
		m.updateAssetLocation(key, ma, location, err)
	}

	m.scheduleAssetUpdateAndUnlock(key)
}

func (m *Manager) updateAssetLocation(key assetengine.AssetKey, ma *ManagedAsset, location assetengine.AssetLocation, err error) {
	assertState(ma, AssetStateResolvingLocation)

	if err != nil {
		m.logger.Warn("failed to resolve asset location",
			zap.String("asset", key.String()),
			zap.Error(err))
		ma.state = AssetStateFailedPermanently
		ma.resolveErr = err
		return
	}

	ma.state = AssetStateReady
	ma.location = location
	ma.resolveErr = nil
}

// --- consumer driving ---

// nextConsumerToUpdate selects at most one consumer to drive this pass.
// Consumers pending removal outrank active ones so removal work is never
// starved; hasMore reports whether another candidate remains and the key
// should be re-enqueued.
func nextConsumerToUpdate(ma *ManagedAsset) (pick *assetConsumer, hasMore bool) {
	var removal, active *assetConsumer

	for _, c := range ma.consumers {
		if c.observer == nil {
			if removal == nil {
				removal = c
			} else {
				hasMore = true
			}
			continue
		}

		if c.notified {
			continue
		}

		switch c.state {
		case consumerStateInitial, consumerStateFailed, consumerStateLoaded:
			if active == nil {
				active = c
			} else {
				hasMore = true
			}
		case consumerStateLoading, consumerStateRemoved:
		}
	}

	if removal != nil {
		if active != nil {
			hasMore = true
		}
		return removal, hasMore
	}
	return active, hasMore
}

func (m *Manager) updateAssetConsumers(tx *transaction, key assetengine.AssetKey, ma *ManagedAsset) {
	assertState(ma, AssetStateReady, AssetStateFailedRetryable, AssetStateFailedPermanently)

	c, hasMore := nextConsumerToUpdate(ma)
	if c == nil {
		return
	}

	if hasMore {
		tx.enqueueUpdate(key)
	}

	m.driveConsumer(tx, key, ma, c)
}

func (m *Manager) driveConsumer(tx *transaction, key assetengine.AssetKey, ma *ManagedAsset, c *assetConsumer) {
	if c.observer == nil {
		m.removeAssetConsumer(ma, c)
		if !ma.hasConsumers() && ma.observable == nil {
			// One more pass so the eviction check sees the empty asset.
			tx.enqueueUpdate(key)
		}
		return
	}

	switch c.state {
	case consumerStateInitial:
		if ma.state == AssetStateFailedRetryable || ma.state == AssetStateFailedPermanently {
			c.state = consumerStateFailed
			c.loaded = nil
			c.loadErr = ma.resolveErr
			tx.enqueueUpdate(key)
		} else {
			m.loadAssetForConsumer(tx, key, ma, c, ma.location)
		}
	case consumerStateLoading:
		// In flight; the load completion re-schedules this key.
	case consumerStateFailed:
		m.notifyAssetConsumer(tx, key, ma, c, nil, c.loadErr)
	case consumerStateLoaded:
		m.notifyAssetConsumer(tx, key, ma, c, c.loaded, nil)
	case consumerStateRemoved:
	}
}

func (m *Manager) removeAssetConsumer(ma *ManagedAsset, c *assetConsumer) {
	ma.removeConsumer(c)
	c.state = consumerStateRemoved
	c.clearResult()
	m.updateConsumerRequestHandler(c, nil)
}

// notifyAssetConsumer invokes the observer callback with the stored
// result. The lock is released for the duration of the callback and
// reacquired after, so observer code can call back into the manager.
func (m *Manager) notifyAssetConsumer(
	tx *transaction,
	key assetengine.AssetKey,
	ma *ManagedAsset,
	c *assetConsumer,
	loaded assetengine.LoadedAsset,
	err error,
) {
	var handle assetengine.Asset
	if ma.observable != nil {
		handle = ma.observable
	}
	observer := c.observer
	c.notified = true

	tx.releaseLock()

	var errMsg string
	if err != nil {
		errMsg = err.Error()
		m.logger.Warn("notifying error for asset consumer",
			zap.String("asset", key.String()),
			zap.String("error", errMsg))
	}

	observer.OnLoad(handle, loaded, errMsg)

	tx.acquireLock()
}

// --- load dispatch and deduplication ---

func (m *Manager) loadAssetForConsumer(
	tx *transaction,
	key assetengine.AssetKey,
	ma *ManagedAsset,
	c *assetConsumer,
	location assetengine.AssetLocation,
) {
	scheme := location.Scheme()
	loader, ok := m.loaders.ResolveAssetLoader(scheme, c.outputType)
	if !ok {
		c.state = consumerStateFailed
		c.loaded = nil
		c.loadErr = errors.LoaderNotFound(scheme, c.outputType.String())
		tx.enqueueUpdate(key)
		return
	}

	c.state = consumerStateLoading

	signature := requestSignature(c.outputType, c.preferredWidth, c.preferredHeight, c.attachedData)

	if loader.CanReuseLoadedAssets() {
		for _, other := range ma.consumers {
			h := other.handler
			if h == nil || h.signature != signature || !h.matchesRequest(c) {
				continue
			}

			m.updateConsumerRequestHandler(c, h)

			if h.hasResult {
				m.applyLoadResult(key, c, h.lastLoaded, h.lastErr)
				tx.enqueueUpdate(key)
			}
			return
		}
	}

	h := newRequestHandler(m, c.ctx, key, ma.payloadCacheFor(loader), location.URL,
		c.outputType, c.preferredWidth, c.preferredHeight, c.attachedData, loader)
	m.updateConsumerRequestHandler(c, h)
}

// updateConsumerRequestHandler reattaches a consumer to a different
// request handler (or to none). A handler whose consumer count drops to
// zero is marked for cancellation and queued for asynchronous teardown,
// never torn down inline.
func (m *Manager) updateConsumerRequestHandler(c *assetConsumer, h *requestHandler) {
	existing := c.handler
	c.handler = h

	if existing != nil {
		existing.consumers--
		if existing.consumers == 0 && !existing.scheduledCancel {
			existing.scheduledCancel = true
			m.pendingLoads = append(m.pendingLoads, existing)
			m.scheduleFlushLoadRequests()
		}
	}

	if h != nil {
		h.consumers++
		if !h.scheduledLoad {
			h.scheduledLoad = true
			m.pendingLoads = append(m.pendingLoads, h)
			m.scheduleFlushLoadRequests()
		}
	}
}

func (m *Manager) scheduleFlushLoadRequests() {
	if !m.pendingLoadsScheduled && len(m.pendingLoads) > 0 {
		m.pendingLoadsScheduled = true
		m.workers.Async(m.flushLoadRequests)
	}
}

// flushLoadRequests drains the pending-load queue on the worker queue.
// Start and cancel both run outside the lock; they are mutually
// exclusive per handler.
func (m *Manager) flushLoadRequests() {
	m.mu.Lock()

	for len(m.pendingLoads) > 0 && m.pauseCount == 0 {
		h := m.pendingLoads[0]
		m.pendingLoads = m.pendingLoads[1:]

		if h.scheduledCancel {
			// Drop the cached result now rather than when the handler
			// is garbage collected.
			h.lastLoaded = nil
			h.lastErr = nil
			h.hasResult = false

			m.mu.Unlock()
			h.cancel()
		} else {
			m.mu.Unlock()
			h.startLoadIfNeeded()
		}

		m.mu.Lock()
	}

	m.pendingLoadsScheduled = false
	m.mu.Unlock()
}

// onLoad feeds a handler's completion back into every consumer attached
// to it. Called from loader completion callbacks on any goroutine.
func (m *Manager) onLoad(h *requestHandler, loaded assetengine.LoadedAsset, err error) {
	if err != nil {
		m.logger.Warn("asset finished loading with error",
			zap.String("asset", h.key.String()),
			zap.Error(err))
	}

	m.mu.Lock()

	ma := m.assets[h.key]
	if ma == nil || h.scheduledCancel {
		m.mu.Unlock()
		return
	}

	h.lastLoaded = loaded
	h.lastErr = err
	h.hasResult = true

	for _, c := range ma.consumers {
		if c.handler == h {
			m.applyLoadResult(h.key, c, loaded, err)
		}
	}

	m.scheduleAssetUpdateAndUnlock(h.key)
}

func (m *Manager) applyLoadResult(key assetengine.AssetKey, c *assetConsumer, loaded assetengine.LoadedAsset, err error) {
	c.notified = false

	switch {
	case err != nil:
		c.state = consumerStateFailed
		c.loaded = nil
		c.loadErr = errors.LoadFailed(key.String(), err)
	case loaded == nil:
		c.state = consumerStateFailed
		c.loaded = nil
		c.loadErr = errors.NilAsset(key.String())
	default:
		c.state = consumerStateLoaded
		c.loaded = loaded
		c.loadErr = nil
	}
}

func assertState(ma *ManagedAsset, want ...AssetState) {
	for _, s := range want {
		if ma.state == s {
			return
		}
	}
	panic(fmt.Sprintf("assets: asset '%s' in unexpected state %s", ma.key, ma.state))
}
