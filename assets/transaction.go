package assets

import (
	assetengine "github.com/wippyai/asset-engine"
)

// transaction is one batched pass over pending asset updates. It owns
// the manager's lock for the duration of each updateAsset call but
// releases it around every externally observable callback, so observer
// code can safely call back into the manager.
//
// Transactions are confined to the main goroutine; the pending queue
// needs no locking of its own. Updates enqueued while an entry for the
// same key is already pending are coalesced, but a key becomes
// enqueueable again as soon as its entry is dequeued, which is how one
// pass caps per-key work and still drives the remaining consumers on
// subsequent passes.
type transaction struct {
	m          *Manager
	pending    []assetengine.AssetKey
	pendingSet map[assetengine.AssetKey]struct{}
	locked     bool
}

func newTransaction(m *Manager) *transaction {
	return &transaction{
		m:          m,
		pendingSet: make(map[assetengine.AssetKey]struct{}),
	}
}

func (t *transaction) enqueueUpdate(key assetengine.AssetKey) {
	if _, ok := t.pendingSet[key]; ok {
		return
	}
	t.pendingSet[key] = struct{}{}
	t.pending = append(t.pending, key)
}

func (t *transaction) dequeueUpdate() (assetengine.AssetKey, bool) {
	if len(t.pending) == 0 {
		return assetengine.AssetKey{}, false
	}
	key := t.pending[0]
	t.pending = t.pending[1:]
	delete(t.pendingSet, key)
	return key, true
}

func (t *transaction) acquireLock() {
	if !t.locked {
		t.m.mu.Lock()
		t.locked = true
	}
}

func (t *transaction) releaseLock() {
	if t.locked {
		t.locked = false
		t.m.mu.Unlock()
	}
}
