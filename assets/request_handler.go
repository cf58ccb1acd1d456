package assets

import (
	"context"
	"encoding/binary"
	"fmt"
	"reflect"
	"sync"

	"github.com/cespare/xxhash/v2"

	assetengine "github.com/wippyai/asset-engine"
)

// requestSignature hashes the parameters that make two load requests
// interchangeable. Consumers whose signatures match share one handler
// when the loader declares its results reusable.
func requestSignature(output assetengine.OutputType, width, height int, attached any) uint64 {
	var d xxhash.Digest
	d.Reset()

	var buf [17]byte
	buf[0] = byte(output)
	binary.LittleEndian.PutUint64(buf[1:9], uint64(int64(width)))
	binary.LittleEndian.PutUint64(buf[9:17], uint64(int64(height)))
	_, _ = d.Write(buf[:])

	if attached != nil {
		_, _ = d.WriteString(fmt.Sprintf("%#v", attached))
	}
	return d.Sum64()
}

// requestHandler is a deduplicated, cancellable unit of load work shared
// by every consumer whose request parameters match. Reference counting
// and scheduling flags are guarded by the manager's lock; the start and
// cancel handoff with the worker queue is guarded by the handler's own
// mutex, since start and cancel are mutually exclusive per handler.
type requestHandler struct {
	mgr    *Manager
	ctx    context.Context
	key    assetengine.AssetKey
	url    string
	loader assetengine.Loader

	outputType      assetengine.OutputType
	preferredWidth  int
	preferredHeight int
	attachedData    any
	signature       uint64
	payload         *assetengine.PayloadCache

	// Guarded by the manager's lock.
	consumers       int
	scheduledLoad   bool
	scheduledCancel bool
	lastLoaded      assetengine.LoadedAsset
	lastErr         error
	hasResult       bool

	mu        sync.Mutex
	started   bool
	cancelled bool
	cancelFn  assetengine.CancelFunc
}

func newRequestHandler(
	mgr *Manager,
	ctx context.Context,
	key assetengine.AssetKey,
	payload *assetengine.PayloadCache,
	url string,
	outputType assetengine.OutputType,
	preferredWidth, preferredHeight int,
	attachedData any,
	loader assetengine.Loader,
) *requestHandler {
	return &requestHandler{
		mgr:             mgr,
		ctx:             ctx,
		key:             key,
		url:             url,
		loader:          loader,
		outputType:      outputType,
		preferredWidth:  preferredWidth,
		preferredHeight: preferredHeight,
		attachedData:    attachedData,
		signature:       requestSignature(outputType, preferredWidth, preferredHeight, attachedData),
		payload:         payload,
	}
}

// matchesRequest confirms the consumer's request parameters against the
// handler's own. The signature is a hash, and %#v renders some distinct
// values identically (int(1) and int32(1) both print as 1), so a hash
// match alone is not proof of interchangeability.
func (h *requestHandler) matchesRequest(c *assetConsumer) bool {
	return h.outputType == c.outputType &&
		h.preferredWidth == c.preferredWidth &&
		h.preferredHeight == c.preferredHeight &&
		reflect.DeepEqual(h.attachedData, c.attachedData)
}

// startLoadIfNeeded issues the load exactly once. Runs on the worker
// queue, never under the manager's lock.
func (h *requestHandler) startLoadIfNeeded() {
	h.mu.Lock()
	if h.started {
		h.mu.Unlock()
		return
	}
	h.started = true
	h.mu.Unlock()

	cancel := h.loader.Load(assetengine.LoadRequest{
		Context:         h.ctx,
		Key:             h.key,
		URL:             h.url,
		PreferredWidth:  h.preferredWidth,
		PreferredHeight: h.preferredHeight,
		AttachedData:    h.attachedData,
		PayloadCache:    h.payload,
	}, func(loaded assetengine.LoadedAsset, err error) {
		h.mgr.onLoad(h, loaded, err)
	})

	h.mu.Lock()
	h.cancelFn = cancel
	// A cancel that raced ahead of the start must still take effect.
	invoke := h.cancelled && cancel != nil
	if invoke {
		h.cancelFn = nil
	}
	h.mu.Unlock()

	if invoke {
		cancel()
	}
}

// cancel aborts the in-flight load, if the loader supports it. Runs on
// the worker queue, never under the manager's lock.
func (h *requestHandler) cancel() {
	h.mu.Lock()
	h.cancelled = true
	fn := h.cancelFn
	h.cancelFn = nil
	h.mu.Unlock()

	if fn != nil {
		fn()
	}
}
