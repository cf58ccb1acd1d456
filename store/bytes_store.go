package store

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	assetengine "github.com/wippyai/asset-engine"
	"github.com/wippyai/asset-engine/errors"
)

// URLScheme is the synthetic scheme under which registered bytes are
// addressable.
const URLScheme = "asset-bytes"

const urlPrefix = URLScheme + "://"

// IsAssetBytesURL reports whether url was generated by a BytesStore.
func IsAssetBytesURL(url string) bool {
	return strings.HasPrefix(url, urlPrefix)
}

// BytesStore holds in-memory asset payloads behind generated URLs. It
// implements assetengine.Downloader for its scheme, which lets any
// byte-oriented loader serve registered payloads.
type BytesStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
	closed  bool
}

func NewBytesStore() *BytesStore {
	return &BytesStore{entries: make(map[string][]byte)}
}

// RegisterAssetBytes stores a payload and returns its generated URL.
// Returns "" after Close.
func (s *BytesStore) RegisterAssetBytes(bytes []byte) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ""
	}

	url := urlPrefix + uuid.NewString()
	s.entries[url] = bytes
	return url
}

// UnregisterAssetBytes drops the payload behind url, if any.
func (s *BytesStore) UnregisterAssetBytes(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, url)
}

// Get retrieves a registered payload.
func (s *BytesStore) Get(url string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.entries[url]
	return b, ok
}

// Download implements assetengine.Downloader. The completion fires
// inline; registered payloads need no I/O.
func (s *BytesStore) Download(url string, done func([]byte, error)) assetengine.CancelFunc {
	b, ok := s.Get(url)
	if !ok {
		done(nil, errors.NotFound(errors.PhaseStore, url, "no bytes registered for URL"))
		return nil
	}
	done(b, nil)
	return nil
}

// Len returns the number of registered payloads.
func (s *BytesStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close drops all payloads and stops accepting registrations.
func (s *BytesStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.entries = nil
	return nil
}
