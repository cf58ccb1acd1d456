package remotemodule

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	assetengine "github.com/wippyai/asset-engine"
	"github.com/wippyai/asset-engine/errors"
)

// manifestFileName is fetched from <baseURL>/<bundle>/ to discover the
// module's resources.
const manifestFileName = "manifest.yaml"

type manifest struct {
	Resources map[string]string `yaml:"resources"`
}

// HTTPProvider fetches remote-module manifests over HTTP with exponential
// backoff, and memoizes successful results per bundle.
type HTTPProvider struct {
	baseURL    string
	client     *http.Client
	maxRetries uint64
	logger     *zap.Logger

	mu    sync.Mutex
	cache map[string]*Resources
}

type HTTPOption func(*HTTPProvider)

func WithClient(c *http.Client) HTTPOption {
	return func(p *HTTPProvider) { p.client = c }
}

func WithMaxRetries(n uint64) HTTPOption {
	return func(p *HTTPProvider) { p.maxRetries = n }
}

func WithLogger(l *zap.Logger) HTTPOption {
	return func(p *HTTPProvider) { p.logger = l }
}

func NewHTTPProvider(baseURL string, opts ...HTTPOption) *HTTPProvider {
	p := &HTTPProvider{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		client:     &http.Client{Timeout: 30 * time.Second},
		maxRetries: 3,
		logger:     zap.NewNop(),
		cache:      make(map[string]*Resources),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// LoadResources implements assetengine.RemoteModuleProvider. The fetch
// runs on its own goroutine; the callback may fire from it.
func (p *HTTPProvider) LoadResources(bundleName string, done func(assetengine.RemoteModuleResources, error)) {
	p.mu.Lock()
	if res, ok := p.cache[bundleName]; ok {
		p.mu.Unlock()
		done(res, nil)
		return
	}
	p.mu.Unlock()

	go func() {
		res, err := p.fetch(bundleName)
		if err != nil {
			p.logger.Warn("remote module fetch failed",
				zap.String("bundle", bundleName),
				zap.Error(err))
			done(nil, err)
			return
		}

		p.mu.Lock()
		p.cache[bundleName] = res
		p.mu.Unlock()
		done(res, nil)
	}()
}

// Invalidate drops the memoized resources for a bundle so the next load
// refetches the manifest.
func (p *HTTPProvider) Invalidate(bundleName string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.cache, bundleName)
}

func (p *HTTPProvider) fetch(bundleName string) (*Resources, error) {
	url := p.baseURL + "/" + bundleName + "/" + manifestFileName

	var body []byte
	operation := func() error {
		resp, err := p.client.Get(url)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("unexpected status %d", resp.StatusCode)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				// Client errors do not clear on retry.
				return backoff.Permanent(err)
			}
			return err
		}

		body, err = io.ReadAll(resp.Body)
		return err
	}

	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), p.maxRetries)
	if err := backoff.Retry(operation, bo); err != nil {
		return nil, errors.Retryable(errors.PhaseFetch, bundleName, err)
	}

	var m manifest
	if err := yaml.Unmarshal(body, &m); err != nil {
		return nil, errors.Retryable(errors.PhaseFetch, bundleName,
			errors.Wrap(errors.PhaseFetch, errors.KindInvalidInput, err, "parse manifest"))
	}

	return NewResources(m.Resources), nil
}
