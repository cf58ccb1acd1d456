package loaders

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	assetengine "github.com/wippyai/asset-engine"
	"github.com/wippyai/asset-engine/errors"
)

// HTTPDownloader fetches asset bytes over http(s).
type HTTPDownloader struct {
	client *http.Client
}

func NewHTTPDownloader(client *http.Client) *HTTPDownloader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPDownloader{client: client}
}

// Download fetches url on a new goroutine and invokes done with the body
// or an error. The returned CancelFunc aborts the request.
func (d *HTTPDownloader) Download(url string, done func([]byte, error)) assetengine.CancelFunc {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			done(nil, errors.Wrap(errors.PhaseFetch, errors.KindInvalidInput, err, "build request"))
			return
		}

		resp, err := d.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				done(nil, errors.Cancelled(errors.PhaseFetch, url))
				return
			}
			done(nil, errors.Retryable(errors.PhaseFetch, url, err))
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("unexpected status %d", resp.StatusCode)
			if resp.StatusCode >= 500 {
				done(nil, errors.Retryable(errors.PhaseFetch, url, err))
			} else {
				done(nil, errors.NotFound(errors.PhaseFetch, url, err.Error()))
			}
			return
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			done(nil, errors.Retryable(errors.PhaseFetch, url, err))
			return
		}
		done(body, nil)
	}()

	return assetengine.CancelFunc(cancel)
}
