package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/docviz/docviz/pkg/cache"
	"github.com/docviz/docviz/pkg/errors"
)

// DefaultTimeout bounds a single fetch of an external graph document.
const DefaultTimeout = 10 * time.Second

// maxBodySize caps external graph downloads (16 MiB). Anything larger is
// almost certainly not a graph export.
const maxBodySize = 16 << 20

// Client fetches URLs with retry and response caching.
type Client struct {
	http  *http.Client
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// NewClient creates a fetching client. A nil store disables caching and a
// nil keyer selects the default keyer.
func NewClient(store cache.Cache, keyer cache.Keyer, ttl time.Duration) *Client {
	if store == nil {
		store = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Client{
		http:  &http.Client{Timeout: DefaultTimeout},
		cache: store,
		keyer: keyer,
		ttl:   ttl,
	}
}

// Get fetches a URL, returning the response body. Responses are cached
// under the given namespace; transient failures (network errors and 5xx
// responses) are retried with exponential backoff.
func (c *Client) Get(ctx context.Context, namespace, url string) ([]byte, error) {
	key := c.keyer.HTTPKey(namespace, url)
	if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
		return data, nil
	}

	var body []byte
	err := RetryWithBackoff(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "build request for %s", url)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", url))
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode >= 500:
			return Retryable(errors.New(errors.ErrCodeNetwork, "fetch %s: HTTP %d", url, resp.StatusCode))
		case resp.StatusCode == http.StatusNotFound:
			return errors.New(errors.ErrCodeNotFound, "fetch %s: HTTP 404", url)
		case resp.StatusCode != http.StatusOK:
			return errors.New(errors.ErrCodeNetwork, "fetch %s: HTTP %d", url, resp.StatusCode)
		}

		body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "read %s", url))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, body, c.ttl); err != nil {
		// Cache write failures degrade to uncached fetches.
		return body, nil
	}
	return body, nil
}

// String implements fmt.Stringer for debug logging.
func (c *Client) String() string {
	return fmt.Sprintf("httputil.Client{timeout: %s, ttl: %s}", c.http.Timeout, c.ttl)
}
