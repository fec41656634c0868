package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"golang.org/x/time/rate"

	"github.com/dshills/scrub/internal/cache"
	"github.com/dshills/scrub/internal/region"
)

const maxResponseBytes = 8 << 20

// ClientOptions configures a Client. Zero values take defaults; a negative
// MaxRetries disables retries.
type ClientOptions struct {
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
	MaxRetries    int
	Cache         *cache.Cache
	HTTPClient    *http.Client
	Logger        *slog.Logger
}

// Client posts PNG-encoded images to a recognizer endpoint and decodes the
// returned Document. It is safe for concurrent use.
type Client struct {
	url     string
	http    *http.Client
	limiter *rate.Limiter
	retries int
	backoff time.Duration
	cache   *cache.Cache
	logger  *slog.Logger

	mu      sync.Mutex
	pending map[string]*Document // keyed by image path
}

// NewClient creates a Client for the recognizer at url.
func NewClient(url string, opts ClientOptions) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}
	retries := opts.MaxRetries
	if retries < 0 {
		retries = 0
	} else if retries == 0 {
		retries = 2
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		url:     url,
		http:    hc,
		limiter: rate.NewLimiter(limit, burst),
		retries: retries,
		backoff: 500 * time.Millisecond,
		cache:   opts.Cache,
		logger:  logger,
		pending: make(map[string]*Document),
	}
}

// Recognize implements pipeline.Recognizer.
func (c *Client) Recognize(ctx context.Context, path string, img image.Image) ([]region.Line, error) {
	doc, err := c.document(ctx, img)
	if err != nil {
		return nil, err
	}
	if len(doc.Regions) > 0 {
		c.mu.Lock()
		c.pending[path] = doc
		c.mu.Unlock()
		// Runs that end before asking for the regions must not leave them behind.
		context.AfterFunc(ctx, func() { c.forget(path, doc) })
	}
	b := img.Bounds()
	return doc.PixelLines(b.Dx(), b.Dy()), nil
}

// Regions implements pipeline.RegionSource, returning the non-text regions
// from the most recent recognition of path. Each result is handed out once.
func (c *Client) Regions(ctx context.Context, path string, img image.Image) ([]region.Rect, error) {
	c.mu.Lock()
	doc, ok := c.pending[path]
	delete(c.pending, path)
	c.mu.Unlock()
	if !ok {
		return nil, nil
	}
	b := img.Bounds()
	return doc.PixelRegions(b.Dx(), b.Dy()), nil
}

func (c *Client) forget(path string, doc *Document) {
	c.mu.Lock()
	if c.pending[path] == doc {
		delete(c.pending, path)
	}
	c.mu.Unlock()
}

func (c *Client) document(ctx context.Context, img image.Image) (*Document, error) {
	data, err := encodePNG(img)
	if err != nil {
		return nil, err
	}
	key := cache.ImageKey(c.url, data)

	if c.cache != nil {
		if payload, ok := c.cache.Get(key); ok {
			doc, err := Decode(payload)
			if err == nil {
				c.logger.Debug("ocr: cache hit", "key", key[:12])
				return doc, nil
			}
			c.logger.Warn("ocr: discarding unreadable cache entry", "err", err)
		}
	}

	var payload []byte
	err = retryWithBackoff(ctx, c.retries, c.backoff, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		var err error
		payload, err = c.post(ctx, data)
		return err
	})
	if err != nil {
		return nil, err
	}
	doc, err := Decode(payload)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		if err := c.cache.Put(key, payload); err != nil {
			c.logger.Warn("ocr: cache write failed", "err", err)
		}
	}
	return doc, nil
}

func (c *Client) post(ctx context.Context, data []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("ocr: request: %w", err)
	}
	req.Header.Set("Content-Type", "image/png")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ocr: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slurp, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return nil, &statusError{code: resp.StatusCode, body: string(bytes.TrimSpace(slurp))}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("ocr: reading response: %w", err)
	}
	return body, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("ocr: encoding image: %w", err)
	}
	return buf.Bytes(), nil
}
