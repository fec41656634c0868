// Package ner provides a detect.Classifier that calls a named-entity
// recognition sidecar over HTTP. Person entities become personal-name hits
// and organizations become organization-name hits; other labels are ignored.
//
// If the sidecar is unreachable or misbehaves, the client logs a warning and
// returns no hits so the pattern detectors still run.
package ner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/dshills/scrub/internal/detect"
)

// Client calls the sidecar's /classify endpoint.
type Client struct {
	url     string
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// Options configures a Client.
type Options struct {
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
	Logger        *slog.Logger
}

// New creates a Client pointing at the given base URL
// (e.g. "http://localhost:8001").
func New(baseURL string, opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	burst := max(opts.Burst, 1)
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		url:     strings.TrimRight(baseURL, "/") + "/classify",
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
	}
}

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	Spans []nerSpan `json:"spans"`
}

// nerSpan offsets count runes, not bytes.
type nerSpan struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Label string `json:"label"`
}

func kindFor(label string) (detect.Kind, bool) {
	switch strings.ToUpper(label) {
	case "PER", "PERSON":
		return detect.PersonalName, true
	case "ORG", "ORGANIZATION":
		return detect.OrganizationName, true
	}
	return detect.Kind{}, false
}

// Classify implements detect.Classifier. It is safe for concurrent use.
func (c *Client) Classify(ctx context.Context, text string) ([]detect.Hit, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	body, err := json.Marshal(classifyRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("ner: marshal: %w", err)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ner: request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Warn("ner: sidecar unreachable, skipping entity detection", "err", err)
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("ner: unexpected status", "code", resp.StatusCode)
		return nil, nil
	}

	var result classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("ner: decode: %w", err)
	}

	offsets := runeOffsets(text)
	n := len(offsets) - 1
	hits := make([]detect.Hit, 0, len(result.Spans))
	for _, s := range result.Spans {
		kind, ok := kindFor(s.Label)
		if !ok || s.Start < 0 || s.End > n || s.Start >= s.End {
			continue
		}
		hits = append(hits, detect.Hit{
			Span: detect.Span{Start: offsets[s.Start], End: offsets[s.End]},
			Kind: kind,
		})
	}
	return hits, nil
}

// runeOffsets maps rune index i to its byte offset; the final element is
// len(text).
func runeOffsets(text string) []int {
	out := make([]int, 0, utf8.RuneCountInString(text)+1)
	for i := range text {
		out = append(out, i)
	}
	return append(out, len(text))
}
