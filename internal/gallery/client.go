// Package gallery is the HTTP client for the remote snippet gallery.
package gallery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"temper/internal/logging"
	"temper/internal/snippet"
)

// ErrNotFound is returned for slugs the gallery does not know.
var ErrNotFound = errors.New("snippet not found in gallery")

// Client talks to the gallery's JSON API.
type Client struct {
	base string
	http *http.Client
	log  *zap.Logger
}

// NewClient builds a client for the given base URL. logger may be nil.
func NewClient(base string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		base: base,
		http: &http.Client{Timeout: timeout},
		log:  logger,
	}
}

// Search queries the gallery. language may be empty to match all.
func (c *Client) Search(ctx context.Context, query, language string) ([]*snippet.Snippet, error) {
	q := url.Values{}
	q.Set("q", query)
	if language != "" {
		q.Set("language", language)
	}
	endpoint := fmt.Sprintf("%s/snippets?%s", c.base, q.Encode())

	var results []*snippet.Snippet
	if err := c.getJSON(ctx, endpoint, &results); err != nil {
		return nil, err
	}
	logging.Gallery("search %q returned %d result(s)", query, len(results))
	return results, nil
}

// Get fetches one snippet by slug.
func (c *Client) Get(ctx context.Context, slug string) (*snippet.Snippet, error) {
	endpoint := fmt.Sprintf("%s/snippets/%s", c.base, url.PathEscape(slug))
	var sn snippet.Snippet
	if err := c.getJSON(ctx, endpoint, &sn); err != nil {
		return nil, err
	}
	if err := sn.Validate(); err != nil {
		return nil, fmt.Errorf("gallery returned invalid snippet: %w", err)
	}
	return &sn, nil
}

// GetAll fetches several snippets concurrently. It fails on the first
// error; partial results are discarded.
func (c *Client) GetAll(ctx context.Context, slugs []string) ([]*snippet.Snippet, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	results := make([]*snippet.Snippet, len(slugs))
	for i, slug := range slugs {
		g.Go(func() error {
			sn, err := c.Get(ctx, slug)
			if err != nil {
				return fmt.Errorf("%s: %w", slug, err)
			}
			results[i] = sn
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("gallery request failed", zap.String("url", endpoint), zap.Error(err))
		logging.GalleryWarn("request failed: %v", err)
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		c.log.Warn("gallery returned error status",
			zap.String("url", endpoint), zap.Int("status", resp.StatusCode))
		return fmt.Errorf("gallery returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding gallery response: %w", err)
	}
	return nil
}
