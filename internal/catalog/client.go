// Package catalog implements a client for the public book catalog API.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultBaseURL is the public books API root.
	DefaultBaseURL = "https://www.googleapis.com/books/v1"

	// searchMaxResults limits search responses to one screen of results.
	searchMaxResults = 12
)

// Config holds configuration for the catalog client.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client // Optional (tests)
	Logger     *slog.Logger
}

// Client queries the public book catalog.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

// New creates a new catalog client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  httpClient,
		logger:  cfg.Logger,
	}
}

// Search queries the catalog and shapes results for display.
// Volumes without authors or description get placeholder values.
func (c *Client) Search(ctx context.Context, query string) ([]Book, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("maxResults", fmt.Sprintf("%d", searchMaxResults))
	q.Set("printType", "books")
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}

	var result searchResponse
	if err := c.getJSON(ctx, "/volumes?"+q.Encode(), &result); err != nil {
		return nil, err
	}

	books := make([]Book, 0, len(result.Items))
	for _, item := range result.Items {
		books = append(books, shapeBook(item))
	}
	return books, nil
}

// GetVolume fetches a single volume by catalog identifier.
// A single attempt is made; callers fall back to minimal metadata on error.
func (c *Client) GetVolume(ctx context.Context, id string) (*Volume, error) {
	if id == "" {
		return nil, fmt.Errorf("volume id is required")
	}

	path := "/volumes/" + url.PathEscape(id)
	if c.apiKey != "" {
		path += "?key=" + url.QueryEscape(c.apiKey)
	}

	var vol Volume
	if err := c.getJSON(ctx, path, &vol); err != nil {
		return nil, err
	}
	return &vol, nil
}

func (c *Client) getJSON(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read catalog response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode catalog response: %w", err)
	}
	return nil
}

// shapeBook maps a catalog volume onto a display-ready search result.
func shapeBook(v Volume) Book {
	b := Book{
		ID:          v.ID,
		Title:       v.VolumeInfo.Title,
		Authors:     v.VolumeInfo.Authors,
		Description: v.VolumeInfo.Description,
		PreviewLink: v.VolumeInfo.PreviewLink,
	}
	if len(b.Authors) == 0 {
		b.Authors = []string{"Unknown Author"}
	}
	if b.Description == "" {
		b.Description = "No description available"
	}
	if v.VolumeInfo.ImageLinks != nil {
		b.ImageURL = v.VolumeInfo.ImageLinks.Thumbnail
	}
	return b
}
