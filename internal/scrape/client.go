// Package scrape retrieves page content for discovery and extraction.
//
// The primary path is the hosted content-fetch service (rendered markdown,
// link lists, and a cheap site-map call). When it fails or returns nothing,
// FetchFallback does a plain GET and strips the HTML locally.
package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"
)

const (
	httpTimeout = 30 * time.Second

	// MaxContentChars is the character budget applied to page content before
	// it is handed to the extraction prompt, regardless of fetch path.
	MaxContentChars = 12000
)

// Client calls the content-fetch service.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient constructs a Client with a shared HTTP client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: httpTimeout},
	}
}

// ScrapeResult holds the rendered content of a single page.
type ScrapeResult struct {
	Markdown string
	Links    []string
}

type scrapeRequest struct {
	URL             string   `json:"url"`
	Formats         []string `json:"formats"`
	OnlyMainContent bool     `json:"onlyMainContent"`
	WaitFor         int      `json:"waitFor,omitempty"`
}

type scrapeResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Markdown string   `json:"markdown"`
		Links    []string `json:"links"`
	} `json:"data"`
	Error string `json:"error,omitempty"`
}

// Scrape fetches a rendered page. formats selects the outputs ("markdown",
// "links"); waitMs allows client-side content to load before capture.
func (c *Client) Scrape(ctx context.Context, pageURL string, formats []string, onlyMainContent bool, waitMs int) (*ScrapeResult, error) {
	body := scrapeRequest{
		URL:             pageURL,
		Formats:         formats,
		OnlyMainContent: onlyMainContent,
		WaitFor:         waitMs,
	}

	var resp scrapeResponse
	if err := c.post(ctx, "/scrape", body, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("scrape failed: %s", resp.Error)
	}

	return &ScrapeResult{Markdown: resp.Data.Markdown, Links: resp.Data.Links}, nil
}

type mapRequest struct {
	URL               string `json:"url"`
	Limit             int    `json:"limit"`
	IncludeSubdomains bool   `json:"includeSubdomains"`
}

type mapResponse struct {
	Success bool     `json:"success"`
	Links   []string `json:"links"`
	Error   string   `json:"error,omitempty"`
}

// Map asks the service for up to limit URLs linked from pageURL. Cheaper
// than a full rendered scrape; used as the primary discovery path.
func (c *Client) Map(ctx context.Context, pageURL string, limit int) ([]string, error) {
	body := mapRequest{URL: pageURL, Limit: limit, IncludeSubdomains: true}

	var resp mapResponse
	if err := c.post(ctx, "/map", body, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("map failed: %s", resp.Error)
	}

	return resp.Links, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("content-fetch service returned %d: %s", resp.StatusCode, string(raw))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("json unmarshal: %w", err)
	}
	return nil
}

// Truncate enforces the shared character budget on page content, backing the
// cut off to a rune boundary so multibyte text (Hebrew board content in
// particular) is never split mid-character.
func Truncate(s string) string {
	if len(s) <= MaxContentChars {
		return s
	}
	cut := MaxContentChars
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
