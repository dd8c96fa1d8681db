// Package fetch loads raw job records from a JSON file or the JSearch search API.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/jobmarket/internal/parsing"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; JobMarket/1.0)"

// JSearch defaults.
const (
	DefaultJSearchHost    = "jsearch.p.rapidapi.com"
	DefaultJSearchBaseURL = "https://" + DefaultJSearchHost
)

// maxResponseBytes bounds how much of a search response is read.
const maxResponseBytes = 32 << 20

// Error represents an error while fetching records.
type Error struct {
	URL        string
	Message    string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the JSearch client.
type Options struct {
	APIKey    string
	Host      string
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// DefaultOptions returns sensible defaults for the JSearch API.
func DefaultOptions() *Options {
	return &Options{
		Host:      DefaultJSearchHost,
		BaseURL:   DefaultJSearchBaseURL,
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// SearchQuery selects the postings a search returns.
type SearchQuery struct {
	Query    string
	Country  string
	NumPages int
}

// searchResponse is the envelope of a JSearch response.
type searchResponse struct {
	Status string              `json:"status,omitempty"`
	Data   []parsing.RawRecord `json:"data"`
}

// JSearchClient queries the JSearch job search API.
type JSearchClient struct {
	opts   Options
	client *http.Client
}

// NewJSearchClient creates a client. A missing API key is a configuration error.
func NewJSearchClient(opts *Options) (*JSearchClient, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	o := *opts
	if strings.TrimSpace(o.APIKey) == "" {
		return nil, fmt.Errorf("JSearch API key is required")
	}
	defaults := DefaultOptions()
	if o.Host == "" {
		o.Host = defaults.Host
	}
	if o.BaseURL == "" {
		o.BaseURL = defaults.BaseURL
	}
	if o.Timeout <= 0 {
		o.Timeout = defaults.Timeout
	}
	if o.UserAgent == "" {
		o.UserAgent = defaults.UserAgent
	}

	return &JSearchClient{
		opts:   o,
		client: &http.Client{Timeout: o.Timeout},
	}, nil
}

// Search runs one query and returns the raw records of the response.
func (c *JSearchClient) Search(ctx context.Context, q SearchQuery) ([]parsing.RawRecord, error) {
	endpoint, err := c.searchURL(q)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &Error{
			URL:     endpoint,
			Message: "failed to create request",
			Cause:   err,
		}
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-RapidAPI-Key", c.opts.APIKey)
	req.Header.Set("X-RapidAPI-Host", c.opts.Host)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &Error{
			URL:     endpoint,
			Message: "HTTP request failed",
			Cause:   err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &Error{
			URL:        endpoint,
			Message:    "failed to read response body",
			StatusCode: resp.StatusCode,
			Cause:      err,
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{
			URL:        endpoint,
			Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	records, err := ParseRecords("JSearch response", body)
	if err != nil {
		return nil, &Error{
			URL:        endpoint,
			Message:    "invalid response",
			StatusCode: resp.StatusCode,
			Cause:      err,
		}
	}
	return records, nil
}

func (c *JSearchClient) searchURL(q SearchQuery) (string, error) {
	if strings.TrimSpace(q.Query) == "" {
		return "", fmt.Errorf("search query cannot be empty")
	}

	base, err := url.Parse(strings.TrimRight(c.opts.BaseURL, "/") + "/search")
	if err != nil || base.Scheme == "" || base.Host == "" {
		return "", &Error{
			URL:     c.opts.BaseURL,
			Message: "invalid URL",
			Cause:   err,
		}
	}

	params := url.Values{}
	params.Set("query", q.Query)
	pages := q.NumPages
	if pages < 1 {
		pages = 1
	}
	params.Set("num_pages", strconv.Itoa(pages))
	if q.Country != "" {
		params.Set("country", strings.ToLower(q.Country))
	}
	base.RawQuery = params.Encode()
	return base.String(), nil
}
