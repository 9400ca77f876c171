// Package zanata talks to a Zanata translation server: statistics and
// translated catalogs over REST, uploads through zanata-cli.
package zanata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// Defaults for the Fedora instance.
const (
	DefaultURL      = "https://fedora.zanata.org"
	DefaultProject  = "fedora-modularity-translations"
	DefaultDocument = "fedora-modularity-translations"
)

// ErrNotFound is returned when the project or version does not exist.
var ErrNotFound = errors.New("project or version does not exist")

// StatusError is an unexpected HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.URL, e.StatusCode, truncate(e.Body, 200))
}

// Client is a Zanata REST client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      *Credentials
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithCredentials authenticates requests with an API key.
func WithCredentials(creds *Credentials) Option {
	return func(c *Client) { c.creds = creds }
}

// NewClient returns a client for the server at serverURL. The REST root is
// serverURL + "/rest".
func NewClient(serverURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LocaleStats is the message statistics of one locale.
type LocaleStats struct {
	Locale       string `json:"locale"`
	Unit         string `json:"unit"`
	Total        int    `json:"total"`
	Translated   int    `json:"translated"`
	Untranslated int    `json:"untranslated"`
	NeedReview   int    `json:"needReview"`
}

type statsResponse struct {
	Stats []LocaleStats `json:"stats"`
}

// Stats returns per-locale statistics of a project version, sorted by
// locale.
func (c *Client) Stats(ctx context.Context, project, version string) ([]LocaleStats, error) {
	u := fmt.Sprintf("%s/rest/stats/proj/%s/iter/%s", c.baseURL, url.PathEscape(project), url.PathEscape(version))
	body, err := c.get(ctx, u, "application/json")
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%s:%s: %w", project, version, ErrNotFound)
		}
		return nil, err
	}

	var resp statsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing statistics: %w", err)
	}

	stats := make([]LocaleStats, 0, len(resp.Stats))
	for _, s := range resp.Stats {
		if s.Unit != "" && !strings.EqualFold(s.Unit, "MESSAGE") {
			continue
		}
		stats = append(stats, s)
	}
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Locale < stats[j].Locale })
	return stats, nil
}

// Locales returns the locales with at least one translated message.
func (c *Client) Locales(ctx context.Context, project, version string) ([]string, error) {
	stats, err := c.Stats(ctx, project, version)
	if err != nil {
		return nil, err
	}
	var locales []string
	for _, s := range stats {
		if s.Translated > 0 {
			locales = append(locales, s.Locale)
		}
	}
	return locales, nil
}

// Catalog downloads the translated PO file of document for locale.
func (c *Client) Catalog(ctx context.Context, project, version, locale, document string) ([]byte, error) {
	u := fmt.Sprintf("%s/rest/file/translation/%s/%s/%s/po?docId=%s",
		c.baseURL, url.PathEscape(project), url.PathEscape(version), url.PathEscape(locale), url.QueryEscape(document))
	return c.get(ctx, u, "application/octet-stream")
}

func (c *Client) get(ctx context.Context, u, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", accept)
	if c.creds != nil && c.creds.Username != "" {
		req.Header.Set("X-Auth-User", c.creds.Username)
		req.Header.Set("X-Auth-Token", c.creds.Key)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", u, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", u, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: u, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
