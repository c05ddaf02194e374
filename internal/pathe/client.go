package pathe

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/PuerkitoBio/goquery"
)

// Fetcher is the HTTP collaborator; retries/timeouts live behind it.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

var detailURLRe = regexp.MustCompile(`^https?://www\.pathe\.nl/film/(\d+)/(.*)$`)

// Client fetches and parses the Pathé site.
type Client struct {
	baseURL string
	fetcher Fetcher
}

func NewClient(baseURL string, f Fetcher) *Client {
	return &Client{baseURL: baseURL, fetcher: f}
}

func (c *Client) BaseURL() string { return c.baseURL }

// ListingURL builds the URL of one listing page.
func (c *Client) ListingURL(page int) string {
	if page <= 1 {
		return c.baseURL + "/films"
	}
	return c.baseURL + "/films?page=" + strconv.Itoa(page)
}

// FetchDocument GETs a page and parses it into a document.
func (c *Client) FetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := c.fetcher.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return doc, nil
}

// ParseDetailURL splits a detail-page URL into the site's movie id and the
// URL slug.
func ParseDetailURL(detailURL string) (int, string, error) {
	m := detailURLRe.FindStringSubmatch(detailURL)
	if m == nil {
		return 0, "", parseErrorf("detail URL", detailURL)
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", parseErrorf("detail URL id", m[1])
	}
	return id, m[2], nil
}
