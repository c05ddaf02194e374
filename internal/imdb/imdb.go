// Package imdb resolves a movie title to its IMDB rating by scraping the
// public search and title pages.
package imdb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"cinescout/internal/domain"
)

// ErrNotFound means the search returned no feature-title results. It is a
// recoverable outcome, not a fault: the caller retries once with a
// translated title and then treats the movie as unrated.
var ErrNotFound = errors.New("imdb: title not found")

var titleHrefRe = regexp.MustCompile(`^/title/tt(\d+)`)

// Lookup says how to find the movie: by title (search first) or by a known
// IMDB id (skip search). Exactly one must be set.
type Lookup struct {
	title string
	id    int
	mode  lookupMode
}

type lookupMode int

const (
	lookupNone lookupMode = iota
	lookupByTitle
	lookupByID
)

func ByTitle(title string) Lookup { return Lookup{title: title, mode: lookupByTitle} }
func ByID(id int) Lookup          { return Lookup{id: id, mode: lookupByID} }

// Fetcher is the HTTP collaborator; retries/timeouts live behind it.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Translator is the fallback-title collaborator; it never fails.
type Translator interface {
	Translate(ctx context.Context, text string) string
}

// Client resolves titles against IMDB.
type Client struct {
	baseURL    string
	fetcher    Fetcher
	translator Translator
	logger     *zap.Logger
}

func NewClient(baseURL string, f Fetcher, tr Translator, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		fetcher:    f,
		translator: tr,
		logger:     logger,
	}
}

// TitleURL is the public page for an IMDB id; it is what ends up in the
// report.
func (c *Client) TitleURL(id int) string {
	return fmt.Sprintf("%s/title/tt%d", c.baseURL, id)
}

// Resolve finds the movie per the lookup and returns its rating. ByTitle
// searches, retrying exactly once with the translated title on a miss;
// ByID fetches the title page directly. A zero Lookup is a caller bug and
// fails outright.
func (c *Client) Resolve(ctx context.Context, lookup Lookup) (domain.ExternalRating, error) {
	var id int
	switch lookup.mode {
	case lookupByTitle:
		if lookup.title == "" {
			return domain.ExternalRating{}, errors.New("imdb: lookup title is empty")
		}
		var err error
		id, err = c.searchID(ctx, lookup.title)
		if errors.Is(err, ErrNotFound) {
			translated := c.translator.Translate(ctx, lookup.title)
			c.logger.Debug("title not found, retrying with translation",
				zap.String("title", lookup.title), zap.String("translated", translated))
			id, err = c.searchID(ctx, translated)
		}
		if err != nil {
			return domain.ExternalRating{}, err
		}
	case lookupByID:
		if lookup.id <= 0 {
			return domain.ExternalRating{}, errors.New("imdb: lookup id must be positive")
		}
		id = lookup.id
	default:
		return domain.ExternalRating{}, errors.New("imdb: lookup must set exactly one of title or id")
	}

	return c.fetchRating(ctx, id)
}

// searchID runs the feature-title search and deterministically takes the
// first result of the Titles section (first-match policy, no ranking).
func (c *Client) searchID(ctx context.Context, title string) (int, error) {
	q := url.Values{}
	q.Set("q", title)
	q.Set("s", "tt")
	q.Set("ttype", "ft")
	body, err := c.fetcher.Get(ctx, c.baseURL+"/find?"+q.Encode())
	if err != nil {
		return 0, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("imdb: parse search page: %w", err)
	}

	section := findTitlesSection(doc)
	if section == nil {
		return 0, ErrNotFound
	}
	href, ok := section.Find("table tr.findResult td.result_text a").First().Attr("href")
	if !ok {
		return 0, ErrNotFound
	}
	m := titleHrefRe.FindStringSubmatch(href)
	if m == nil {
		return 0, fmt.Errorf("imdb: unrecognized result link %q", href)
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("imdb: unrecognized result id %q", m[1])
	}
	return id, nil
}

// findTitlesSection locates the find-results section headed "Titles".
func findTitlesSection(doc *goquery.Document) *goquery.Selection {
	var section *goquery.Selection
	doc.Find("div.findSection").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		header := strings.TrimSpace(s.Find("h3.findSectionHeader").First().Text())
		if header != "Titles" {
			return true
		}
		section = s
		return false
	})
	return section
}

// fetchRating reads the rating element off the title page. A page without
// one is a valid title that simply has no rating yet.
func (c *Client) fetchRating(ctx context.Context, id int) (domain.ExternalRating, error) {
	body, err := c.fetcher.Get(ctx, c.TitleURL(id))
	if err != nil {
		return domain.ExternalRating{}, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return domain.ExternalRating{}, fmt.Errorf("imdb: parse title page: %w", err)
	}

	text := strings.TrimSpace(doc.Find("span[itemprop='ratingValue']").First().Text())
	if text == "" {
		return domain.ExternalRating{ID: id}, nil
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", "."), 64)
	if err != nil {
		return domain.ExternalRating{}, fmt.Errorf("imdb: unrecognized rating %q", text)
	}
	return domain.ExternalRating{ID: id, Rating: value, HasRating: true}, nil
}
