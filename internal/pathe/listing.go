package pathe

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"cinescout/internal/domain"
)

// Availability labels that make a listing entry worth a detail fetch.
var allowedStatuses = map[string]struct{}{
	"nu te zien": {},
	"verwacht":   {},
}

// Slugs of listing entries that are known data anomalies (placeholder
// entries without a real movie behind them). Filtered before the detail
// queue, not at extraction time.
var excludedSlugs = map[string]struct{}{
	"sneak-preview": {},
	"filmmarathon":  {},
}

// PageCount reads the number of listing pages from the pagination control.
// The control renders « prev, the page numbers, next »; the second-to-last
// label is the last page number. A page without the control is a
// single-page listing.
func PageCount(doc *goquery.Document) (int, error) {
	var labels []string
	doc.Find("ul.pagination li a").Each(func(_ int, s *goquery.Selection) {
		labels = append(labels, strings.TrimSpace(s.Text()))
	})
	if len(labels) < 2 {
		return 1, nil
	}
	last := labels[len(labels)-2]
	n, err := strconv.Atoi(last)
	if err != nil || n < 1 {
		return 0, parseErrorf("pagination label", last)
	}
	return n, nil
}

// ParseCandidates scans a listing page for movie entries: the poster
// carousel anchors plus the availability label rendered with each poster.
func ParseCandidates(doc *goquery.Document, baseURL string) []domain.MovieCandidate {
	var candidates []domain.MovieCandidate
	doc.Find("section.poster-carousel div.poster").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Find("a").First().Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		candidates = append(candidates, domain.MovieCandidate{
			URL:    absoluteURL(baseURL, strings.TrimSpace(href)),
			Status: strings.TrimSpace(s.Find("span.poster-status").First().Text()),
		})
	})
	return candidates
}

// StatusAllowed reports whether an availability label passes the
// allow-list ("Nu te zien" / "Verwacht").
func StatusAllowed(status string) bool {
	_, ok := allowedStatuses[strings.ToLower(strings.TrimSpace(status))]
	return ok
}

// Excluded reports whether a detail URL is on the static deny-list.
func Excluded(detailURL string) bool {
	_, slug, err := ParseDetailURL(detailURL)
	if err != nil {
		return false
	}
	_, ok := excludedSlugs[slug]
	return ok
}

func absoluteURL(base, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return strings.TrimRight(base, "/") + href
}
