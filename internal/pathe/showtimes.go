package pathe

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"cinescout/internal/domain"
)

const soldOutHref = "#modal-soldout"

var (
	popupHrefRe  = regexp.MustCompile(`^javascript:openPopup\('https://onlinetickets\.pathe\.nl/ticketweb\.php\?.*&ShowID=(\d+)&.*'\)$`)
	directHrefRe = regexp.MustCompile(`^/tickets/start/(\d+)$`)
	showTimeRe   = regexp.MustCompile(`^(\d{2}:\d{2})(.*)$`)
)

// ShowtimeID extracts the numeric show id from a booking href. Both the
// JS-popup form (ShowID query parameter) and the direct /tickets/start/<id>
// form occur on the site; they normalize to the same integer.
func ShowtimeID(href string) (int, error) {
	m := popupHrefRe.FindStringSubmatch(href)
	if m == nil {
		m = directHrefRe.FindStringSubmatch(href)
	}
	if m == nil {
		return 0, parseErrorf("showtime href", href)
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, parseErrorf("showtime id", m[1])
	}
	return id, nil
}

// ParseShowtimes walks one cinema's schedule table. Rows are classified by
// cell count: a single th and no td is a day header, rows with td cells are
// showtime cells under the most recent header. Sold-out entries and cells
// that fail to parse are dropped; a bad day header drops its whole block.
func ParseShowtimes(doc *goquery.Document, cinema string, today time.Time, logger *zap.Logger) []domain.Showtime {
	var showtimes []domain.Showtime

	var (
		day      time.Time
		dayValid bool
	)
	doc.Find("table#Schedule_" + cinema + " tr").Each(func(_ int, row *goquery.Selection) {
		ths := row.Find("th")
		tds := row.Find("td")

		if tds.Length() == 0 {
			if ths.Length() != 1 {
				return
			}
			label := strings.TrimSpace(ths.First().Text())
			d, err := NormalizeDayLabel(label, today)
			if err != nil {
				logger.Warn("skipping schedule day with unrecognized label",
					zap.String("cinema", cinema), zap.String("label", label), zap.Error(err))
				dayValid = false
				return
			}
			day, dayValid = d, true
			return
		}
		if !dayValid {
			return
		}

		row.Find("td a").Each(func(_ int, a *goquery.Selection) {
			if st, ok := parseShowtimeCell(a, cinema, day, logger); ok {
				showtimes = append(showtimes, st)
			}
		})
	})
	return showtimes
}

func parseShowtimeCell(a *goquery.Selection, cinema string, day time.Time, logger *zap.Logger) (domain.Showtime, bool) {
	href, _ := a.Attr("href")
	if href == soldOutHref {
		return domain.Showtime{}, false
	}
	id, err := ShowtimeID(href)
	if err != nil {
		logger.Warn("skipping showtime with unrecognized href",
			zap.String("cinema", cinema), zap.String("href", href), zap.Error(err))
		return domain.Showtime{}, false
	}

	var items []string
	a.Find("span").Each(func(_ int, span *goquery.Selection) {
		items = append(items, squash(span.Text()))
	})
	if len(items) == 0 {
		logger.Warn("skipping showtime without a time label",
			zap.String("cinema", cinema), zap.Int("id", id))
		return domain.Showtime{}, false
	}

	// The site writes no token for plain 2D; anything that isn't a known
	// technology ("Nacht22op23mei", "Grotezaal", ...) is extra info we
	// note and replace with the default.
	technology := domain.DefaultTechnology
	if len(items) > 1 {
		if domain.IsTechnology(items[1]) {
			technology = items[1]
		} else {
			logger.Info("showtime annotation is not a technology, assuming 2D",
				zap.String("cinema", cinema), zap.Int("id", id), zap.String("annotation", items[1]))
		}
	}

	m := showTimeRe.FindStringSubmatch(items[0])
	if m == nil {
		logger.Warn("skipping showtime with unrecognized time",
			zap.String("cinema", cinema), zap.Int("id", id), zap.String("time", items[0]))
		return domain.Showtime{}, false
	}
	if m[2] != "" {
		// Advisory only, never fatal.
		logger.Info("showtime carries a trailing note",
			zap.String("cinema", cinema), zap.Int("id", id), zap.String("note", m[2]))
	}
	hour, _ := strconv.Atoi(m[1][:2])
	minute, _ := strconv.Atoi(m[1][3:])

	return domain.Showtime{
		ID:         id,
		StartsAt:   ToUTC(day, hour, minute),
		Technology: technology,
	}, true
}

// ParseAllShowtimes collects showtimes for every cinema table on the page.
func ParseAllShowtimes(doc *goquery.Document, today time.Time, logger *zap.Logger) map[string][]domain.Showtime {
	out := make(map[string][]domain.Showtime)
	for _, cinema := range ExtractCinemas(doc) {
		if sts := ParseShowtimes(doc, cinema, today, logger); len(sts) > 0 {
			out[cinema] = sts
		}
	}
	return out
}
