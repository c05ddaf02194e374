package pathe

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"cinescout/internal/domain"
)

// Translator is the best-effort text translation collaborator. It never
// fails: on any trouble it returns the input unchanged.
type Translator interface {
	Translate(ctx context.Context, text string) string
}

var (
	titleNoteRe   = regexp.MustCompile(`^(.*)\s(\(.*\))$`)
	releaseDateRe = regexp.MustCompile(`^(\d{1,2})\s([a-z]+)\s(\d{4})`)
	durationRe    = regexp.MustCompile(`^Duur:\s+(\d+)\s+minuten$`)
	restrictionRe = regexp.MustCompile(`^(?:/themes/main/gfx/icons/kijkwijzer/)?([a-zA-Z0-9-]+)\.png$`)
)

// sideValue finds the detail-sidebar list item labeled with the given span
// text ("Genre:", "Duur:", ...) and returns the item's full text. Empty
// string when the row is absent.
func sideValue(doc *goquery.Document, label string) string {
	var out string
	doc.Find("div.moviedetail-side ul li").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.TrimSpace(s.Find("span").First().Text()) != label {
			return true
		}
		out = s.Text()
		return false
	})
	return out
}

// squash removes all whitespace. Pathé pads sidebar values with newlines
// and indentation; the original scraper collapsed them the same way.
func squash(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// ExtractTitle returns the movie title, normalized for external search by
// stripping a single trailing parenthetical note (language/subtitle
// versions, festival tags). "Wo Hu Cang Long (Crouching Tiger, Hidden
// Dragon)" loses a legitimate title part this way; known limitation.
func ExtractTitle(doc *goquery.Document) string {
	title := strings.TrimSpace(doc.Find("h1[itemprop='name']").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("div.page-title div.page-cell h1").First().Text())
	}
	if m := titleNoteRe.FindStringSubmatch(title); m != nil {
		title = m[1]
	}
	return title
}

// ExtractSpecial returns the Pathé special status ("PathéOpera", ...),
// empty when the movie has none.
func ExtractSpecial(doc *goquery.Document) string {
	s := squash(sideValue(doc, "Special:"))
	if s == "" {
		return ""
	}
	if _, value, ok := strings.Cut(s, ":"); ok {
		return value
	}
	return ""
}

// ExtractReleaseDate parses the release date line ("25 december 2024").
func ExtractReleaseDate(doc *goquery.Document) (time.Time, error) {
	text := strings.TrimSpace(doc.Find("span.release-date em").First().Text())
	if text == "" {
		return time.Time{}, nil
	}
	m := releaseDateRe.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, parseErrorf("release date", text)
	}
	month := 0
	for i, name := range monthsFull {
		if name == m[2] {
			month = i + 1
			break
		}
	}
	if month == 0 {
		return time.Time{}, parseErrorf("release month", m[2])
	}
	day, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[3])
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

// ExtractGenres returns the genre list, translated to English.
func ExtractGenres(ctx context.Context, doc *goquery.Document, tr Translator) []string {
	s := squash(sideValue(doc, "Genre:"))
	if s == "" {
		return nil
	}
	_, value, ok := strings.Cut(s, ":")
	if !ok || value == "" {
		return nil
	}
	var genres []string
	for _, g := range strings.Split(value, ",") {
		genres = append(genres, tr.Translate(ctx, g))
	}
	return genres
}

// ExtractDuration returns the running time in minutes, 0 when the page
// carries none.
func ExtractDuration(doc *goquery.Document) int {
	text := strings.TrimSpace(sideValue(doc, "Duur:"))
	text = strings.Join(strings.Fields(text), " ")
	m := durationRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	minutes, _ := strconv.Atoi(m[1])
	return minutes
}

// ExtractLanguage returns the spoken-language line, translated to English.
func ExtractLanguage(ctx context.Context, doc *goquery.Document, tr Translator) string {
	text := strings.TrimSpace(sideValue(doc, "Taalversie:"))
	if text == "" {
		return ""
	}
	_, value, ok := strings.Cut(text, ": ")
	if !ok {
		return ""
	}
	return tr.Translate(ctx, strings.TrimSpace(value))
}

// ExtractRestrictions maps the Kijkwijzer icon paths onto restriction tags:
// "kijkwijzer-12.png" → "12", the unknown/not-applicable placeholders onto
// "unknown" / "n/a". An icon path outside the known naming conventions is a
// ParseError.
func ExtractRestrictions(doc *goquery.Document) ([]string, error) {
	var (
		restrictions []string
		badPath      string
	)
	sel := doc.Find("div.moviedetail-side ul li").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.TrimSpace(s.Find("span").First().Text()) == "Kijkwijzer:"
	})
	sel.Find("a img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src, ok := img.Attr("src")
		if !ok {
			return true
		}
		name, err := restrictionTag(src)
		if err != nil {
			badPath = src
			return false
		}
		restrictions = append(restrictions, name)
		return true
	})
	if badPath != "" {
		return nil, parseErrorf("restriction icon", badPath)
	}
	return restrictions, nil
}

func restrictionTag(src string) (string, error) {
	m := restrictionRe.FindStringSubmatch(src)
	if m == nil {
		return "", parseErrorf("restriction icon path", src)
	}
	switch name := m[1]; {
	case name == "rating-onbekend-z":
		return "unknown", nil
	case name == "rating-nvt-z":
		return "n/a", nil
	case strings.HasPrefix(name, "kijkwijzer-"):
		return strings.TrimPrefix(name, "kijkwijzer-"), nil
	default:
		return "", parseErrorf("restriction icon name", name)
	}
}

// ExtractTechnologies returns the projection technologies the movie is
// shown in, nil when the sidebar carries none.
func ExtractTechnologies(doc *goquery.Document) []string {
	s := squash(sideValue(doc, "Te zien in:"))
	if s == "" {
		return nil
	}
	_, value, ok := strings.Cut(s, ":")
	if !ok || value == "" {
		return nil
	}
	return strings.Split(value, ",")
}

// ExtractRating returns the site's aggregate rating, 0 when absent. Pathé
// writes comma decimals ("8,4").
func ExtractRating(doc *goquery.Document) (float64, error) {
	text := strings.TrimSpace(doc.Find("div[itemprop='aggregateRating'] span span").First().Text())
	if text == "" {
		return 0, nil
	}
	rating, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", "."), 64)
	if err != nil {
		return 0, parseErrorf("aggregate rating", text)
	}
	return rating, nil
}

// ExtractDirectorsCast splits the people slider into directors and cast.
// A slider entry is a director when its photo block carries the
// "Regisseur" caption.
func ExtractDirectorsCast(doc *goquery.Document) (directors, cast []string) {
	doc.Find("div.slider-entry").Each(func(_ int, s *goquery.Selection) {
		name := strings.TrimSpace(s.Find("span").First().Text())
		if name == "" {
			return
		}
		isDirector := false
		s.Find("div.slider-photo em").EachWithBreak(func(_ int, em *goquery.Selection) bool {
			if strings.TrimSpace(em.Text()) == "Regisseur" {
				isDirector = true
				return false
			}
			return true
		})
		if isDirector {
			directors = append(directors, name)
		} else {
			cast = append(cast, name)
		}
	})
	return directors, cast
}

// ExtractCinemas lists the cinema identifiers that have a showtime table on
// the page (table id "Schedule_arena" → "arena").
func ExtractCinemas(doc *goquery.Document) []string {
	var cinemas []string
	doc.Find("section#ScheduleContainer table[id^='Schedule_']").Each(func(_ int, s *goquery.Selection) {
		id, ok := s.Attr("id")
		if !ok {
			return
		}
		if _, name, ok := strings.Cut(id, "_"); ok && name != "" {
			cinemas = append(cinemas, name)
		}
	})
	return cinemas
}

// ParseDetail runs every extractor over one parsed detail page. Extractor
// ParseErrors are returned as-is so the caller can skip the page with a
// diagnostic.
func ParseDetail(ctx context.Context, doc *goquery.Document, tr Translator) (domain.MovieDetail, error) {
	release, err := ExtractReleaseDate(doc)
	if err != nil {
		return domain.MovieDetail{}, err
	}
	restrictions, err := ExtractRestrictions(doc)
	if err != nil {
		return domain.MovieDetail{}, err
	}
	rating, err := ExtractRating(doc)
	if err != nil {
		return domain.MovieDetail{}, err
	}
	directors, cast := ExtractDirectorsCast(doc)
	return domain.MovieDetail{
		Title:        ExtractTitle(doc),
		Special:      ExtractSpecial(doc),
		Genres:       ExtractGenres(ctx, doc, tr),
		Duration:     ExtractDuration(doc),
		Language:     ExtractLanguage(ctx, doc, tr),
		Restrictions: restrictions,
		Technologies: ExtractTechnologies(doc),
		Rating:       rating,
		Directors:    directors,
		Cast:         cast,
		ReleaseDate:  release,
	}, nil
}
