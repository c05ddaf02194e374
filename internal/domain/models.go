package domain

import "time"

// ListingPage is one page of the paginated movie listing.
// Produced by the coordinator, consumed once by a listing worker.
type ListingPage struct {
	Number int
	URL    string
}

// MovieCandidate is a detail-page URL discovered on a listing page together
// with the availability label shown next to it ("Nu te zien", "Verwacht",
// "Uitverkocht", ...). Candidates that fail the status filter are discarded
// before they ever reach the detail queue.
type MovieCandidate struct {
	URL    string
	Status string
}

// MovieDetail holds everything extracted from a single detail page.
// Built in one parse, immutable afterwards.
type MovieDetail struct {
	Title        string // normalized: single trailing parenthetical stripped
	Special      string // Pathé special status ("PathéOpera", ...), empty if none
	Genres       []string
	Duration     int // minutes, 0 when the page carries no duration
	Language     string
	Restrictions []string // Kijkwijzer tags: "12", "16", "unknown", "n/a", ...
	Technologies []string
	Rating       float64 // site aggregate rating, 0 when absent
	Directors    []string
	Cast         []string
	ReleaseDate  time.Time // zero when absent
}

// Showtime is one bookable show in one cinema.
type Showtime struct {
	ID         int
	StartsAt   time.Time // UTC
	Technology string
}

// ExternalRating is the IMDB lookup result for a title.
type ExternalRating struct {
	ID        int
	Rating    float64
	HasRating bool // some title pages carry no rating element
}

// ResultRecord is the pipeline's only output unit: a movie that cleared the
// rating threshold. Rating is included because the report body prints it.
type ResultRecord struct {
	MovieURL  string
	RatingURL string
	Rating    float64
}

// SkipSpecials are the Pathé special statuses exempt from ordinary
// rating-based filtering; detail workers drop them without further work.
var SkipSpecials = []string{"PathéOpera", "PathéArt", "PathéBallet", "PathéOperaEncore", "PathéTheatre"}

// Technologies Pathé annotates showtimes with. Plain 2D is never written
// out by the site and is filled in as the default.
var Technologies = []string{"3D", "IMAX", "IMAX3D"}

// DefaultTechnology is assumed when a showtime cell names no recognized
// projection technology.
const DefaultTechnology = "2D"

// IsSkipSpecial reports whether a special status exempts the movie from
// rating-based filtering.
func IsSkipSpecial(special string) bool {
	for _, s := range SkipSpecials {
		if s == special {
			return true
		}
	}
	return false
}

// IsTechnology reports whether token is a recognized projection technology.
func IsTechnology(token string) bool {
	for _, t := range Technologies {
		if t == token {
			return true
		}
	}
	return false
}
