package pathe

import (
	"regexp"
	"time"
	// Embed the IANA database: Amsterdam→UTC conversion must survive DST
	// transitions even on hosts without a zoneinfo directory.
	_ "time/tzdata"
)

// Pathé labels everything in Dutch.
var (
	daysOfWeek  = []string{"maandag", "dinsdag", "woensdag", "donderdag", "vrijdag", "zaterdag", "zondag"}
	monthsShort = []string{"jan", "feb", "mrt", "apr", "mei", "jun", "jul", "aug", "sep", "okt", "nov", "dec"}
	monthsFull  = []string{
		"januari", "februari", "maart", "april", "mei", "juni", "juli", "augustus",
		"september", "oktober", "november", "december",
	}
)

// preciseDayRe matches "woensdag 27 mei": weekday plus day-of-month plus
// abbreviated month.
var preciseDayRe = regexp.MustCompile(`^.*\s(\d{2})\s([a-z]{3})$`)

var amsterdam = mustLoadAmsterdam()

func mustLoadAmsterdam() *time.Location {
	loc, err := time.LoadLocation("Europe/Amsterdam")
	if err != nil {
		panic(err)
	}
	return loc
}

// weekdayIndex maps a time.Weekday onto the Dutch list (maandag = 0).
func weekdayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// NormalizeDayLabel turns a showtime table day label into an absolute date.
// The current date is injected so one run works against a fixed calendar.
//
// Labels are either "vandaag"/"morgen", a bare weekday name meaning its
// next future occurrence, or "<weekday> <dd> <mmm>" with the year implied.
// An implied date already in the past rolls forward one year.
func NormalizeDayLabel(label string, today time.Time) (time.Time, error) {
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	switch label {
	case "vandaag":
		return today, nil
	case "morgen":
		return today.AddDate(0, 0, 1), nil
	}

	for i, day := range daysOfWeek {
		if label != day {
			continue
		}
		ahead := (i - weekdayIndex(today.Weekday()) + 7) % 7
		if ahead == 0 {
			// A bare weekday name never means today.
			ahead = 7
		}
		return today.AddDate(0, 0, ahead), nil
	}

	m := preciseDayRe.FindStringSubmatch(label)
	if m == nil {
		return time.Time{}, parseErrorf("day label", label)
	}
	day := atoi(m[1])
	month := 0
	for i, name := range monthsShort {
		if name == m[2] {
			month = i + 1
			break
		}
	}
	if month == 0 {
		return time.Time{}, parseErrorf("month abbreviation", m[2])
	}

	date := time.Date(today.Year(), time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Before(today) {
		date = time.Date(today.Year()+1, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	}
	return date, nil
}

// ToUTC interprets a calendar date plus clock time as Amsterdam local time
// and returns the UTC instant.
func ToUTC(date time.Time, hour, minute int) time.Time {
	local := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, amsterdam)
	return local.UTC()
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
