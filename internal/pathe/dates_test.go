package pathe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNormalizeTodayTomorrow(t *testing.T) {
	today := date(2024, time.January, 10)

	got, err := NormalizeDayLabel("vandaag", today)
	require.NoError(t, err)
	assert.Equal(t, today, got)

	got, err = NormalizeDayLabel("morgen", today)
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.January, 11), got)
}

func TestNormalizeWeekdayIsStrictlyInTheFuture(t *testing.T) {
	// Every weekday label against every current weekday: result is 1-7
	// days ahead and lands on the named weekday. A label naming today's
	// weekday means next week, never today.
	start := date(2024, time.January, 8) // a Monday
	for offset := 0; offset < 7; offset++ {
		today := start.AddDate(0, 0, offset)
		for i, label := range daysOfWeek {
			got, err := NormalizeDayLabel(label, today)
			require.NoError(t, err, "label %q today %s", label, today)

			ahead := int(got.Sub(today).Hours() / 24)
			assert.GreaterOrEqual(t, ahead, 1, "label %q today %s", label, today)
			assert.LessOrEqual(t, ahead, 7, "label %q today %s", label, today)
			assert.Equal(t, i, weekdayIndex(got.Weekday()), "label %q today %s", label, today)
		}
	}
}

func TestNormalizePreciseDate(t *testing.T) {
	got, err := NormalizeDayLabel("woensdag 27 mei", date(2024, time.January, 10))
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.May, 27), got)
}

func TestNormalizePreciseDateRollsYearForward(t *testing.T) {
	// 27 May has already passed on 2024-06-10, so the date belongs to
	// next year. The rolled date is rebuilt with the incremented year.
	got, err := NormalizeDayLabel("woensdag 27 mei", date(2024, time.June, 10))
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.May, 27), got)
}

func TestNormalizeUnknownLabel(t *testing.T) {
	for _, label := range []string{"", "gisteren", "27 mei woensdag", "woensdag 27 xyz"} {
		_, err := NormalizeDayLabel(label, date(2024, time.January, 10))
		assert.True(t, IsParseError(err), "label %q should be a ParseError, got %v", label, err)
	}
}

func TestToUTCAcrossDST(t *testing.T) {
	// Amsterdam is CET (+1) in winter, CEST (+2) in summer.
	winter := ToUTC(date(2024, time.January, 15), 20, 0)
	assert.Equal(t, time.Date(2024, time.January, 15, 19, 0, 0, 0, time.UTC), winter)

	summer := ToUTC(date(2024, time.July, 15), 20, 0)
	assert.Equal(t, time.Date(2024, time.July, 15, 18, 0, 0, 0, time.UTC), summer)
}
