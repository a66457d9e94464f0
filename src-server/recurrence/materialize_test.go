package recurrence_test

import (
	"errors"
	"testing"
	"time"

	"schedly/src-server/recurrence"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teambition/rrule-go"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func TestMaterializeMonWedFriAcrossDST(t *testing.T) {
	la := mustLoad(t, "America/Los_Angeles")
	d := recurrence.Descriptor{
		Title:     "CS 101 lecture",
		Start:     time.Date(2026, 9, 7, 9, 30, 0, 0, la),
		End:       time.Date(2026, 9, 7, 10, 20, 0, 0, la),
		Timezone:  "America/Los_Angeles",
		Frequency: recurrence.Weekly,
		Interval:  1,
		Weekdays:  []time.Weekday{time.Monday, time.Wednesday, time.Friday},
		Until:     recurrence.NewDate(2026, time.December, 10),
	}
	occs, err := recurrence.Materialize(d)
	require.NoError(t, err)
	require.Len(t, occs, 41)

	for i, o := range occs {
		local := o.Start.In(la)
		assert.Equal(t, 9, local.Hour(), "occurrence %d", i)
		assert.Equal(t, 30, local.Minute(), "occurrence %d", i)
		assert.Equal(t, 50*time.Minute, o.End.Sub(o.Start))
		assert.Equal(t, o.Start, o.OriginalStart)
		assert.Equal(t, time.UTC, o.Start.Location())
		assert.Contains(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday}, local.Weekday())
		if i > 0 {
			assert.True(t, occs[i-1].Start.Before(o.Start))
		}
	}

	// PDT before the first Sunday of November, PST after
	assert.Equal(t, time.Date(2026, 10, 30, 16, 30, 0, 0, time.UTC), findOn(t, occs, la, 2026, 10, 30).Start)
	assert.Equal(t, time.Date(2026, 11, 2, 17, 30, 0, 0, time.UTC), findOn(t, occs, la, 2026, 11, 2).Start)
	assert.Equal(t, recurrence.NewDate(2026, time.December, 9), recurrence.DateOf(occs[len(occs)-1].Start.In(la)))
}

func findOn(t *testing.T, occs []recurrence.Occurrence, loc *time.Location, y int, m time.Month, d int) recurrence.Occurrence {
	t.Helper()
	want := recurrence.NewDate(y, m, d)
	for _, o := range occs {
		if recurrence.DateOf(o.Start.In(loc)) == want {
			return o
		}
	}
	t.Fatalf("no occurrence on %s", want)
	return recurrence.Occurrence{}
}

func TestMaterializeSingleWeeklyOccurrence(t *testing.T) {
	start := time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC)
	occs, err := recurrence.Materialize(recurrence.Descriptor{
		Start:     start,
		End:       start.Add(time.Hour),
		Frequency: recurrence.Weekly,
		Interval:  1,
		Weekdays:  []time.Weekday{time.Tuesday},
		Until:     recurrence.NewDate(2026, time.September, 1),
	})
	require.NoError(t, err)
	require.Len(t, occs, 1)
	assert.Equal(t, start, occs[0].Start)
}

func TestMaterializeMonthlySkipsShortMonths(t *testing.T) {
	start := time.Date(2026, 1, 31, 8, 0, 0, 0, time.UTC)
	occs, err := recurrence.Materialize(recurrence.Descriptor{
		Start:     start,
		End:       start.Add(30 * time.Minute),
		Frequency: recurrence.Monthly,
		Until:     recurrence.NewDate(2026, time.December, 31),
	})
	require.NoError(t, err)

	var months []time.Month
	for _, o := range occs {
		assert.Equal(t, 31, o.Start.Day())
		months = append(months, o.Start.Month())
	}
	assert.Equal(t, []time.Month{
		time.January, time.March, time.May, time.July,
		time.August, time.October, time.December,
	}, months)
}

func TestMaterializeUntilBeforeAnchorIsEmpty(t *testing.T) {
	start := time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC)
	occs, err := recurrence.Materialize(recurrence.Descriptor{
		Start:    start,
		End:      start.Add(time.Hour),
		Weekdays: []time.Weekday{time.Monday},
		Until:    recurrence.NewDate(2026, time.September, 1),
	})
	require.NoError(t, err)
	assert.Empty(t, occs)
}

func TestMaterializeValidation(t *testing.T) {
	start := time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC)
	cases := map[string]recurrence.Descriptor{
		"end before start": {Start: start, End: start.Add(-time.Hour)},
		"end equals start": {Start: start, End: start},
		"malformed zone":   {Start: start, End: start.Add(time.Hour), Timezone: "not a zone"},
		"negative step":    {Start: start, End: start.Add(time.Hour), Interval: -1},
		"bad weekday":      {Start: start, End: start.Add(time.Hour), Weekdays: []time.Weekday{7}},
		"yearly":           {Start: start, End: start.Add(time.Hour), Frequency: "YEARLY"},
	}
	for name, d := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := recurrence.Materialize(d)
			require.Error(t, err)
			assert.True(t, errors.Is(err, recurrence.ErrInvalidDescriptor))
			var verr *recurrence.ValidationError
			assert.True(t, errors.As(err, &verr))
		})
	}
}

func TestMaterializeUnknownZoneFallsBackToUTC(t *testing.T) {
	start := time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC)
	exp, err := recurrence.Expand(recurrence.Descriptor{
		Start:    start,
		End:      start.Add(time.Hour),
		Timezone: "Mars/Olympus_Mons",
		Until:    recurrence.NewDate(2026, time.September, 7),
	}, recurrence.DefaultLimits)
	require.NoError(t, err)
	assert.True(t, exp.TimezoneFallback)
	require.Len(t, exp.Occurrences, 1)
	assert.Equal(t, start, exp.Occurrences[0].Start)
}

func TestMaterializeEveryOtherWeek(t *testing.T) {
	start := time.Date(2026, 9, 7, 18, 0, 0, 0, time.UTC)
	occs, err := recurrence.Materialize(recurrence.Descriptor{
		Start:    start,
		End:      start.Add(time.Hour),
		Interval: 2,
		Weekdays: []time.Weekday{time.Monday, time.Wednesday},
		Until:    recurrence.NewDate(2026, time.October, 4),
	})
	require.NoError(t, err)
	var days []int
	for _, o := range occs {
		days = append(days, o.Start.Day())
	}
	assert.Equal(t, []int{7, 9, 21, 23}, days)
}

func TestMaterializeDailyInterval(t *testing.T) {
	start := time.Date(2026, 9, 1, 7, 0, 0, 0, time.UTC)
	occs, err := recurrence.Materialize(recurrence.Descriptor{
		Start:     start,
		End:       start.Add(15 * time.Minute),
		Frequency: recurrence.Daily,
		Interval:  3,
		Until:     recurrence.NewDate(2026, time.September, 10),
	})
	require.NoError(t, err)
	require.Len(t, occs, 4)
	assert.Equal(t, 10, occs[3].Start.Day())
}

func TestExpandLimits(t *testing.T) {
	start := time.Date(2026, 9, 1, 7, 0, 0, 0, time.UTC)
	d := recurrence.Descriptor{Start: start, End: start.Add(time.Hour), Frequency: recurrence.Daily}

	exp, err := recurrence.Expand(d, recurrence.Limits{MaxOccurrences: 10, MaxSpanDays: 365})
	require.NoError(t, err)
	assert.Len(t, exp.Occurrences, 10)
	assert.True(t, exp.Truncated)

	d.Until = recurrence.NewDate(2026, time.September, 5)
	exp, err = recurrence.Expand(d, recurrence.Limits{MaxOccurrences: 10, MaxSpanDays: 365})
	require.NoError(t, err)
	assert.Len(t, exp.Occurrences, 5)
	assert.False(t, exp.Truncated)

	d.Until = recurrence.NewDate(2027, time.September, 5)
	exp, err = recurrence.Expand(d, recurrence.Limits{MaxOccurrences: 1000, MaxSpanDays: 30})
	require.NoError(t, err)
	assert.Len(t, exp.Occurrences, 31)
	assert.True(t, exp.Truncated)
}

func TestAtPushesThroughSpringForwardGap(t *testing.T) {
	ny := mustLoad(t, "America/New_York")
	got := recurrence.At(recurrence.NewDate(2026, time.March, 8), recurrence.TimeOfDay{Hour: 2, Minute: 30}, ny)
	assert.Equal(t, time.Date(2026, 3, 8, 7, 30, 0, 0, time.UTC), got)
	assert.Equal(t, 3, got.In(ny).Hour())

	got = recurrence.At(recurrence.NewDate(2026, time.March, 9), recurrence.TimeOfDay{Hour: 2, Minute: 30}, ny)
	assert.Equal(t, time.Date(2026, 3, 9, 6, 30, 0, 0, time.UTC), got)
}

// The materializer and rrule-go must agree on plain weekly rules.
func TestMaterializeMatchesRRule(t *testing.T) {
	berlin := mustLoad(t, "Europe/Berlin")
	start := time.Date(2026, 3, 2, 8, 15, 0, 0, berlin)
	days := []time.Weekday{time.Monday, time.Thursday}
	until := recurrence.NewDate(2026, time.November, 30)

	occs, err := recurrence.Materialize(recurrence.Descriptor{
		Start:    start,
		End:      start.Add(45 * time.Minute),
		Timezone: "Europe/Berlin",
		Weekdays: days,
		Until:    until,
	})
	require.NoError(t, err)

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Interval:  1,
		Dtstart:   start,
		Byweekday: []rrule.Weekday{rrule.MO, rrule.TH},
		Until:     time.Date(2026, 11, 30, 23, 59, 59, 0, berlin),
	})
	require.NoError(t, err)
	want := rule.All()

	require.Len(t, occs, len(want))
	for i := range want {
		assert.True(t, want[i].Equal(occs[i].Start), "index %d: %s vs %s", i, want[i], occs[i].Start)
	}
}
