package nlp_test

import (
	"testing"
	"time"

	"schedly/src-server/nlp"
	"schedly/src-server/recurrence"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Thursday
var now = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func utc(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC)
}

func TestParseCourseSchedule(t *testing.T) {
	ref := time.Date(2026, 9, 3, 18, 0, 0, 0, time.UTC)
	f := nlp.Parse("CS 101 lecture Mon/Wed/Fri 9:30-10:20 until Dec 10 @ Hall B", "America/Los_Angeles", ref)

	assert.Equal(t, "CS 101 lecture", f.Title)
	assert.Equal(t, "Hall B", f.Location)
	assert.Equal(t, "America/Los_Angeles", f.Timezone)
	assert.False(t, f.TimezoneFallback)
	assert.True(t, f.HasDate)
	assert.True(t, f.HasTime)
	assert.True(t, f.IsRecurring())
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday}, f.RepeatDays)
	require.NotNil(t, f.RepeatUntil)
	assert.Equal(t, recurrence.NewDate(2026, time.December, 10), *f.RepeatUntil)
	assert.Equal(t, 1, f.RepeatEveryWeeks)

	// first selected day after Thursday Sep 3 is Friday Sep 4, PDT
	assert.Equal(t, utc(2026, 9, 4, 16, 30), f.Start)
	assert.Equal(t, utc(2026, 9, 4, 17, 20), f.End)

	occs, err := recurrence.Materialize(f.Descriptor())
	require.NoError(t, err)
	assert.Len(t, occs, 42)
	la, _ := time.LoadLocation("America/Los_Angeles")
	for _, o := range occs {
		assert.Equal(t, "09:30", recurrence.ClockOf(o.Start.In(la)).String())
	}
}

func TestParseIsIdempotent(t *testing.T) {
	for _, text := range []string{
		"CS 101 lecture Mon/Wed/Fri 9:30-10:20 until Dec 10 @ Hall B",
		"Dentist tomorrow at 3pm for 45 min",
		"",
	} {
		assert.Equal(t, nlp.Parse(text, "UTC", now), nlp.Parse(text, "UTC", now), text)
	}
}

func TestParseSingleTimeWithDuration(t *testing.T) {
	f := nlp.Parse("Dentist tomorrow at 3pm for 45 min", "UTC", now)
	assert.Equal(t, "Dentist", f.Title)
	assert.Empty(t, f.Location)
	assert.Equal(t, utc(2026, 10, 16, 15, 0), f.Start)
	assert.Equal(t, utc(2026, 10, 16, 15, 45), f.End)
	assert.False(t, f.IsRecurring())
}

func TestParseMeridiemInheritance(t *testing.T) {
	f := nlp.Parse("Team sync next Monday 11-1pm PST", "", now)
	assert.Equal(t, "Team sync", f.Title)
	assert.Equal(t, "America/Los_Angeles", f.Timezone)
	assert.Equal(t, utc(2026, 10, 19, 18, 0), f.Start)
	assert.Equal(t, utc(2026, 10, 19, 20, 0), f.End)

	f = nlp.Parse("Review 2026-10-20 9-10am", "UTC", now)
	assert.Equal(t, utc(2026, 10, 20, 9, 0), f.Start)
	assert.Equal(t, utc(2026, 10, 20, 10, 0), f.End)

	f = nlp.Parse("Workshop 2026-10-20 9am-5", "UTC", now)
	assert.Equal(t, utc(2026, 10, 20, 17, 0), f.End)
}

func TestParseEndBeforeStartGetsDefaultDuration(t *testing.T) {
	f := nlp.Parse("Night shift 2026-10-20 11pm-1am", "UTC", now)
	assert.Equal(t, utc(2026, 10, 20, 23, 0), f.Start)
	assert.Equal(t, utc(2026, 10, 21, 0, 0), f.End)
}

func TestParseImpossibleDateIsNotGuessed(t *testing.T) {
	f := nlp.Parse("Party Feb 29", "UTC", now)
	assert.False(t, f.HasDate)
	assert.Equal(t, utc(2026, 10, 15, 9, 0), f.Start)
}

func TestParseBackwardsExplicitRange(t *testing.T) {
	f := nlp.Parse("Flight 2026-11-03 to 2026-11-01", "UTC", now)
	assert.False(t, f.IsRecurring())
	assert.Nil(t, f.RepeatUntil)
	assert.True(t, f.HasDate)
	assert.Equal(t, utc(2026, 11, 3, 9, 0), f.Start)
}

func TestParseNumberedRoom(t *testing.T) {
	f := nlp.Parse("Exam 12/15 8am-11am in Room 204", "UTC", now)
	assert.Equal(t, "Exam", f.Title)
	assert.Equal(t, "Room 204", f.Location)
	assert.Equal(t, utc(2026, 12, 15, 8, 0), f.Start)
	assert.Equal(t, utc(2026, 12, 15, 11, 0), f.End)
}

func TestParseRelativeDates(t *testing.T) {
	tests := map[string]time.Time{
		"Call today":         utc(2026, 10, 15, 9, 0),
		"Call tomorrow":      utc(2026, 10, 16, 9, 0),
		"Call this thursday": utc(2026, 10, 15, 9, 0),
		"Call next thursday": utc(2026, 10, 22, 9, 0),
		"Call next friday":   utc(2026, 10, 16, 9, 0),
	}
	for in, want := range tests {
		f := nlp.Parse(in, "UTC", now)
		assert.True(t, f.HasDate, in)
		assert.Equal(t, want, f.Start, in)
		assert.Equal(t, "Call", f.Title, in)
	}
	assert.False(t, nlp.Parse("Call someday", "UTC", now).HasDate)
}

func TestParseDefaults(t *testing.T) {
	f := nlp.Parse("   ", "UTC", now)
	assert.Equal(t, nlp.UntitledTitle, f.Title)
	assert.False(t, f.HasDate)
	assert.False(t, f.HasTime)
	assert.Equal(t, utc(2026, 10, 15, 9, 0), f.Start)
	assert.Equal(t, utc(2026, 10, 15, 10, 0), f.End)

	f = nlp.Parse("9am-10am", "UTC", now)
	assert.Equal(t, nlp.UntitledTitle, f.Title)
	assert.True(t, f.HasTime)
}

func TestParseTimezoneFallback(t *testing.T) {
	f := nlp.Parse("Launch 2026-11-02 10:00", "Mars/Olympus_Mons", now)
	assert.True(t, f.TimezoneFallback)
	assert.Equal(t, "UTC", f.Timezone)
	assert.Equal(t, utc(2026, 11, 2, 10, 0), f.Start)

	// an explicit zone in the text wins over a bad hint
	f = nlp.Parse("Launch 2026-11-02 10:00 Europe/Berlin", "not a zone!", now)
	assert.False(t, f.TimezoneFallback)
	assert.Equal(t, "Europe/Berlin", f.Timezone)
	assert.Equal(t, utc(2026, 11, 2, 9, 0), f.Start)
}

func TestParseGroupBeatsList(t *testing.T) {
	f := nlp.Parse("Yoga every weekday and Sat 7am", "UTC", now)
	assert.Equal(t, "Yoga", f.Title)
	assert.Equal(t, []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}, f.RepeatDays)
	assert.True(t, f.IsRecurring())
	// today is a Thursday and matches
	assert.Equal(t, utc(2026, 10, 15, 7, 0), f.Start)
}

func TestParseDateRange(t *testing.T) {
	f := nlp.Parse("Conference Nov 1-3", "UTC", now)
	assert.Equal(t, "Conference", f.Title)
	assert.True(t, f.IsRecurring())
	assert.Len(t, f.RepeatDays, 7)
	require.NotNil(t, f.RepeatUntil)
	assert.Equal(t, recurrence.NewDate(2026, time.November, 3), *f.RepeatUntil)
	assert.Equal(t, utc(2026, 11, 1, 9, 0), f.Start)
	assert.False(t, f.HasTime)

	occs, err := recurrence.Materialize(f.Descriptor())
	require.NoError(t, err)
	assert.Len(t, occs, 3)
}

func TestParseCadence(t *testing.T) {
	f := nlp.Parse("Standup every other Monday 9:15-9:30 for 6 weeks", "UTC", now)
	assert.Equal(t, "Standup", f.Title)
	assert.Equal(t, 2, f.RepeatEveryWeeks)
	assert.Equal(t, []time.Weekday{time.Monday}, f.RepeatDays)
	require.NotNil(t, f.RepeatUntil)
	assert.Equal(t, recurrence.NewDate(2026, time.November, 29), *f.RepeatUntil)
	assert.Equal(t, utc(2026, 10, 19, 9, 15), f.Start)

	occs, err := recurrence.Materialize(f.Descriptor())
	require.NoError(t, err)
	assert.Len(t, occs, 3)
}

func TestParseRepeatedCadenceWords(t *testing.T) {
	f := nlp.Parse("Weekly review every week friday 4pm", "UTC", now)
	assert.Equal(t, "Review", f.Title)
	assert.True(t, f.IsRecurring())
	assert.Equal(t, 1, f.RepeatEveryWeeks)
	assert.Equal(t, []time.Weekday{time.Friday}, f.RepeatDays)
	assert.Equal(t, utc(2026, 10, 16, 16, 0), f.Start)
}

func TestParseMonthly(t *testing.T) {
	f := nlp.Parse("Book club monthly Nov 5 7pm", "UTC", now)
	assert.Equal(t, "Book club", f.Title)
	assert.Equal(t, recurrence.Monthly, f.Frequency)
	assert.Nil(t, f.RepeatDays)
	assert.Equal(t, utc(2026, 11, 5, 19, 0), f.Start)
}

func TestParseUntilRollsForward(t *testing.T) {
	f := nlp.Parse("Gym Tuesdays 6pm until Jan 10", "UTC", now)
	require.NotNil(t, f.RepeatUntil)
	assert.Equal(t, recurrence.NewDate(2027, time.January, 10), *f.RepeatUntil)
	assert.Equal(t, []time.Weekday{time.Tuesday}, f.RepeatDays)
	assert.Equal(t, utc(2026, 10, 20, 18, 0), f.Start)
}

func TestParseDescriptionAndOCRNoise(t *testing.T) {
	f := nlp.Parse("Ｒｅｖｉｅｗ　2026-10-22　３：００ＰＭ\nnotes: bring laptop", "UTC", now)
	assert.Equal(t, "Review", f.Title)
	assert.Equal(t, "bring laptop", f.Description)
	assert.Equal(t, utc(2026, 10, 22, 15, 0), f.Start)

	f = nlp.Parse("Call with Ana 2026-10-22 4 p.m.", "UTC", now)
	assert.Equal(t, "Call with Ana", f.Title)
	assert.Equal(t, utc(2026, 10, 22, 16, 0), f.Start)
}

func TestParseLooseDateFallback(t *testing.T) {
	f := nlp.Parse("Renew passport in 3 days", "UTC", now)
	assert.True(t, f.HasDate)
	assert.Equal(t, utc(2026, 10, 18, 9, 0), f.Start)
	assert.Equal(t, "Renew passport", f.Title)
}

func TestParseLongTitleIsCapped(t *testing.T) {
	long := ""
	for range 60 {
		long += "word "
	}
	f := nlp.Parse(long, "UTC", now)
	assert.LessOrEqual(t, len([]rune(f.Title)), nlp.MaxTitleLength)
}

func TestParseWallClockAcrossDST(t *testing.T) {
	// the Monday after US clocks fall back keeps 9:30 local
	f := nlp.Parse("Class 2026-11-02 9:30am", "America/New_York", now)
	assert.Equal(t, utc(2026, 11, 2, 14, 30), f.Start)
	f = nlp.Parse("Class 2026-10-26 9:30am", "America/New_York", now)
	assert.Equal(t, utc(2026, 10, 26, 13, 30), f.Start)
}
