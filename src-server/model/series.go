package model

import (
	"fmt"
	"log/slog"
	"time"

	"schedly/src-server/recurrence"

	"github.com/uptrace/bun"
)

// Series stores the recurrence rule a batch of events was materialized
// from. It is written once; edits to single occurrences live in
// SeriesException.
type Series struct {
	bun.BaseModel `bun:"table:series"`

	ID          string `bun:"id,pk"`
	Title       string `bun:"title,notnull"`
	Description string `bun:"description"`
	Location    string `bun:"location"`

	StartDateUnixUTC int64  `bun:"start_date,notnull"`
	EndDateUnixUTC   int64  `bun:"end_date,notnull"`
	Timezone         string `bun:"timezone,notnull"`

	Frequency string `bun:"freq,notnull"`
	Interval  int    `bun:"repeat_interval,notnull"`
	// weekday indexes, "1,3,5" for Mon/Wed/Fri
	ByWeekday string `bun:"by_weekday"`
	// last local date, blank when open-ended
	Until string `bun:"until"`
	// same rule in RFC 5545 form, informational
	RRule string `bun:"rrule"`

	CreatedAt int64 `bun:"created_at,notnull"`

	Events     []*Event           `bun:"rel:has-many,join:id=series_id"`
	Exceptions []*SeriesException `bun:"rel:has-many,join:id=series_id"`
}

// NewSeries captures d as a row. timezone is the zone the rule was actually
// expanded in, which differs from d.Timezone after a fallback.
func NewSeries(id string, d recurrence.Descriptor, timezone string, now time.Time) *Series {
	s := &Series{
		ID:               id,
		Title:            d.Title,
		Description:      d.Description,
		Location:         d.Location,
		StartDateUnixUTC: d.Start.Unix(),
		EndDateUnixUTC:   d.End.Unix(),
		Timezone:         timezone,
		Frequency:        string(d.Frequency),
		Interval:         max(d.Interval, 1),
		ByWeekday:        recurrence.FormatWeekdays(d.Weekdays),
		CreatedAt:        now.UTC().Unix(),
	}
	if s.Frequency == "" {
		s.Frequency = string(recurrence.Weekly)
	}
	if !d.Until.IsZero() {
		s.Until = d.Until.String()
	}
	d.Timezone = timezone
	rule, err := d.RRule()
	if err != nil {
		slog.Warn("NewSeries: can't render rrule", "series", id, "error", err)
	}
	s.RRule = rule
	return s
}

// Descriptor rebuilds the rule the series was created from.
func (s *Series) Descriptor() (recurrence.Descriptor, error) {
	days, err := recurrence.ParseWeekdays(s.ByWeekday)
	if err != nil {
		return recurrence.Descriptor{}, fmt.Errorf("(*Series).Descriptor: %w", err)
	}
	d := recurrence.Descriptor{
		Title:       s.Title,
		Description: s.Description,
		Location:    s.Location,
		Start:       time.Unix(s.StartDateUnixUTC, 0).UTC(),
		End:         time.Unix(s.EndDateUnixUTC, 0).UTC(),
		Timezone:    s.Timezone,
		Frequency:   recurrence.Frequency(s.Frequency),
		Interval:    s.Interval,
		Weekdays:    days,
	}
	if s.Until != "" {
		if d.Until, err = recurrence.ParseDate(s.Until); err != nil {
			return recurrence.Descriptor{}, fmt.Errorf("(*Series).Descriptor: %w", err)
		}
	}
	return d, nil
}
