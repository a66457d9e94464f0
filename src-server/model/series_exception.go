package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"schedly/src-server/exception"

	"github.com/uptrace/bun"
)

// SeriesException is the stored form of exception.Exception. There is at
// most one row per (series_id, original_start).
type SeriesException struct {
	bun.BaseModel `bun:"table:series_exceptions"`

	ID                       int64  `bun:"id,pk,autoincrement"`
	SeriesID                 string `bun:"series_id,notnull,unique:series_original_start"`
	OriginalStartDateUnixUTC int64  `bun:"original_start,notnull,unique:series_original_start"`
	Kind                     string `bun:"kind,notnull"`

	// override payload, NULL means "not overridden"
	OverrideTitle       *string `bun:"override_title"`
	OverrideDescription *string `bun:"override_description"`
	OverrideLocation    *string `bun:"override_location"`
	OverrideStart       *int64  `bun:"override_start"`
	OverrideEnd         *int64  `bun:"override_end"`

	CreatedAt int64 `bun:"created_at,notnull"`
	UpdatedAt int64 `bun:"updated_at"`
}

func newSeriesException(e exception.Exception) *SeriesException {
	row := &SeriesException{
		SeriesID:                 e.SeriesID,
		OriginalStartDateUnixUTC: e.OriginalStart.Unix(),
		Kind:                     string(e.Kind),
		OverrideTitle:            e.Override.Title,
		OverrideDescription:      e.Override.Description,
		OverrideLocation:         e.Override.Location,
		CreatedAt:                e.CreatedAt.Unix(),
		UpdatedAt:                e.UpdatedAt.Unix(),
	}
	if e.Override.Start != nil {
		v := e.Override.Start.Unix()
		row.OverrideStart = &v
	}
	if e.Override.End != nil {
		v := e.Override.End.Unix()
		row.OverrideEnd = &v
	}
	return row
}

func (r *SeriesException) Exception() exception.Exception {
	e := exception.Exception{
		SeriesID:      r.SeriesID,
		OriginalStart: time.Unix(r.OriginalStartDateUnixUTC, 0).UTC(),
		Kind:          exception.Kind(r.Kind),
		Override: exception.Override{
			Title:       r.OverrideTitle,
			Description: r.OverrideDescription,
			Location:    r.OverrideLocation,
		},
		CreatedAt: time.Unix(r.CreatedAt, 0).UTC(),
		UpdatedAt: time.Unix(r.UpdatedAt, 0).UTC(),
	}
	if r.OverrideStart != nil {
		t := time.Unix(*r.OverrideStart, 0).UTC()
		e.Override.Start = &t
	}
	if r.OverrideEnd != nil {
		t := time.Unix(*r.OverrideEnd, 0).UTC()
		e.Override.End = &t
	}
	return e
}

// findException returns nil when the occurrence has no exception yet.
func findException(ctx context.Context, db bun.IDB, seriesID string, originalStart time.Time) (*exception.Exception, error) {
	row := new(SeriesException)
	err := db.NewSelect().
		Model(row).
		Where("series_id = ?", seriesID).
		Where("original_start = ?", originalStart.Unix()).
		Scan(ctx)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("findException: %w", err)
	}
	e := row.Exception()
	return &e, nil
}

// upsertException writes e in place of any existing row for its key.
func upsertException(ctx context.Context, db bun.IDB, e exception.Exception) error {
	if _, err := db.NewInsert().
		Model(newSeriesException(e)).
		On("CONFLICT (series_id, original_start) DO UPDATE").
		Set("kind = EXCLUDED.kind").
		Set("override_title = EXCLUDED.override_title").
		Set("override_description = EXCLUDED.override_description").
		Set("override_location = EXCLUDED.override_location").
		Set("override_start = EXCLUDED.override_start").
		Set("override_end = EXCLUDED.override_end").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx); err != nil {
		return fmt.Errorf("upsertException: %w", err)
	}
	return nil
}
