package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"schedly/src-server/conflict"
	"schedly/src-server/exception"
	"schedly/src-server/recurrence"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Limits struct {
	Expansion recurrence.Limits
	ReportCap int
	Slot      conflict.SlotLimits
}

var DefaultLimits = Limits{
	Expansion: recurrence.DefaultLimits,
	ReportCap: conflict.DefaultReportCap,
	Slot:      conflict.DefaultSlotLimits,
}

// Observer is told about completed store operations. The metric package
// implements it.
type Observer interface {
	EventsCreated(n int)
	ConflictRejected(total int)
	ExceptionApplied(kind exception.Kind)
}

type nopObserver struct{}

func (nopObserver) EventsCreated(int)               {}
func (nopObserver) ConflictRejected(int)            {}
func (nopObserver) ExceptionApplied(exception.Kind) {}

// Store persists events, series and exceptions.
//
// Every write that depends on a conflict check runs the check and the write
// inside one transaction while holding mu, so two requests can never both
// pass the check against the same free slot. Reads take no lock.
type Store struct {
	db       *bun.DB
	mu       sync.Mutex
	limits   Limits
	observer Observer

	now   func() time.Time
	newID func() string
}

func NewStore(db *bun.DB, limits Limits) *Store {
	return &Store{
		db:       db,
		limits:   limits,
		observer: nopObserver{},
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

func (s *Store) SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	s.observer = o
}

func (s *Store) Limits() Limits { return s.limits }

type EventInput struct {
	Title       string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
}

func (in EventInput) event(id string, now time.Time) (*Event, error) {
	e := &Event{
		ID:               id,
		Title:            strings.TrimSpace(in.Title),
		Description:      strings.TrimSpace(in.Description),
		Location:         strings.TrimSpace(in.Location),
		StartDateUnixUTC: in.Start.Unix(),
		EndDateUnixUTC:   in.End.Unix(),
		CreatedAt:        now.UTC().Unix(),
	}
	if in.Start.IsZero() || in.End.IsZero() {
		return nil, fmt.Errorf("%w: start and end are required", ErrInvalidEvent)
	}
	if err := e.validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// CreateEvent inserts a standalone event unless it overlaps an existing one,
// in which case a *ConflictError is returned and nothing is written.
func (s *Store) CreateEvent(ctx context.Context, in EventInput) (*Event, error) {
	e, err := in.event(s.newID(), s.now())
	if err != nil {
		return nil, fmt.Errorf("CreateEvent: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		existing, err := intervals(ctx, tx, e.Start(), e.End())
		if err != nil {
			return err
		}
		if err := s.check([]conflict.Interval{e.Interval()}, existing); err != nil {
			return err
		}
		return e.Upsert(ctx, tx)
	}); err != nil {
		return nil, fmt.Errorf("CreateEvent: %w", err)
	}
	s.observer.EventsCreated(1)
	return e, nil
}

type SeriesResult struct {
	Series *Series
	Events []*Event
	// Truncated is set when a limit cut the expansion short.
	Truncated        bool
	TimezoneFallback bool
}

// CreateSeries materializes d and stores the series with all of its
// occurrences, or nothing at all: when any occurrence overlaps an existing
// event the whole batch is refused with a *ConflictError listing every
// overlap (up to the report cap).
func (s *Store) CreateSeries(ctx context.Context, d recurrence.Descriptor) (*SeriesResult, error) {
	exp, err := recurrence.Expand(d, s.limits.Expansion)
	if err != nil {
		return nil, fmt.Errorf("CreateSeries: %w", err)
	}
	if len(exp.Occurrences) == 0 {
		return nil, fmt.Errorf("CreateSeries: %w", ErrEmptySeries)
	}
	if strings.TrimSpace(d.Title) == "" {
		return nil, fmt.Errorf("CreateSeries: %w: title is blank", ErrInvalidEvent)
	}

	now := s.now()
	tz := d.Timezone
	if exp.TimezoneFallback {
		slog.Warn("CreateSeries: unknown timezone, using UTC", "timezone", d.Timezone)
		tz = time.UTC.String()
	} else if strings.TrimSpace(tz) == "" {
		tz = d.Start.Location().String()
	}
	series := NewSeries(s.newID(), d, tz, now)

	events := make([]*Event, len(exp.Occurrences))
	candidates := make([]conflict.Interval, len(exp.Occurrences))
	for i, occ := range exp.Occurrences {
		events[i] = &Event{
			ID:                       s.newID(),
			SeriesID:                 series.ID,
			OriginalStartDateUnixUTC: occ.OriginalStart.Unix(),
			CreatedAt:                now.UTC().Unix(),
		}
		events[i].setOccurrence(occ)
		candidates[i] = events[i].Interval()
	}
	first, last := events[0], events[len(events)-1]

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		existing, err := intervals(ctx, tx, first.Start(), last.End())
		if err != nil {
			return err
		}
		if err := s.check(candidates, existing); err != nil {
			return err
		}
		if _, err := tx.NewInsert().Model(series).Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewInsert().Model(&events).Exec(ctx); err != nil {
			return err
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("CreateSeries: %w", err)
	}

	s.observer.EventsCreated(len(events))
	return &SeriesResult{
		Series:           series,
		Events:           events,
		Truncated:        exp.Truncated,
		TimezoneFallback: exp.TimezoneFallback,
	}, nil
}

// EditEvent changes the given fields of one event. For an occurrence of a
// series this records an override exception (merged into any earlier one)
// and leaves the series and its other occurrences alone. The edited slot is
// conflict-checked against everything except the event itself.
func (s *Store) EditEvent(ctx context.Context, id string, patch exception.Override) (*Event, error) {
	if patch.IsEmpty() {
		return nil, fmt.Errorf("EditEvent: %w: nothing to change", ErrInvalidEvent)
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, fmt.Errorf("EditEvent: %w: title is blank", ErrInvalidEvent)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e := new(Event)
	var applied *exception.Exception
	if err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := findEvent(ctx, tx, id, e); err != nil {
			return err
		}
		next := exception.ApplyOverride(e.Occurrence(), patch)
		if !next.End.After(next.Start) {
			return fmt.Errorf("%w: end date must be after start date", ErrInvalidEvent)
		}

		existing, err := intervals(ctx, tx, next.Start, next.End)
		if err != nil {
			return err
		}
		candidate := conflict.Interval{ID: e.ID, Title: next.Title, Start: next.Start, End: next.End}
		if err := s.check([]conflict.Interval{candidate}, conflict.Without(existing, e.ID)); err != nil {
			return err
		}

		if e.SeriesID != "" {
			// record the slot as resolved so later partial edits merge cleanly
			if patch.Start != nil || patch.End != nil {
				start, end := next.Start, next.End
				patch.Start, patch.End = &start, &end
			}
			exc, err := s.applyException(ctx, tx, e.SeriesID, e.OriginalStart(), exception.KindOverride, &patch)
			if err != nil {
				return err
			}
			applied = &exc
			e.IsException = true
		}
		e.setOccurrence(next)
		return e.Upsert(ctx, tx)
	}); err != nil {
		return nil, fmt.Errorf("EditEvent: %w", err)
	}
	if applied != nil {
		s.observer.ExceptionApplied(applied.Kind)
	}
	return e, nil
}

// DeleteEvent removes an event. Deleting an occurrence of a series records
// a skip exception so the occurrence stays gone.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	skipped := false
	if err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		e := new(Event)
		if err := findEvent(ctx, tx, id, e); err != nil {
			return err
		}
		if e.SeriesID != "" {
			if _, err := s.applyException(ctx, tx, e.SeriesID, e.OriginalStart(), exception.KindSkip, nil); err != nil {
				return err
			}
			skipped = true
		}
		_, err := tx.NewDelete().
			Model((*Event)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		return err
	}); err != nil {
		return fmt.Errorf("DeleteEvent: %w", err)
	}
	if skipped {
		s.observer.ExceptionApplied(exception.KindSkip)
	}
	return nil
}

// DeleteOccurrence skips the occurrence of seriesID that the rule places at
// originalStart, whether or not it was edited or already deleted. Repeating
// the call leaves the single skip exception as it is.
func (s *Store) DeleteOccurrence(ctx context.Context, seriesID string, originalStart time.Time) (exception.Exception, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var exc exception.Exception
	if err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		series := new(Series)
		if err := findSeries(ctx, tx, seriesID, series); err != nil {
			return err
		}
		if ok, err := s.generates(series, originalStart); err != nil {
			return err
		} else if !ok {
			return fmt.Errorf("%w: series %s has no occurrence at %s", ErrNotFound, seriesID, originalStart.UTC().Format(time.RFC3339))
		}

		var err error
		if exc, err = s.applyException(ctx, tx, seriesID, originalStart, exception.KindSkip, nil); err != nil {
			return err
		}
		_, err = tx.NewDelete().
			Model((*Event)(nil)).
			Where("series_id = ?", seriesID).
			Where("original_start = ?", originalStart.Unix()).
			Exec(ctx)
		return err
	}); err != nil {
		return exception.Exception{}, fmt.Errorf("DeleteOccurrence: %w", err)
	}
	s.observer.ExceptionApplied(exception.KindSkip)
	return exc, nil
}

// generates reports whether the series rule produces an occurrence whose
// original start is at.
func (s *Store) generates(series *Series, at time.Time) (bool, error) {
	d, err := series.Descriptor()
	if err != nil {
		return false, err
	}
	exp, err := recurrence.Expand(d, s.limits.Expansion)
	if err != nil {
		return false, err
	}
	for _, occ := range exp.Occurrences {
		if occ.OriginalStart.Unix() == at.Unix() {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) applyException(ctx context.Context, tx bun.IDB, seriesID string, originalStart time.Time, kind exception.Kind, payload *exception.Override) (exception.Exception, error) {
	prev, err := findException(ctx, tx, seriesID, originalStart)
	if err != nil {
		return exception.Exception{}, err
	}
	next, err := exception.Apply(prev, seriesID, originalStart, kind, payload, s.now())
	if err != nil {
		return exception.Exception{}, err
	}
	if err := upsertException(ctx, tx, next); err != nil {
		return exception.Exception{}, err
	}
	return next, nil
}

func (s *Store) check(candidates, existing []conflict.Interval) error {
	if len(candidates) == 1 {
		if _, clash := conflict.First(candidates[0], existing); !clash {
			return nil
		}
	}
	report := conflict.Detect(candidates, existing, s.limits.ReportCap)
	if !report.HasConflicts() {
		return nil
	}
	s.observer.ConflictRejected(report.Total)
	return &ConflictError{Report: report}
}

// ListEvents returns the events overlapping [from, to) ordered by start. A
// zero bound is open.
func (s *Store) ListEvents(ctx context.Context, from, to time.Time) ([]*Event, error) {
	events := make([]*Event, 0)
	q := s.db.NewSelect().
		Model(&events).
		Order("start_date ASC", "id ASC")
	if !to.IsZero() {
		q = q.Where("start_date < ?", to.Unix())
	}
	if !from.IsZero() {
		q = q.Where("end_date > ?", from.Unix())
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("ListEvents: %w", err)
	}
	return events, nil
}

func (s *Store) GetEvent(ctx context.Context, id string) (*Event, error) {
	e := new(Event)
	if err := findEvent(ctx, s.db, id, e); err != nil {
		return nil, fmt.Errorf("GetEvent: %w", err)
	}
	return e, nil
}

// Intervals is ListEvents reduced to what the conflict detector needs.
func (s *Store) Intervals(ctx context.Context, from, to time.Time) ([]conflict.Interval, error) {
	out, err := intervals(ctx, s.db, from, to)
	if err != nil {
		return nil, fmt.Errorf("Intervals: %w", err)
	}
	return out, nil
}

func (s *Store) GetSeries(ctx context.Context, id string) (*Series, error) {
	series := new(Series)
	if err := findSeries(ctx, s.db, id, series); err != nil {
		return nil, fmt.Errorf("GetSeries: %w", err)
	}
	return series, nil
}

// Exceptions lists a series' exceptions ordered by original start.
func (s *Store) Exceptions(ctx context.Context, seriesID string) ([]exception.Exception, error) {
	if err := findSeries(ctx, s.db, seriesID, new(Series)); err != nil {
		return nil, fmt.Errorf("Exceptions: %w", err)
	}
	rows := make([]*SeriesException, 0)
	if err := s.db.NewSelect().
		Model(&rows).
		Where("series_id = ?", seriesID).
		Order("original_start ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("Exceptions: %w", err)
	}
	out := make([]exception.Exception, len(rows))
	for i, row := range rows {
		out[i] = row.Exception()
	}
	return out, nil
}

// Suggest finds the first free slot of the desired length at or after
// desired.Start. It only reads, so the answer can be stale by the time the
// caller books it; booking goes through CreateEvent's check again.
func (s *Store) Suggest(ctx context.Context, desired conflict.Interval) (conflict.Interval, bool, error) {
	if !desired.End.After(desired.Start) {
		return conflict.Interval{}, false, fmt.Errorf("Suggest: %w: end date must be after start date", ErrInvalidEvent)
	}
	horizon := s.limits.Slot.Horizon
	if horizon <= 0 {
		horizon = conflict.DefaultSlotLimits.Horizon
	}
	existing, err := intervals(ctx, s.db, desired.Start, desired.End.Add(horizon))
	if err != nil {
		return conflict.Interval{}, false, fmt.Errorf("Suggest: %w", err)
	}
	slot, ok := conflict.NextFreeSlot(desired, existing, s.limits.Slot)
	return slot, ok, nil
}

func intervals(ctx context.Context, db bun.IDB, from, to time.Time) ([]conflict.Interval, error) {
	events := make([]*Event, 0)
	q := db.NewSelect().
		Model(&events).
		Column("id", "title", "start_date", "end_date").
		Order("start_date ASC")
	if !to.IsZero() {
		q = q.Where("start_date < ?", to.Unix())
	}
	if !from.IsZero() {
		q = q.Where("end_date > ?", from.Unix())
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("intervals: %w", err)
	}
	out := make([]conflict.Interval, len(events))
	for i, e := range events {
		out[i] = e.Interval()
	}
	return out, nil
}

func findEvent(ctx context.Context, db bun.IDB, id string, e *Event) error {
	err := db.NewSelect().Model(e).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: event %s", ErrNotFound, id)
	}
	return err
}

func findSeries(ctx context.Context, db bun.IDB, id string, series *Series) error {
	err := db.NewSelect().Model(series).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: series %s", ErrNotFound, id)
	}
	return err
}
