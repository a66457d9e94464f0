// Package exception tracks per-occurrence changes to a series: an occurrence
// is either skipped (deleted) or overridden (edited). There is at most one
// exception per (series, original start) and applying another one replaces
// it in place.
package exception

import (
	"errors"
	"fmt"
	"time"

	"schedly/src-server/recurrence"
)

type Kind string

const (
	KindSkip     Kind = "skip"
	KindOverride Kind = "override"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindSkip, KindOverride:
		return k, nil
	default:
		return "", fmt.Errorf("ParseKind: %w: unknown kind %q", ErrInvalid, s)
	}
}

var ErrInvalid = errors.New("invalid exception")

// Override holds the fields an edit changed. Nil means "keep the series
// value".
type Override struct {
	Title       *string
	Description *string
	Location    *string
	Start       *time.Time
	End         *time.Time
}

func (o Override) IsEmpty() bool {
	return o.Title == nil && o.Description == nil && o.Location == nil && o.Start == nil && o.End == nil
}

// merge lays next over o.
func (o Override) merge(next Override) Override {
	if next.Title != nil {
		o.Title = next.Title
	}
	if next.Description != nil {
		o.Description = next.Description
	}
	if next.Location != nil {
		o.Location = next.Location
	}
	if next.Start != nil {
		// a bare move keeps the length an earlier edit gave the slot
		if next.End == nil && o.Start != nil && o.End != nil {
			end := next.Start.Add(o.End.Sub(*o.Start))
			o.End = &end
		}
		o.Start = next.Start
	}
	if next.End != nil {
		o.End = next.End
	}
	return o
}

type Key struct {
	SeriesID      string
	OriginalStart int64
}

func KeyOf(seriesID string, originalStart time.Time) Key {
	return Key{SeriesID: seriesID, OriginalStart: originalStart.UTC().Unix()}
}

type Exception struct {
	SeriesID      string
	OriginalStart time.Time
	Kind          Kind
	Override      Override
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (e Exception) Key() Key { return KeyOf(e.SeriesID, e.OriginalStart) }

// Apply computes the exception that results from applying kind/payload on
// top of prev (nil when there is none yet).
//
//	none     + skip     -> skip
//	none     + override -> override(payload)
//	skip     + skip     -> skip, unchanged
//	skip     + override -> override(payload)
//	override + skip     -> skip, override fields dropped
//	override + override -> override(prev merged with payload)
func Apply(prev *Exception, seriesID string, originalStart time.Time, kind Kind, payload *Override, now time.Time) (Exception, error) {
	if seriesID == "" {
		return Exception{}, fmt.Errorf("Apply: %w: series id is blank", ErrInvalid)
	}
	if originalStart.IsZero() {
		return Exception{}, fmt.Errorf("Apply: %w: original start is blank", ErrInvalid)
	}
	if prev != nil && prev.Key() != KeyOf(seriesID, originalStart) {
		return Exception{}, fmt.Errorf("Apply: %w: previous exception belongs to another occurrence", ErrInvalid)
	}

	next := Exception{
		SeriesID:      seriesID,
		OriginalStart: originalStart.UTC(),
		Kind:          kind,
		CreatedAt:     now.UTC(),
		UpdatedAt:     now.UTC(),
	}
	if prev != nil {
		next.CreatedAt = prev.CreatedAt
	}

	switch kind {
	case KindSkip:
		if prev != nil && prev.Kind == KindSkip {
			return *prev, nil
		}
	case KindOverride:
		if payload == nil || payload.IsEmpty() {
			return Exception{}, fmt.Errorf("Apply: %w: override without changes", ErrInvalid)
		}
		if prev != nil && prev.Kind == KindOverride {
			next.Override = prev.Override.merge(*payload)
		} else {
			next.Override = *payload
		}
		o := next.Override
		if o.Start != nil && o.End != nil && !o.End.After(*o.Start) {
			return Exception{}, fmt.Errorf("Apply: %w: end must be after start", ErrInvalid)
		}
	default:
		return Exception{}, fmt.Errorf("Apply: %w: unknown kind %q", ErrInvalid, kind)
	}
	return next, nil
}

// Resolve applies exceptions to freshly materialized occurrences: skipped
// ones disappear and overridden ones take the edited values while keeping
// their OriginalStart.
func Resolve(occs []recurrence.Occurrence, exceptions []Exception) []recurrence.Occurrence {
	byKey := make(map[Key]Exception, len(exceptions))
	for _, e := range exceptions {
		byKey[e.Key()] = e
	}
	out := make([]recurrence.Occurrence, 0, len(occs))
	for _, occ := range occs {
		e, ok := byKey[KeyOf(occ.SeriesID, occ.OriginalStart)]
		if !ok {
			out = append(out, occ)
			continue
		}
		if e.Kind == KindSkip {
			continue
		}
		out = append(out, ApplyOverride(occ, e.Override))
	}
	return out
}

// ApplyOverride returns occ with the override's fields laid over it. A moved
// start without an explicit end keeps the occurrence's duration.
func ApplyOverride(occ recurrence.Occurrence, o Override) recurrence.Occurrence {
	duration := occ.End.Sub(occ.Start)
	if o.Title != nil {
		occ.Title = *o.Title
	}
	if o.Description != nil {
		occ.Description = *o.Description
	}
	if o.Location != nil {
		occ.Location = *o.Location
	}
	if o.Start != nil {
		occ.Start = o.Start.UTC()
		occ.End = occ.Start.Add(duration)
	}
	if o.End != nil {
		occ.End = o.End.UTC()
	}
	occ.IsException = true
	return occ
}
