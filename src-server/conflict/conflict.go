// Package conflict finds overlapping time intervals.
//
// Intervals are half-open: [Start, End). Two meetings that touch, one ending
// at 10:00 and the next starting at 10:00, do not conflict.
package conflict

import (
	"sort"
	"time"
)

type Interval struct {
	// ID identifies the stored event, empty for candidates.
	ID    string
	Title string
	Start time.Time
	End   time.Time
}

func (i Interval) Duration() time.Duration { return i.End.Sub(i.Start) }

// Overlaps is symmetric.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// First returns the earliest-starting existing interval that overlaps
// candidate.
func First(candidate Interval, existing []Interval) (Interval, bool) {
	var (
		found Interval
		ok    bool
	)
	for _, e := range existing {
		if !Overlaps(candidate, e) {
			continue
		}
		if !ok || e.Start.Before(found.Start) {
			found, ok = e, true
		}
	}
	return found, ok
}

type Conflict struct {
	Candidate Interval
	Existing  Interval
}

// Report lists conflicts up to a cap. Total always counts every
// conflicting pair, so a truncated report still says how bad it is.
type Report struct {
	Conflicts []Conflict
	Total     int
	Truncated bool
}

func (r Report) HasConflicts() bool { return r.Total > 0 }

const DefaultReportCap = 50

// Detect checks every candidate against every existing interval. It never
// stops at the first hit: batch creation needs the whole picture before it
// refuses.
func Detect(candidates, existing []Interval, limit int) Report {
	if limit <= 0 {
		limit = DefaultReportCap
	}
	sorted := make([]Interval, len(existing))
	copy(sorted, existing)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	report := Report{Conflicts: []Conflict{}}
	for _, c := range candidates {
		// everything from here on starts at or after c.End
		end := sort.Search(len(sorted), func(i int) bool { return !sorted[i].Start.Before(c.End) })
		for _, e := range sorted[:end] {
			if !Overlaps(c, e) {
				continue
			}
			report.Total++
			if len(report.Conflicts) < limit {
				report.Conflicts = append(report.Conflicts, Conflict{Candidate: c, Existing: e})
			}
		}
	}
	report.Truncated = report.Total > len(report.Conflicts)
	return report
}

// Without drops intervals with the given ID, used when an event is checked
// against a set that still contains its own old slot.
func Without(intervals []Interval, id string) []Interval {
	out := make([]Interval, 0, len(intervals))
	for _, i := range intervals {
		if i.ID != id {
			out = append(out, i)
		}
	}
	return out
}
