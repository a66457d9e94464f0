package recurrence

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// Weekdays are numbered 0=Sunday through 6=Saturday everywhere: JSON, the
// database column and time.Weekday agree. This file holds the only
// conversions to other numberings.

var toRRule = [7]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

// WeekdayFromIndex validates a 0..6 index.
func WeekdayFromIndex(i int) (time.Weekday, error) {
	if i < 0 || i > 6 {
		return 0, &ValidationError{Field: "weekdays", Reason: fmt.Sprintf("weekday %d outside 0..6", i)}
	}
	return time.Weekday(i), nil
}

func WeekdaysFromIndexes(idx []int) ([]time.Weekday, error) {
	out := make([]time.Weekday, 0, len(idx))
	for _, i := range idx {
		wd, err := WeekdayFromIndex(i)
		if err != nil {
			return nil, err
		}
		out = append(out, wd)
	}
	return NormalizeWeekdays(out), nil
}

func WeekdayIndexes(days []time.Weekday) []int {
	out := make([]int, len(days))
	for i, d := range days {
		out[i] = int(d)
	}
	return out
}

// NormalizeWeekdays sorts and de-duplicates.
func NormalizeWeekdays(days []time.Weekday) []time.Weekday {
	seen := [7]bool{}
	out := make([]time.Weekday, 0, len(days))
	for _, d := range days {
		if d < time.Sunday || d > time.Saturday || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// FormatWeekdays renders the comma separated column form, e.g. "1,3,5".
func FormatWeekdays(days []time.Weekday) string {
	parts := make([]string, 0, len(days))
	for _, d := range NormalizeWeekdays(days) {
		parts = append(parts, strconv.Itoa(int(d)))
	}
	return strings.Join(parts, ",")
}

func ParseWeekdays(s string) ([]time.Weekday, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	idx := make([]int, 0, 7)
	for _, part := range strings.Split(s, ",") {
		i, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, &ValidationError{Field: "weekdays", Reason: fmt.Sprintf("bad weekday %q", part)}
		}
		idx = append(idx, i)
	}
	return WeekdaysFromIndexes(idx)
}

func rruleWeekdays(days []time.Weekday) []rrule.Weekday {
	out := make([]rrule.Weekday, 0, len(days))
	for _, d := range NormalizeWeekdays(days) {
		out = append(out, toRRule[d])
	}
	return out
}

func weekdayFromRRule(w rrule.Weekday) (time.Weekday, bool) {
	for i, candidate := range toRRule {
		if candidate.Day() == w.Day() {
			return time.Weekday(i), true
		}
	}
	return 0, false
}
