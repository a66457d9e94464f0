package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

var freqToRRule = map[Frequency]rrule.Frequency{
	Daily:   rrule.DAILY,
	Weekly:  rrule.WEEKLY,
	Monthly: rrule.MONTHLY,
}

// RRule renders d as an RFC 5545 RRULE value (without the "RRULE:" prefix),
// e.g. "FREQ=WEEKLY;INTERVAL=1;BYDAY=MO,WE,FR;UNTIL=20261211T075959Z".
// UNTIL is the last second of the Until date in the series zone.
func (d Descriptor) RRule() (string, error) {
	r, err := d.resolve()
	if err != nil {
		return "", fmt.Errorf("(Descriptor).RRule: %w", err)
	}
	opt := rrule.ROption{
		Freq:     freqToRRule[r.freq],
		Interval: r.interval,
		Dtstart:  d.Start.In(r.loc),
	}
	switch r.freq {
	case Weekly:
		opt.Byweekday = rruleWeekdays(d.Days())
	case Monthly:
		opt.Bymonthday = []int{r.anchor.Day}
	}
	if !r.until.IsZero() {
		opt.Until = At(r.until, TimeOfDay{Hour: 23, Minute: 59, Second: 59}, r.loc)
	}
	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return "", fmt.Errorf("(Descriptor).RRule: %w", err)
	}
	for _, line := range strings.Split(rule.String(), "\n") {
		if strings.HasPrefix(line, "RRULE:") {
			return strings.TrimPrefix(line, "RRULE:"), nil
		}
	}
	return rule.String(), nil
}

// FromRRule builds a descriptor from an RRULE value anchored at start/end.
// Only the subset the materializer understands is accepted: DAILY, WEEKLY
// with plain BYDAY, MONTHLY on the anchor's day, INTERVAL, UNTIL and COUNT.
// COUNT is turned into an inclusive Until by running the rule.
func FromRRule(value string, start, end time.Time, tz string) (Descriptor, error) {
	d := Descriptor{Start: start, End: end, Timezone: tz}
	loc, _, err := d.location()
	if err != nil {
		return Descriptor{}, &ValidationError{Field: "timezone", Reason: err.Error()}
	}

	body := strings.TrimSpace(value)
	body = strings.TrimPrefix(body, "RRULE:")
	opt, err := rrule.StrToROption(body)
	if err != nil {
		return Descriptor{}, &ValidationError{Field: "rrule", Reason: err.Error()}
	}

	switch opt.Freq {
	case rrule.DAILY:
		d.Frequency = Daily
	case rrule.WEEKLY:
		d.Frequency = Weekly
	case rrule.MONTHLY:
		d.Frequency = Monthly
	default:
		return Descriptor{}, &ValidationError{Field: "rrule", Reason: "only DAILY, WEEKLY and MONTHLY are supported"}
	}
	if len(opt.Bysetpos) > 0 || len(opt.Bymonth) > 0 || len(opt.Byyearday) > 0 ||
		len(opt.Byweekno) > 0 || len(opt.Byhour) > 0 || len(opt.Byminute) > 0 {
		return Descriptor{}, &ValidationError{Field: "rrule", Reason: "unsupported BY* part"}
	}
	d.Interval = max(opt.Interval, 1)

	for _, wd := range opt.Byweekday {
		if wd.N() != 0 {
			return Descriptor{}, &ValidationError{Field: "rrule", Reason: "ordinal BYDAY is not supported"}
		}
		day, ok := weekdayFromRRule(wd)
		if !ok {
			return Descriptor{}, &ValidationError{Field: "rrule", Reason: "bad BYDAY"}
		}
		d.Weekdays = append(d.Weekdays, day)
	}
	d.Weekdays = NormalizeWeekdays(d.Weekdays)
	if d.Frequency != Weekly && len(d.Weekdays) > 0 {
		return Descriptor{}, &ValidationError{Field: "rrule", Reason: "BYDAY needs FREQ=WEEKLY"}
	}
	anchorDay := start.In(loc).Day()
	for _, md := range opt.Bymonthday {
		if md != anchorDay {
			return Descriptor{}, &ValidationError{Field: "rrule", Reason: "BYMONTHDAY must match the start date"}
		}
	}

	switch {
	case !opt.Until.IsZero():
		d.Until = DateOf(opt.Until.In(loc))
	case opt.Count > 0:
		opt.Dtstart = start.In(loc)
		rule, err := rrule.NewRRule(*opt)
		if err != nil {
			return Descriptor{}, &ValidationError{Field: "rrule", Reason: err.Error()}
		}
		all := rule.All()
		if len(all) > 0 {
			d.Until = DateOf(all[len(all)-1].In(loc))
		}
	}

	if err := d.Validate(); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}
