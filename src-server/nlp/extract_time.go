package nlp

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"schedly/src-server/recurrence"
)

const clockSrc = `(\d{1,2})(?::(\d{2}))?(?:\s*(am|pm|a|p)\b)?`

var (
	timeRange  = regexp.MustCompile(`(?i)(?:\b(?:from|between)\s+)?\b` + clockSrc + `\s*(?:-|to|and)\s*` + clockSrc)
	singleTime = regexp.MustCompile(`(?i)(?:(\bat|@)\s*)?\b` + clockSrc)
	duration   = regexp.MustCompile(`(?i)(?:\bfor\s+)?(?:\b(\d+(?:\.\d+)?|an?|one|two|three|half\s+an?)\s*(hours?|hrs?|minutes?|mins?)\b|\b(\d+(?:\.\d+)?)(h|m)\b)`)
)

type TimeSlot struct {
	Start recurrence.TimeOfDay
	End   recurrence.TimeOfDay
	// HasEnd is false when only a start (and maybe a duration) was given.
	HasEnd   bool
	Duration time.Duration
}

type clockToken struct {
	hour     int
	minute   int
	meridiem string
}

func clockAt(text string, g []int, first int) (clockToken, bool) {
	group := func(i int) string {
		i = (first + i) * 2
		if g[i] < 0 {
			return ""
		}
		return text[g[i]:g[i+1]]
	}
	var c clockToken
	c.hour, _ = strconv.Atoi(group(0))
	if s := group(1); s != "" {
		c.minute, _ = strconv.Atoi(s)
	}
	c.meridiem = strings.TrimSuffix(strings.ToLower(group(2)), "m")
	return c, c.hour <= 24 && c.minute <= 59
}

// clock converts to 24h using meridiem ("a" or "p", empty for none).
func (c clockToken) clock(meridiem string) (recurrence.TimeOfDay, bool) {
	h := c.hour
	switch meridiem {
	case "a":
		if h < 1 || h > 12 {
			return recurrence.TimeOfDay{}, false
		}
		if h == 12 {
			h = 0
		}
	case "p":
		if h < 1 || h > 12 {
			return recurrence.TimeOfDay{}, false
		}
		if h != 12 {
			h += 12
		}
	default:
		if h > 23 {
			return recurrence.TimeOfDay{}, false
		}
	}
	return recurrence.TimeOfDay{Hour: h, Minute: c.minute}, true
}

// afternoon guesses a meridiem for a bare hour: nobody schedules a
// meeting at 3 in the morning without saying so.
func (c clockToken) afternoon() string {
	if c.hour >= 1 && c.hour <= 6 {
		return "p"
	}
	return ""
}

func minutes(t recurrence.TimeOfDay) int { return t.Hour*60 + t.Minute }

// boundedMatch rejects matches glued to other numbers, like the "10-11"
// inside "2026-10-11" or "9/10-9/12".
func boundedMatch(text string, start, end int) bool {
	if start > 0 && strings.ContainsRune("/-:.", rune(text[start-1])) {
		return false
	}
	if end < len(text) && strings.ContainsRune("0123456789/:", rune(text[end])) {
		return false
	}
	return true
}

// ExtractTimeRange finds "9:30-10:20", "9-10am", "2pm to 3:30pm". A
// meridiem written on one side only is shared with the other side.
func ExtractTimeRange(text string) Match[TimeSlot] {
	for _, g := range timeRange.FindAllStringSubmatchIndex(text, -1) {
		if !boundedMatch(text, g[0], g[1]) {
			continue
		}
		s, ok1 := clockAt(text, g, 1)
		e, ok2 := clockAt(text, g, 4)
		if !ok1 || !ok2 {
			continue
		}
		start, end, ok := resolveRange(s, e)
		if !ok {
			continue
		}
		return matched(TimeSlot{Start: start, End: end, HasEnd: true}, cut(text, g[0], g[1]))
	}
	return noMatch[TimeSlot](text)
}

func resolveRange(s, e clockToken) (recurrence.TimeOfDay, recurrence.TimeOfDay, bool) {
	sm, em := s.meridiem, e.meridiem
	inheritedStart, inheritedEnd := false, false
	switch {
	case sm == "" && em != "":
		sm, inheritedStart = em, true
	case sm != "" && em == "":
		em, inheritedEnd = sm, true
	case sm == "" && em == "":
		sm = s.afternoon()
	}

	start, ok := s.clock(sm)
	if !ok && inheritedStart {
		// "13-14pm" style: the bare side was already 24h
		start, ok = s.clock("")
	}
	if !ok {
		return start, start, false
	}
	end, ok := e.clock(em)
	if !ok {
		return start, start, false
	}

	if minutes(end) <= minutes(start) {
		switch {
		case inheritedStart:
			// "11-1pm" means 11am to 1pm
			if alt, ok := s.clock(flip(sm)); ok && minutes(alt) < minutes(end) {
				start = alt
			}
		case inheritedEnd:
			// "9am-5" means 9am to 5pm
			if alt, ok := e.clock(flip(em)); ok && minutes(alt) > minutes(start) {
				end = alt
			}
		case e.meridiem == "" && end.Hour < 12:
			// bare "11-1" or "1:30-2:45" after the afternoon guess
			if alt := (recurrence.TimeOfDay{Hour: end.Hour + 12, Minute: end.Minute}); minutes(alt) > minutes(start) {
				end = alt
			}
		}
	}
	return start, end, true
}

func flip(meridiem string) string {
	if meridiem == "a" {
		return "p"
	}
	return "a"
}

// ExtractTime finds a single start time. A bare number only counts when it
// follows "at" or "@"; otherwise a colon or meridiem is required so course
// codes and room numbers stay in the title.
func ExtractTime(text string) Match[TimeSlot] {
	for _, g := range singleTime.FindAllStringSubmatchIndex(text, -1) {
		if !boundedMatch(text, g[0], g[1]) {
			continue
		}
		hasAt := g[2] >= 0
		c, ok := clockAt(text, g, 2)
		if !ok {
			continue
		}
		hasColon := g[6] >= 0
		if !hasAt && !hasColon && c.meridiem == "" {
			continue
		}
		meridiem := c.meridiem
		if meridiem == "" && !hasColon {
			meridiem = c.afternoon()
		}
		start, ok := c.clock(meridiem)
		if !ok {
			continue
		}
		return matched(TimeSlot{Start: start}, cut(text, g[0], g[1]))
	}
	return noMatch[TimeSlot](text)
}

// ExtractDuration finds "for 90 min", "for an hour", "1.5 hours", "45m".
func ExtractDuration(text string) Match[time.Duration] {
	for _, g := range duration.FindAllStringSubmatchIndex(text, -1) {
		var amount, unit string
		if g[2] >= 0 {
			amount, unit = text[g[2]:g[3]], text[g[4]:g[5]]
		} else {
			amount, unit = text[g[6]:g[7]], text[g[8]:g[9]]
		}
		amount, unit = strings.ToLower(amount), strings.ToLower(unit)
		var n float64
		switch {
		case strings.HasPrefix(amount, "half"):
			n = 0.5
		default:
			if i, ok := numberOf(amount); ok {
				n = float64(i)
			} else if f, err := strconv.ParseFloat(amount, 64); err == nil {
				n = f
			} else {
				continue
			}
		}
		d := time.Duration(n * float64(time.Minute))
		if strings.HasPrefix(unit, "h") {
			d = time.Duration(n * float64(time.Hour))
		}
		if d <= 0 || d > 24*time.Hour {
			continue
		}
		return matched(d, cut(text, g[0], g[1]))
	}
	return noMatch[time.Duration](text)
}
