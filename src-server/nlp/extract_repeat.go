package nlp

import (
	"regexp"
	"strings"
	"time"

	"schedly/src-server/recurrence"
)

var (
	dayWord   = regexp.MustCompile(`(?i)\b` + dayPattern + `\b`)
	dayList   = regexp.MustCompile(`(?i)\b(?:(every|each|on)\s+)?` + dayPattern + `\b(?:(?:\s*(?:/|,|&|\+|\band\b|\bor\b))*\s*` + dayPattern + `\b)*`)
	dayCodes  = regexp.MustCompile(`\b(MTWRF|MTWThF|MTWTF|MWF|MW|WF|MF|TR|TTh|TuTh|TTH)\b`)
	dayGroups = regexp.MustCompile(`(?i)\b(?:(?:every|each)\s+)?(weekdays?|weekends?|daily|everyday|every\s+day|each\s+day)\b`)

	everyNWeeks = regexp.MustCompile(`(?i)\bevery\s+(?:(other|second|2nd)(?:\s+weeks?)?|(` + numberWords + `|3rd)\s+weeks?)\b`)
	everyWeek   = regexp.MustCompile(`(?i)\b(?:every|each)\s+week\b|\bweekly\b`)
	biweekly    = regexp.MustCompile(`(?i)\b(?:bi-?weekly|fortnightly)\b`)
	forNWeeks   = regexp.MustCompile(`(?i)\bfor\s+(` + numberWords + `|a)\s+weeks?\b`)
	monthly     = regexp.MustCompile(`(?i)\b(?:monthly|(?:every|each)\s+month)\b`)
)

var codeDays = map[string][]time.Weekday{
	"M": {time.Monday}, "T": {time.Tuesday}, "Tu": {time.Tuesday}, "W": {time.Wednesday},
	"R": {time.Thursday}, "Th": {time.Thursday}, "TH": {time.Thursday}, "F": {time.Friday},
}

// WeekdaySet is what a list or group keyword resolved to. Recurring is set
// when the phrasing itself asks for repetition ("every monday", "mondays",
// "weekdays"), as opposed to naming a single day ("on friday").
type WeekdaySet struct {
	Days      []time.Weekday
	Recurring bool
	Group     bool
}

// ExtractWeekdays collects every weekday list, course-style code ("MWF",
// "TTh") and group keyword. A group keyword wins over explicit days.
func ExtractWeekdays(text string) Match[WeekdaySet] {
	var set WeekdaySet
	var groupDays, listDays []time.Weekday
	found := false

	for {
		g := dayGroups.FindStringSubmatchIndex(text)
		if g == nil {
			break
		}
		found, set.Recurring, set.Group = true, true, true
		word := strings.ToLower(text[g[2]:g[3]])
		switch {
		case strings.HasPrefix(word, "weekday"):
			groupDays = append(groupDays, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday)
		case strings.HasPrefix(word, "weekend"):
			groupDays = append(groupDays, time.Saturday, time.Sunday)
		default:
			groupDays = append(groupDays, allDays...)
		}
		text = cut(text, g[0], g[1])
	}

	for {
		g := dayCodes.FindStringSubmatchIndex(text)
		if g == nil {
			break
		}
		found, set.Recurring = true, true
		listDays = append(listDays, splitDayCode(text[g[2]:g[3]])...)
		text = cut(text, g[0], g[1])
	}

	for {
		g := dayList.FindStringSubmatchIndex(text)
		if g == nil {
			break
		}
		found = true
		span := text[g[0]:g[1]]
		words := dayWord.FindAllString(span, -1)
		for _, w := range words {
			if wd, ok := weekdayOf(w); ok {
				listDays = append(listDays, wd)
			}
		}
		prefix := ""
		if g[2] >= 0 {
			prefix = strings.ToLower(text[g[2]:g[3]])
		}
		// "mondays" repeats, "tues" is just short
		plural := strings.HasSuffix(strings.ToLower(words[len(words)-1]), "days")
		if prefix == "every" || prefix == "each" || plural || len(words) > 1 {
			set.Recurring = true
		}
		text = cut(text, g[0], g[1])
	}

	if !found {
		return noMatch[WeekdaySet](text)
	}
	if len(groupDays) > 0 {
		set.Days = recurrence.NormalizeWeekdays(groupDays)
	} else {
		set.Days = recurrence.NormalizeWeekdays(listDays)
	}
	return matched(set, text)
}

var allDays = []time.Weekday{
	time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday,
}

// splitDayCode reads "MWF" or "TuTh" left to right, preferring the two
// letter tokens.
func splitDayCode(code string) []time.Weekday {
	var out []time.Weekday
	for i := 0; i < len(code); {
		if i+2 <= len(code) {
			if days, ok := codeDays[code[i:i+2]]; ok {
				out = append(out, days...)
				i += 2
				continue
			}
		}
		days, ok := codeDays[code[i:i+1]]
		if !ok {
			return nil
		}
		out = append(out, days...)
		i++
	}
	return out
}

// Cadence is the repeat interval and length phrases.
type Cadence struct {
	EveryWeeks int
	// ForWeeks is "for N weeks", 0 when absent.
	ForWeeks int
	Monthly  bool
}

// ExtractCadence reads "every other week", "every 3 weeks", "biweekly",
// "weekly", "for 6 weeks" and "monthly".
func ExtractCadence(text string) Match[Cadence] {
	c := Cadence{}
	found := false

	if g := forNWeeks.FindStringSubmatchIndex(text); g != nil {
		if n, ok := numberOf(text[g[2]:g[3]]); ok && n > 0 {
			c.ForWeeks, found = n, true
			text = cut(text, g[0], g[1])
		}
	}
	if g := everyNWeeks.FindStringSubmatchIndex(text); g != nil {
		n, ok := 2, true
		if g[4] >= 0 {
			if word := strings.ToLower(text[g[4]:g[5]]); word == "3rd" {
				n = 3
			} else {
				n, ok = numberOf(word)
			}
		}
		if ok && n > 0 {
			c.EveryWeeks, found = n, true
			text = cut(text, g[0], g[1])
		}
	}
	if g := biweekly.FindStringIndex(text); g != nil {
		c.EveryWeeks, found = 2, true
		text = cut(text, g[0], g[1])
	}
	// "weekly review every week" says it twice
	for g := everyWeek.FindStringIndex(text); g != nil; g = everyWeek.FindStringIndex(text) {
		if c.EveryWeeks == 0 {
			c.EveryWeeks = 1
		}
		found = true
		text = cut(text, g[0], g[1])
	}
	if g := monthly.FindStringIndex(text); g != nil {
		c.Monthly, found = true, true
		text = cut(text, g[0], g[1])
	}

	if !found {
		return noMatch[Cadence](text)
	}
	return matched(c, text)
}
