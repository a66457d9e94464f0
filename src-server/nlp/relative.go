package nlp

import (
	"regexp"
	"strings"

	"schedly/src-server/recurrence"
)

var relativePhrase = regexp.MustCompile(`(?i)\b(?:(today|tonight|tomorrow|tmrw|tmr)|(this|next|coming)\s+(` + dayPattern + `))\b`)

// substituteRelative rewrites every relative phrase as an ISO date so the
// date extractors see ordinary dates.
func substituteRelative(text string, today recurrence.Date) string {
	var b strings.Builder
	last := 0
	for _, m := range relativePhrase.FindAllStringSubmatchIndex(text, -1) {
		d, ok := relativeDate(text, m, today)
		if !ok {
			continue
		}
		b.WriteString(text[last:m[0]])
		b.WriteString(d.String())
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

func relativeDate(text string, m []int, today recurrence.Date) (recurrence.Date, bool) {
	if m[2] >= 0 {
		switch strings.ToLower(text[m[2]:m[3]]) {
		case "today", "tonight":
			return today, true
		default:
			return today.AddDays(1), true
		}
	}
	wd, ok := weekdayOf(text[m[6]:m[7]])
	if !ok {
		return recurrence.Date{}, false
	}
	offset := (int(wd) - int(today.Weekday()) + 7) % 7
	if offset == 0 && strings.ToLower(text[m[4]:m[5]]) != "this" {
		offset = 7
	}
	return today.AddDays(offset), true
}
