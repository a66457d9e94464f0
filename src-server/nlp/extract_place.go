package nlp

import (
	"regexp"
	"strings"
)

const (
	clockWord = `\d{1,2}:\d{2}\S*|\d{1,2}\s?[ap]\.?m\.?(?:-\S*)?|\d{1,2}-\d{1,2}(?::\d{2})?(?:[ap]\.?m\.?)?|\d{1,2}h\d{0,2}|[ap]\.?m\.?|noon|midnight`
	dateWord  = `\d{4}-\d{1,2}-\d{1,2}\S*|\d{1,2}/\d{1,2}\S*|\d{1,2}(?:st|nd|rd|th)`
)

var (
	descriptionMarker = regexp.MustCompile(`(?i)\b(?:desc|description|notes?|details)\s*:\s*`)
	locationMarker    = regexp.MustCompile(`(?i)(?:^|\s)(?:(?:at|in)\s+|@\s*)`)
	clauseEnd         = regexp.MustCompile(`[,;.!?|()\[\]]`)

	// words that start the temporal part of a sentence rather than a place
	temporalWord = regexp.MustCompile(`(?i)^(?:` + clockWord + `|` + dateWord + `|` + dayPattern + `|` + monthPattern + `\.?|today|tonight|tomorrow|tmrw|next|this|every|each|until|till|thru|through|from|on|daily|weekly|biweekly|monthly|weekdays?|weekends?|for|starting|between|desc|description|notes?|details|mwf|mw|tr|tth|tuth)[:,]?$`)
	// a place clause never ends on the word that introduced the time
	trailingLink = regexp.MustCompile(`(?i)^(?:at|@|by|around|about)$`)
	notAPlace    = regexp.MustCompile(`(?i)^(?:\d|a\s+(?:few|couple|day|week|month|bit|minute|moment)|an\s+hour|the\s+(?:morning|afternoon|evening|night)|person\b|with\b|mind\b|advance\b|total\b)`)
)

// ExtractDescription takes everything after a "desc:" / "notes:" marker up
// to the end of the line.
func ExtractDescription(text string) Match[string] {
	loc := descriptionMarker.FindStringIndex(text)
	if loc == nil {
		return noMatch[string](text)
	}
	rest := text[loc[1]:]
	end := len(rest)
	if i := strings.Index(rest, ";"); i >= 0 {
		end = i
	}
	value := strings.TrimSpace(rest[:end])
	if value == "" {
		return noMatch[string](text)
	}
	return matched(value, cut(text, loc[0], loc[1]+end))
}

// ExtractLocation takes the clause after " at ", " in " or "@". The clause
// ends at punctuation or at the first word that starts a date, time or
// repeat phrase, so "Lunch at Joe's Cafe Mon 12-1pm" yields "Joe's Cafe".
// Markers followed by a time ("at 3pm") or an idiom ("in person") are not
// locations.
func ExtractLocation(text string) Match[string] {
	for _, m := range locationMarker.FindAllStringIndex(text, -1) {
		rest := text[m[1]:]
		if notAPlace.MatchString(rest) {
			continue
		}
		clause := rest
		if i := clauseEnd.FindStringIndex(clause); i != nil {
			clause = clause[:i[0]]
		}
		words := strings.Fields(clause)
		n := 0
		for n < len(words) && !temporalWord.MatchString(words[n]) {
			n++
		}
		for n > 0 && trailingLink.MatchString(words[n-1]) {
			n--
		}
		if n == 0 {
			continue
		}
		place := strings.Join(words[:n], " ")
		// the marker's leading space belongs to the text before it
		start := m[0]
		end := m[1]
		for _, w := range words[:n] {
			end += strings.Index(text[end:], w) + len(w)
		}
		return matched(place, cut(text, start, end))
	}
	return noMatch[string](text)
}
