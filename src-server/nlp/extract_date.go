package nlp

import (
	"regexp"
	"strconv"
	"time"

	"schedly/src-server/recurrence"
)

const (
	isoSrc      = `(\d{4})-(\d{1,2})-(\d{1,2})`
	monthDaySrc = `(` + monthPattern + `)\.?\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s+(\d{4}))?`
	dayMonthSrc = `(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?(` + monthPattern + `)\.?(?:,?\s+(\d{4}))?`
	slashSrc    = `(\d{1,2})/(\d{1,2})(?:/(\d{4}|\d{2}))?`
	singleSrc   = `(?:` + isoSrc + `|` + monthDaySrc + `|` + dayMonthSrc + `|` + slashSrc + `)`
	rangeSep    = `\s*(?:-|to|through|thru)\s*`
)

var (
	singleDate         = regexp.MustCompile(`(?i)\b` + singleSrc + `\b`)
	singleDateAnchored = regexp.MustCompile(`(?i)^` + singleSrc + `\b`)

	monthRange = regexp.MustCompile(`(?i)\b(` + monthPattern + `)\.?\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s+(\d{4}))?` +
		rangeSep + `(?:(` + monthPattern + `)\.?\s+)?(\d{1,2})(?:st|nd|rd|th)?(?:,?\s+(\d{4}))?\b`)
	numericRange = regexp.MustCompile(`(?i)\b(\d{4}-\d{1,2}-\d{1,2}|\d{1,2}/\d{1,2}(?:/\d{4}|/\d{2})?)` +
		rangeSep + `(\d{4}-\d{1,2}-\d{1,2}|\d{1,2}/\d{1,2}(?:/\d{4}|/\d{2})?)\b`)

	untilMarker = regexp.MustCompile(`(?i)\b(?:until|till|til|thru|through|up\s+to|ending(?:\s+on)?|ends?(?:\s+on)?)\s+(?:and\s+including\s+)?`)

	// "Nov 3 - 10am" is a date followed by a time, not a range
	followedByClock = regexp.MustCompile(`(?i)^\s*(?::|am\b|pm\b|a\b|p\b|h\b|hrs?\b)`)
)

type dateToken struct {
	year    int
	month   time.Month
	day     int
	hasYear bool
}

type DateRange struct {
	Start recurrence.Date
	End   recurrence.Date
}

// tokenFrom reads a singleSrc match. g is the submatch index slice and
// offset the index of singleSrc's first group within it.
func tokenFrom(text string, g []int, offset int) (dateToken, bool) {
	group := func(i int) string {
		i = (offset + i) * 2
		if g[i] < 0 {
			return ""
		}
		return text[g[i]:g[i+1]]
	}
	var tok dateToken
	var ok bool
	switch {
	case group(0) != "": // ISO
		tok.year, _ = strconv.Atoi(group(0))
		m, _ := strconv.Atoi(group(1))
		tok.month = time.Month(m)
		tok.day, _ = strconv.Atoi(group(2))
		tok.hasYear = true
		return tok, true
	case group(3) != "": // Month D
		if tok.month, ok = monthOf(group(3)); !ok {
			return tok, false
		}
		tok.day, _ = strconv.Atoi(group(4))
		tok.year, tok.hasYear = yearOf(group(5))
	case group(6) != "": // D Month
		tok.day, _ = strconv.Atoi(group(6))
		if tok.month, ok = monthOf(group(7)); !ok {
			return tok, false
		}
		tok.year, tok.hasYear = yearOf(group(8))
	case group(9) != "": // M/D[/Y]
		m, _ := strconv.Atoi(group(9))
		tok.month = time.Month(m)
		tok.day, _ = strconv.Atoi(group(10))
		tok.year, tok.hasYear = yearOf(group(11))
	default:
		return tok, false
	}
	return tok, true
}

func yearOf(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	y, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	if y < 100 {
		y += 2000
	}
	return y, true
}

// resolve pins a token to a real date. Without a year the reference year is
// used, rolling into next year when the date has already passed.
func (t dateToken) resolve(today recurrence.Date) (recurrence.Date, bool) {
	year := t.year
	if !t.hasYear {
		year = today.Year
	}
	d, ok := validDate(year, t.month, t.day)
	if !ok {
		return d, false
	}
	if !t.hasYear && d.Before(today) {
		return validDate(year+1, t.month, t.day)
	}
	return d, true
}

func validDate(year int, month time.Month, day int) (recurrence.Date, bool) {
	if month < time.January || month > time.December || day < 1 || day > 31 {
		return recurrence.Date{}, false
	}
	d := recurrence.NewDate(year, month, day)
	if d.Month != month || d.Day != day {
		return recurrence.Date{}, false
	}
	return d, true
}

func tokenAt(text string) (dateToken, int, bool) {
	g := singleDateAnchored.FindStringSubmatchIndex(text)
	if g == nil {
		return dateToken{}, 0, false
	}
	tok, ok := tokenFrom(text, g, 1)
	return tok, g[1], ok
}

func parseDateAt(text string, today recurrence.Date) (recurrence.Date, int, bool) {
	tok, n, ok := tokenAt(text)
	if !ok {
		return recurrence.Date{}, 0, false
	}
	d, ok := tok.resolve(today)
	return d, n, ok
}

// ExtractDate finds the first explicit calendar date.
func ExtractDate(text string, today recurrence.Date) Match[recurrence.Date] {
	for _, g := range singleDate.FindAllStringSubmatchIndex(text, -1) {
		tok, ok := tokenFrom(text, g, 1)
		if !ok {
			continue
		}
		if d, ok := tok.resolve(today); ok {
			return matched(d, cut(text, g[0], g[1]))
		}
	}
	return noMatch[recurrence.Date](text)
}

// ExtractUntil finds "until <date>" and friends.
func ExtractUntil(text string, today recurrence.Date) Match[recurrence.Date] {
	for _, m := range untilMarker.FindAllStringIndex(text, -1) {
		d, n, ok := parseDateAt(text[m[1]:], today)
		if !ok {
			continue
		}
		return matched(d, cut(text, m[0], m[1]+n))
	}
	return noMatch[recurrence.Date](text)
}

// ExtractDateRange finds "Nov 1-3", "Nov 28 - Dec 2, 2026" or a pair of
// numeric dates joined by a dash or "to".
func ExtractDateRange(text string, today recurrence.Date) Match[DateRange] {
	for _, g := range monthRange.FindAllStringSubmatchIndex(text, -1) {
		if followedByClock.MatchString(text[g[1]:]) {
			continue
		}
		if r, ok := monthRangeOf(text, g, today); ok {
			return matched(r, cut(text, g[0], g[1]))
		}
	}
	for _, g := range numericRange.FindAllStringSubmatchIndex(text, -1) {
		start, _, ok1 := parseDateAt(text[g[2]:g[3]], today)
		endTok, _, ok2 := tokenAt(text[g[4]:g[5]])
		if !ok1 || !ok2 {
			continue
		}
		end, ok2 := endTok.resolve(today)
		if !ok2 {
			continue
		}
		if end.Before(start) {
			// only a year-less end may roll into the next year
			if endTok.hasYear {
				continue
			}
			if end, ok2 = validDate(end.Year+1, end.Month, end.Day); !ok2 || end.Before(start) {
				continue
			}
		}
		return matched(DateRange{Start: start, End: end}, cut(text, g[0], g[1]))
	}
	return noMatch[DateRange](text)
}

func monthRangeOf(text string, g []int, today recurrence.Date) (DateRange, bool) {
	group := func(i int) string {
		if g[2*i] < 0 {
			return ""
		}
		return text[g[2*i]:g[2*i+1]]
	}
	m1, ok := monthOf(group(1))
	if !ok {
		return DateRange{}, false
	}
	m2 := m1
	if group(4) != "" {
		if m2, ok = monthOf(group(4)); !ok {
			return DateRange{}, false
		}
	}
	d1, _ := strconv.Atoi(group(2))
	d2, _ := strconv.Atoi(group(5))
	y1, has1 := yearOf(group(3))
	y2, has2 := yearOf(group(6))

	switch {
	case has1 && !has2:
		y2 = y1
		if m2 < m1 {
			y2++
		}
	case !has1 && has2:
		y1 = y2
		if m2 < m1 {
			y1--
		}
	case !has1 && !has2:
		y1 = today.Year
		y2 = y1
		if m2 < m1 {
			y2++
		}
	}
	start, ok := validDate(y1, m1, d1)
	if !ok {
		return DateRange{}, false
	}
	end, ok := validDate(y2, m2, d2)
	if !ok || end.Before(start) {
		return DateRange{}, false
	}
	if !has1 && !has2 && end.Before(today) {
		if start, ok = validDate(y1+1, m1, d1); !ok {
			return DateRange{}, false
		}
		if end, ok = validDate(y2+1, m2, d2); !ok {
			return DateRange{}, false
		}
	}
	return DateRange{Start: start, End: end}, true
}
