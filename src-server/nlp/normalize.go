package nlp

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	dashReplacer = strings.NewReplacer(
		"‐", "-", "‑", "-", "‒", "-", "–", "-", "—", "-", "−", "-",
		"‘", "'", "’", "'", "“", `"`, "”", `"`,
	)
	dottedMeridiem = regexp.MustCompile(`(?i)(^|\d|\s)([ap])\.\s?m\b\.?`)
	dottedClock    = regexp.MustCompile(`(?i)\b(\d{1,2})\.(\d{2})\s*(am|pm)\b`)
	noonWord       = regexp.MustCompile(`(?i)\bnoon\b`)
	midnightWord   = regexp.MustCompile(`(?i)\bmidnight\b`)
)

// normalize folds the kinds of noise OCR and phone keyboards produce:
// full-width digits and colons, typographic dashes, "p.m.", "9.30pm".
// Line breaks become "; " so a line still ends a location or description.
func normalize(text string) string {
	text = norm.NFKC.String(text)
	text = dashReplacer.Replace(text)
	text = dottedMeridiem.ReplaceAllString(text, "${1}${2}m")
	text = dottedClock.ReplaceAllString(text, "$1:$2$3")
	text = noonWord.ReplaceAllString(text, "12:00pm")
	text = midnightWord.ReplaceAllString(text, "12:00am")

	lines := strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == '\r' })
	kept := lines[:0]
	for _, l := range lines {
		if l = squash(l); l != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "; ")
}
