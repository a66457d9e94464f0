package nlp

import (
	"regexp"
	"strings"
	"time"

	"schedly/src-server/timezone"
)

var (
	ianaZone = regexp.MustCompile(`(?:\b(?:in|at)\s+)?\b([A-Z][A-Za-z_]+/[A-Z][A-Za-z_\-]+(?:/[A-Z][A-Za-z_\-]+)?)\b`)
	abbrZone = func() *regexp.Regexp {
		var alts []string
		for _, a := range timezone.Abbreviations() {
			// single letters ("Z") are too easy to hit by accident in prose
			if len(a) >= 2 {
				alts = append(alts, regexp.QuoteMeta(a))
			}
		}
		return regexp.MustCompile(`(?:\b(?:in|at)\s+)?\b(` + strings.Join(alts, "|") + `)\b`)
	}()
)

// ExtractTimezone finds an explicit zone in the text. Abbreviations must be
// upper case so "et al." or "ct scan" are left alone.
func ExtractTimezone(text string) Match[*time.Location] {
	for _, m := range ianaZone.FindAllStringSubmatchIndex(text, -1) {
		loc, fellBack, err := timezone.Resolve(text[m[2]:m[3]])
		if err != nil || fellBack {
			continue
		}
		return matched(loc, cut(text, m[0], m[1]))
	}
	if m := abbrZone.FindStringSubmatchIndex(text); m != nil {
		if loc, fellBack, err := timezone.Resolve(text[m[2]:m[3]]); err == nil && !fellBack {
			return matched(loc, cut(text, m[0], m[1]))
		}
	}
	return noMatch[*time.Location](text)
}
