package nlp

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	MaxTitleLength = 200
	UntitledTitle  = "Untitled"
)

var (
	connectives = map[string]bool{
		"on": true, "at": true, "in": true, "from": true, "to": true, "every": true,
		"each": true, "and": true, "or": true, "until": true, "till": true, "for": true,
		"starting": true, "between": true, "by": true, "@": true, "-": true, "&": true,
	}
	danglingPair = regexp.MustCompile(`(?i)\b(?:from|between|starting)\s+(?:to|and|until|-)(?:\s|$)`)
	punctRun     = regexp.MustCompile(`\s*([,;|/])(?:\s*[,;|/])+\s*`)
	spaceBefore  = regexp.MustCompile(`\s+([,;])`)
)

// cleanTitle turns what is left after extraction into a title: leftover
// connectives and separators at the edges go, runs of separators collapse,
// the first word is capitalized and the result is capped.
func cleanTitle(rest string) string {
	rest = danglingPair.ReplaceAllString(rest, " ")
	rest = punctRun.ReplaceAllString(rest, "$1 ")
	rest = spaceBefore.ReplaceAllString(rest, "$1")

	words := strings.Fields(rest)
	trim := func(w string) string { return strings.Trim(w, ",;:|/.-") }
	for len(words) > 0 {
		first := words[0]
		if t := trim(first); t == "" || connectives[strings.ToLower(t)] {
			words = words[1:]
			continue
		}
		words[0] = strings.TrimLeft(first, ",;:|/-")
		break
	}
	for len(words) > 0 {
		last := words[len(words)-1]
		if t := trim(last); t == "" || connectives[strings.ToLower(t)] {
			words = words[:len(words)-1]
			continue
		}
		words[len(words)-1] = strings.TrimRight(last, ",;:|/-.")
		break
	}
	if len(words) == 0 {
		return UntitledTitle
	}
	// a Caser keeps state, so one per call
	words[0] = cases.Title(language.English, cases.NoLower).String(words[0])
	title := strings.Join(words, " ")
	if utf8.RuneCountInString(title) > MaxTitleLength {
		title = strings.TrimSpace(string([]rune(title)[:MaxTitleLength]))
	}
	return title
}
