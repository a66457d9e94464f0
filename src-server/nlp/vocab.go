package nlp

import (
	"strings"
	"time"
)

const (
	dayPattern   = `(?:mon(?:day)?|tue(?:s(?:day)?)?|wed(?:s|nesday)?|thu(?:r(?:s(?:day)?)?)?|fri(?:day)?|sat(?:urday)?|sun(?:day)?)s?`
	monthPattern = `(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)`
	numberWords  = `(?:\d+|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve)`
)

var dayPrefixes = map[string]time.Weekday{
	"su": time.Sunday,
	"mo": time.Monday,
	"tu": time.Tuesday,
	"we": time.Wednesday,
	"th": time.Thursday,
	"fr": time.Friday,
	"sa": time.Saturday,
}

func weekdayOf(word string) (time.Weekday, bool) {
	word = strings.ToLower(strings.TrimSpace(word))
	if len(word) < 2 {
		return 0, false
	}
	wd, ok := dayPrefixes[word[:2]]
	return wd, ok
}

var monthPrefixes = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

func monthOf(word string) (time.Month, bool) {
	word = strings.ToLower(strings.TrimSpace(word))
	if len(word) < 3 {
		return 0, false
	}
	m, ok := monthPrefixes[word[:3]]
	return m, ok
}

var numbers = map[string]int{
	"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6,
	"seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11, "twelve": 12,
	"other": 2, "second": 2,
}

func numberOf(word string) (int, bool) {
	word = strings.ToLower(strings.TrimSpace(word))
	if n, ok := numbers[word]; ok {
		return n, true
	}
	n := 0
	for _, r := range word {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
		if n > 10000 {
			return 0, false
		}
	}
	return n, word != ""
}
