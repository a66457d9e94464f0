// Package timezone resolves user supplied zone names (IANA identifiers or
// common abbreviations) into *time.Location values.
package timezone

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	// the container images we ship on have no zoneinfo
	_ "time/tzdata"
)

var ErrMalformed = errors.New("malformed timezone")

// abbreviations maps the abbreviations people actually type to a
// representative IANA zone. Summer/winter variants share a zone: the offset
// is taken from the zone rules on the event's date, not from the letters.
var abbreviations = map[string]string{
	"UTC":  "UTC",
	"GMT":  "UTC",
	"Z":    "UTC",
	"PT":   "America/Los_Angeles",
	"PST":  "America/Los_Angeles",
	"PDT":  "America/Los_Angeles",
	"MT":   "America/Denver",
	"MST":  "America/Denver",
	"MDT":  "America/Denver",
	"CT":   "America/Chicago",
	"CST":  "America/Chicago",
	"CDT":  "America/Chicago",
	"ET":   "America/New_York",
	"EST":  "America/New_York",
	"EDT":  "America/New_York",
	"AKST": "America/Anchorage",
	"AKDT": "America/Anchorage",
	"HST":  "Pacific/Honolulu",
	"BST":  "Europe/London",
	"WET":  "Europe/Lisbon",
	"CET":  "Europe/Paris",
	"CEST": "Europe/Paris",
	"EET":  "Europe/Athens",
	"EEST": "Europe/Athens",
	"IST":  "Asia/Kolkata",
	"SGT":  "Asia/Singapore",
	"ICT":  "Asia/Bangkok",
	"JST":  "Asia/Tokyo",
	"KST":  "Asia/Seoul",
	"AEST": "Australia/Sydney",
	"AEDT": "Australia/Sydney",
	"NZST": "Pacific/Auckland",
	"NZDT": "Pacific/Auckland",
}

// zone names are restricted to what the tz database itself uses
var wellFormed = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_+\-]*(?:/[A-Za-z0-9_+\-]+){0,2}$`)

// Abbreviations returns the known abbreviations, longest first so callers can
// build alternations that prefer "AEST" over "EST".
func Abbreviations() []string {
	out := make([]string, 0, len(abbreviations))
	for k := range abbreviations {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}

// Lookup maps an abbreviation (case-insensitive) to its IANA zone name.
func Lookup(abbr string) (string, bool) {
	name, ok := abbreviations[strings.ToUpper(strings.TrimSpace(abbr))]
	return name, ok
}

// Resolve turns name into a location.
//
// An empty name is UTC. A well formed but unknown name also resolves to UTC
// with fellBack set, so callers can surface the substitution instead of
// silently mislabelling the event. Only names that could never be a zone
// return ErrMalformed.
func Resolve(name string) (loc *time.Location, fellBack bool, err error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.UTC, false, nil
	}
	if iana, ok := Lookup(name); ok {
		name = iana
	}
	if !wellFormed.MatchString(name) {
		return nil, false, fmt.Errorf("Resolve: %w: %q", ErrMalformed, name)
	}
	// "Local" would leak the host zone into stored events
	if strings.EqualFold(name, "local") {
		return time.UTC, true, nil
	}
	loc, err = time.LoadLocation(name)
	if err != nil {
		return time.UTC, true, nil
	}
	return loc, false, nil
}
