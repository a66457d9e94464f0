package utils

import "strings"

// strips and squashes spaces, removes a trailing period
func CleanupString(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimSuffix(s, ".")
	return s
}
