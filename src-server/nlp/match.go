package nlp

import "strings"

// Match is the result of one extractor: either nothing was found and
// Residual is the input unchanged, or Value was found and its text was
// removed from Residual.
type Match[T any] struct {
	Matched  bool
	Value    T
	Residual string
}

func noMatch[T any](text string) Match[T] {
	return Match[T]{Residual: text}
}

func matched[T any](v T, residual string) Match[T] {
	return Match[T]{Matched: true, Value: v, Residual: residual}
}

// cut removes text[start:end].
func cut(text string, start, end int) string {
	return squash(text[:start] + " " + text[end:])
}

func squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
