// Package tokenize splits text into normalised terms for lexical scoring.
package tokenize

import (
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]+)*`)

var stopwords = func() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at",
		"by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that",
		"these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so",
		"such", "into", "about", "between", "through", "during", "before", "after", "above", "below",
		"out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
		"i", "you", "we", "they", "he", "she", "my", "your", "our", "their", "do", "does", "what", "how",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()

// Terms returns the normalised terms of text in order, stopwords removed.
// Terms are lower-cased, possessives dropped and simple plurals folded.
func Terms(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		if _, stop := stopwords[t]; stop {
			continue
		}
		out = append(out, Normalise(t))
	}
	return out
}

// Normalise folds one lower-case token.
func Normalise(t string) string {
	t = strings.TrimSuffix(t, "'s")
	t = strings.TrimSuffix(t, "’s")
	if len(t) > 3 && strings.HasSuffix(t, "s") && !strings.HasSuffix(t, "ss") {
		t = t[:len(t)-1]
	}
	return t
}

// Frequencies counts the terms of text.
func Frequencies(text string) map[string]int {
	freq := make(map[string]int)
	for _, t := range Terms(text) {
		freq[t]++
	}
	return freq
}

// Unique returns the distinct terms of text in first-seen order.
func Unique(text string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range Terms(text) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// IsStopword reports whether a lower-case word carries no retrieval weight.
func IsStopword(w string) bool {
	_, ok := stopwords[w]
	return ok
}
