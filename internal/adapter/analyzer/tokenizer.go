// Package analyzer turns free text into terms for the hashing embedder.
package analyzer

import (
	"strings"
	"unicode"
)

// Tokenizer lowercases text, splits it on non-word runes and drops
// stopwords and terms shorter than MinLength.
type Tokenizer struct {
	stopwords map[string]struct{}
	minLength int
}

// NewTokenizer creates a Tokenizer. With keepStopwords set, only the length
// filter applies; JSON keys such as "id" or "to" may matter for retrieval.
func NewTokenizer(keepStopwords bool) *Tokenizer {
	t := &Tokenizer{minLength: 2}
	if !keepStopwords {
		t.stopwords = defaultStopwords()
	}
	return t
}

// Tokenize splits text into terms.
func (t *Tokenizer) Tokenize(text string) []string {
	words := splitWords(text)
	tokens := make([]string, 0, len(words))

	for _, word := range words {
		word = strings.ToLower(word)
		if len([]rune(word)) < t.minLength {
			continue
		}
		if _, isStop := t.stopwords[word]; isStop {
			continue
		}
		tokens = append(tokens, word)
	}

	return tokens
}

// Bigrams returns adjacent term pairs joined by a space.
func Bigrams(tokens []string) []string {
	if len(tokens) < 2 {
		return nil
	}
	out := make([]string, 0, len(tokens)-1)
	for i := 1; i < len(tokens); i++ {
		out = append(out, tokens[i-1]+" "+tokens[i])
	}
	return out
}

// splitWords splits text into runs of letters, digits and underscores.
func splitWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
}

func defaultStopwords() map[string]struct{} {
	stops := []string{
		"a", "an", "and", "are", "as", "at", "be", "by", "for",
		"from", "has", "in", "is", "it", "its", "of", "on",
		"that", "the", "to", "was", "were", "will", "with", "this",
		"have", "had", "but", "not", "or", "so", "if", "do", "does",
		"what", "which", "who", "when", "where", "why", "how",
	}
	m := make(map[string]struct{}, len(stops))
	for _, s := range stops {
		m[s] = struct{}{}
	}
	return m
}
