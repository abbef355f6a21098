// Package tokenize splits text into words and sentences for the word level augmenters.
package tokenize

import (
	"strings"
	"unicode"
)

// Words splits text into word tokens: runs of letters, digits and inner apostrophes or hyphens
// form a word, every other non-space rune is a token by itself.
//
//	Words("Hello, world!") == []string{"Hello", ",", "world", "!"}
func Words(text string) []string {
	var (
		tokens []string
		word   []rune
	)
	flush := func() {
		if len(word) > 0 {
			tokens = append(tokens, string(word))
			word = word[:0]
		}
	}
	runes := []rune(text)
	for ii, r := range runes {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r):
			word = append(word, r)
		case (r == '\'' || r == '-') && len(word) > 0 && ii+1 < len(runes) && isWordRune(runes[ii+1]):
			word = append(word, r)
		case unicode.IsSpace(r):
			flush()
		default:
			flush()
			tokens = append(tokens, string(r))
		}
	}
	flush()
	return tokens
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Join concatenates tokens with single spaces.
func Join(tokens []string) string {
	return strings.Join(tokens, " ")
}

var abbreviations = map[string]bool{
	"mr.": true, "mrs.": true, "ms.": true, "dr.": true, "prof.": true, "sr.": true, "jr.": true,
	"st.": true, "vs.": true, "etc.": true, "e.g.": true, "i.e.": true, "inc.": true, "no.": true,
}

// Sentences splits text into sentences. A sentence ends with ".", "!" or "?" (plus any closing
// quotes or brackets) followed by whitespace, unless the terminating word is a known abbreviation.
// Sentences are trimmed; an empty or blank text has no sentences.
func Sentences(text string) []string {
	fields := strings.Fields(text)
	var (
		sentences []string
		current   []string
	)
	for _, field := range fields {
		current = append(current, field)
		if endsSentence(field) {
			sentences = append(sentences, strings.Join(current, " "))
			current = current[:0]
		}
	}
	if len(current) > 0 {
		sentences = append(sentences, strings.Join(current, " "))
	}
	return sentences
}

func endsSentence(field string) bool {
	trimmed := strings.TrimRight(field, "\"')]}»”’")
	if trimmed == "" {
		return false
	}
	switch trimmed[len(trimmed)-1] {
	case '.':
		return !abbreviations[strings.ToLower(trimmed)]
	case '!', '?':
		return true
	}
	return false
}
