// Package noise implements the character and word level perturbations used by the augmenters.
//
// Every function takes the random generator to draw from explicitly, and is total: empty strings,
// single characters and single words are returned unchanged instead of failing.
//
// An edit at a position is applied when a uniform draw in [0, 1) is below alpha, so alpha=0 never
// edits and alpha=1 always does.
package noise

import (
	"math/rand/v2"
	"strings"
)

// Substituter proposes an erroneous replacement for a character.
type Substituter interface {
	Substitute(rng *rand.Rand, r rune) string
}

// Table maps a character to an ordered set of plausible substitutes. Tables are never modified
// after creation.
type Table map[rune][]string

// Compile time assert that Table and Charset implement Substituter.
var (
	_ Substituter = Table(nil)
	_ Substituter = Charset(nil)
)

// Has returns whether the table has an entry for r.
func (t Table) Has(r rune) bool {
	return len(t[r]) > 0
}

// Substitute returns one of the substitutes of r, or r itself if r has no entry.
func (t Table) Substitute(rng *rand.Rand, r rune) string {
	subs := t[r]
	if len(subs) == 0 {
		return string(r)
	}
	return subs[rng.IntN(len(subs))]
}

// Charset is a context free Substituter: it ignores the character being substituted and returns
// one of its runes uniformly at random.
type Charset []rune

// Substitute implements Substituter.
func (c Charset) Substitute(rng *rand.Rand, r rune) string {
	if len(c) == 0 {
		return string(r)
	}
	return string(c[rng.IntN(len(c))])
}

type fallback struct {
	table    Table
	fallback Substituter
}

// Substitute implements Substituter.
func (f fallback) Substitute(rng *rand.Rand, r rune) string {
	if f.table.Has(r) {
		return f.table.Substitute(rng, r)
	}
	return f.fallback.Substitute(rng, r)
}

// WithFallback returns a Substituter that uses table for characters it has an entry for, and
// other for everything else.
func WithFallback(table Table, other Substituter) Substituter {
	return fallback{table: table, fallback: other}
}

// editCount is floor(alpha * n), never negative.
func editCount(alpha float64, n int) int {
	count := int(alpha * float64(n))
	if count < 0 {
		return 0
	}
	return count
}

// Insert adds floor(alpha * word_count) characters to the whitespace separated words of s.
//
// Each insertion picks a random word and a random position inside it (before the first rune up to
// after the last), and inserts sub.Substitute(next), where next is the rune right after the
// insertion point (or 0 at the end of the word). The words are joined back with single spaces.
func Insert(rng *rand.Rand, s string, alpha float64, sub Substituter) string {
	words := strings.Fields(s)
	count := editCount(alpha, len(words))
	if count == 0 {
		return s
	}
	for range count {
		wordIdx := rng.IntN(len(words))
		word := []rune(words[wordIdx])
		pos := rng.IntN(len(word) + 1)
		var next rune
		if pos < len(word) {
			next = word[pos]
		}
		inserted := []rune(sub.Substitute(rng, next))
		newWord := make([]rune, 0, len(word)+len(inserted))
		newWord = append(newWord, word[:pos]...)
		newWord = append(newWord, inserted...)
		newWord = append(newWord, word[pos:]...)
		words[wordIdx] = string(newWord)
	}
	return strings.Join(words, " ")
}

// Delete drops each rune of s with probability alpha.
func Delete(rng *rand.Rand, s string, alpha float64) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if rng.Float64() < alpha {
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Swap exchanges two uniformly chosen rune positions of s, floor(alpha * rune_count) times.
// Both positions may coincide, in which case that swap is a no-op.
func Swap(rng *rand.Rand, s string, alpha float64) string {
	chars := []rune(s)
	if len(chars) < 2 {
		return s
	}
	count := editCount(alpha, len(chars))
	if count == 0 {
		return s
	}
	for range count {
		i, j := rng.IntN(len(chars)), rng.IntN(len(chars))
		chars[i], chars[j] = chars[j], chars[i]
	}
	return string(chars)
}

// Replace substitutes each rune of s with probability alpha, using sub. Substitutes may have a
// different length than the rune they replace, the rest of the string is unaffected.
func Replace(rng *rand.Rand, s string, alpha float64, sub Substituter) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if rng.Float64() < alpha {
			sb.WriteString(sub.Substitute(rng, r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
