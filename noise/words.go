package noise

import (
	"math/rand/v2"
)

// MaxSelectAttempts bounds the rejection sampling done by Uniform, per word in the input.
const MaxSelectAttempts = 10

// Selector picks the index of the word to edit, or returns -1 if no word is eligible.
type Selector func(rng *rand.Rand, words []string) int

// WordSubstituter returns a replacement (e.g. a synonym) for word, or word itself if none is known.
type WordSubstituter func(rng *rand.Rand, word string) string

// Uniform returns a Selector that picks a word uniformly among those for which skip returns false.
// A nil skip accepts every word.
//
// It resamples at most MaxSelectAttempts*len(words) times; if no eligible word was drawn by then,
// it picks uniformly among the eligible words, and returns -1 if there are none.
func Uniform(skip func(word string) bool) Selector {
	return func(rng *rand.Rand, words []string) int {
		if len(words) == 0 {
			return -1
		}
		if skip == nil {
			return rng.IntN(len(words))
		}
		for range MaxSelectAttempts * len(words) {
			idx := rng.IntN(len(words))
			if !skip(words[idx]) {
				return idx
			}
		}
		eligible := make([]int, 0, len(words))
		for idx, word := range words {
			if !skip(word) {
				eligible = append(eligible, idx)
			}
		}
		if len(eligible) == 0 {
			return -1
		}
		return eligible[rng.IntN(len(eligible))]
	}
}

// InsertWords inserts floor(alpha * len(words)) words: each time it selects a word with sel, and
// inserts sub(word) at a uniformly random position in the list (which grows with each insertion).
// The input slice is not modified.
func InsertWords(rng *rand.Rand, words []string, alpha float64, sel Selector, sub WordSubstituter) []string {
	out := append([]string(nil), words...)
	for range editCount(alpha, len(words)) {
		idx := sel(rng, out)
		if idx < 0 {
			break
		}
		newWord := sub(rng, out[idx])
		pos := rng.IntN(len(out) + 1)
		out = append(out, "")
		copy(out[pos+1:], out[pos:])
		out[pos] = newWord
	}
	return out
}

// ReplaceWords replaces floor(alpha * len(words)) times the word selected by sel with sub(word).
// The input slice is not modified.
func ReplaceWords(rng *rand.Rand, words []string, alpha float64, sel Selector, sub WordSubstituter) []string {
	out := append([]string(nil), words...)
	for range editCount(alpha, len(words)) {
		idx := sel(rng, out)
		if idx < 0 {
			break
		}
		out[idx] = sub(rng, out[idx])
	}
	return out
}

// DeleteWords drops each word with probability alpha.
func DeleteWords(rng *rand.Rand, words []string, alpha float64) []string {
	out := make([]string, 0, len(words))
	for _, word := range words {
		if rng.Float64() < alpha {
			continue
		}
		out = append(out, word)
	}
	return out
}

// SwapWords exchanges two uniformly chosen words, floor(alpha * len(words)) times.
// The input slice is not modified.
func SwapWords(rng *rand.Rand, words []string, alpha float64) []string {
	out := append([]string(nil), words...)
	if len(out) < 2 {
		return out
	}
	for range editCount(alpha, len(out)) {
		i, j := rng.IntN(len(out)), rng.IntN(len(out))
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Shuffle returns a random permutation of items. The input slice is not modified.
func Shuffle(rng *rand.Rand, items []string) []string {
	out := append([]string(nil), items...)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// SplitWords splits each word with probability alpha into two, by inserting a space at a random
// interior position. Words with 2 runes or fewer are never split.
func SplitWords(rng *rand.Rand, words []string, alpha float64) []string {
	out := make([]string, len(words))
	for ii, word := range words {
		out[ii] = word
		if rng.Float64() >= alpha {
			continue
		}
		chars := []rune(word)
		if len(chars) <= 2 {
			continue
		}
		pos := 1 + rng.IntN(len(chars)-1)
		out[ii] = string(chars[:pos]) + " " + string(chars[pos:])
	}
	return out
}
