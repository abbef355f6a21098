package augment

import (
	"context"
	"math/rand/v2"
	"unicode"

	"github.com/gomlx/go-textaug/internal/tokenize"
	"github.com/gomlx/go-textaug/lexicon"
	"github.com/gomlx/go-textaug/noise"
	"github.com/gomlx/go-textaug/tfidf"
	"github.com/pkg/errors"
)

// isContentWord returns whether a token is eligible for synonym lookups: not a stopword, and with
// at least one letter.
func isContentWord(stopwords lexicon.Stopwords, word string) bool {
	if stopwords.Contains(lexicon.Normalize(word)) {
		return false
	}
	for _, r := range word {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// wordSelector returns the noise.Selector used during one Augment call.
//
// Without TF-IDF it picks uniformly among the words accepted by eligible. With TF-IDF, the weights
// are fitted over docs (the whole batch), and words are drawn proportionally to their weight,
// where non-eligible words weigh 0. If no word has a positive weight, it falls back to uniform.
func wordSelector(useTFIDF bool, docs [][]string, eligible func(string) bool) noise.Selector {
	var skip func(string) bool
	if eligible != nil {
		skip = func(word string) bool { return !eligible(word) }
	}
	uniform := noise.Uniform(skip)
	if !useTFIDF {
		return uniform
	}
	normalized := make([][]string, len(docs))
	for ii, doc := range docs {
		normalized[ii] = normalizeAll(doc)
	}
	model := tfidf.Fit(normalized)
	return func(rng *rand.Rand, words []string) int {
		weights := model.Weights(normalizeAll(words))
		if eligible != nil {
			for ii, word := range words {
				if !eligible(word) {
					weights[ii] = 0
				}
			}
		}
		if idx := tfidf.Sample(rng, weights); idx >= 0 {
			return idx
		}
		return uniform(rng, words)
	}
}

func normalizeAll(words []string) []string {
	out := make([]string, len(words))
	for ii, word := range words {
		out[ii] = lexicon.Normalize(word)
	}
	return out
}

func tokenizeAll(texts []string, split func(string) []string) [][]string {
	docs := make([][]string, len(texts))
	for ii, text := range texts {
		docs[ii] = split(text)
	}
	return docs
}

// synonymOf returns a noise.WordSubstituter that picks a random synonym of the word, or the word
// itself if the thesaurus has none.
func synonymOf(thesaurus lexicon.Thesaurus) noise.WordSubstituter {
	return func(rng *rand.Rand, word string) string {
		synonyms := thesaurus.Synonyms(word)
		if len(synonyms) == 0 {
			return word
		}
		return synonyms[rng.IntN(len(synonyms))]
	}
}

// EasyDataAugmentation adds word level noise. Each variant applies one operation, picked uniformly
// among the enabled ones:
//
//   - insertion: floor(alpha * word_count) times, a synonym of a random non-stopword is inserted at
//     a random position.
//   - deletion: each word is dropped with probability alpha.
//   - swap: floor(alpha * word_count) swaps of two random words.
//   - shuffle: the order of the sentences is shuffled. A single sentence is left unchanged.
type EasyDataAugmentation struct {
	opts      *Options
	thesaurus lexicon.Thesaurus
	stopwords lexicon.Stopwords
}

var _ Augmenter = (*EasyDataAugmentation)(nil)

// EasyDataAugmentationOperations are the valid operations of EasyDataAugmentation.
var EasyDataAugmentationOperations = []string{OpInsertion, OpDeletion, OpSwap, OpShuffle}

// NewEasyDataAugmentation creates an EasyDataAugmentation augmenter. The thesaurus is required only
// if the insertion operation is enabled.
// Defaults: alpha=0.1, 4 variants per text, all operations, Interleaved layout.
func NewEasyDataAugmentation(thesaurus lexicon.Thesaurus, opts ...Option) (*EasyDataAugmentation, error) {
	o, err := newOptions("EasyDataAugmentation", Options{
		Alpha:      0.1,
		NumAug:     4,
		Operations: EasyDataAugmentationOperations,
		Layout:     Interleaved,
	}, opts)
	if err != nil {
		return nil, err
	}
	if err := validateOperations(o.Operations, EasyDataAugmentationOperations); err != nil {
		return nil, err
	}
	for _, op := range o.Operations {
		if op == OpInsertion && thesaurus == nil {
			return nil, errors.Wrap(ErrInvalidOption, "EasyDataAugmentation insertion requires a thesaurus")
		}
	}
	return &EasyDataAugmentation{opts: o, thesaurus: thesaurus, stopwords: lexicon.English()}, nil
}

// Name of the augmenter.
func (e *EasyDataAugmentation) Name() string { return "EasyDataAugmentation" }

// Options returns the augmenter's configuration.
func (e *EasyDataAugmentation) Options() Options { return *e.opts }

// Augment implements Augmenter.
func (e *EasyDataAugmentation) Augment(ctx context.Context, texts []string) ([]string, error) {
	return run(ctx, e.Name(), e.opts, texts, func(_ *rand.Rand, texts []string) variantFn[string] {
		eligible := func(word string) bool { return isContentWord(e.stopwords, word) }
		sel := wordSelector(e.opts.TFIDF, tokenizeAll(texts, tokenize.Words), eligible)
		var sub noise.WordSubstituter
		if e.thesaurus != nil {
			sub = synonymOf(e.thesaurus)
		}
		return repeat(e.opts.NumAug, func(rng *rand.Rand, text string) string {
			alpha := e.opts.Alpha
			switch e.opts.Operations[rng.IntN(len(e.opts.Operations))] {
			case OpInsertion:
				return tokenize.Join(noise.InsertWords(rng, tokenize.Words(text), alpha, sel, sub))
			case OpDeletion:
				return tokenize.Join(noise.DeleteWords(rng, tokenize.Words(text), alpha))
			case OpSwap:
				return tokenize.Join(noise.SwapWords(rng, tokenize.Words(text), alpha))
			default:
				return shuffleSentences(rng, text)
			}
		})
	})
}

// shuffleSentences returns text with its sentences in random order, joined by single spaces.
// Texts with fewer than two sentences are returned unchanged.
func shuffleSentences(rng *rand.Rand, text string) string {
	sentences := tokenize.Sentences(text)
	if len(sentences) < 2 {
		return text
	}
	return tokenize.Join(noise.Shuffle(rng, sentences))
}

// SynonymReplacement replaces floor(alpha * word_count) times a random non-stopword by one of its
// synonyms.
type SynonymReplacement struct {
	opts      *Options
	thesaurus lexicon.Thesaurus
	stopwords lexicon.Stopwords
}

var _ Augmenter = (*SynonymReplacement)(nil)

// NewSynonymReplacement creates a SynonymReplacement augmenter using the given thesaurus.
// Defaults: alpha=0.1, 4 variants per text, OriginalsFirst layout.
func NewSynonymReplacement(thesaurus lexicon.Thesaurus, opts ...Option) (*SynonymReplacement, error) {
	if thesaurus == nil {
		return nil, errors.Wrap(ErrInvalidOption, "SynonymReplacement requires a thesaurus")
	}
	o, err := newOptions("SynonymReplacement", Options{Alpha: 0.1, NumAug: 4, Layout: OriginalsFirst}, opts)
	if err != nil {
		return nil, err
	}
	return &SynonymReplacement{opts: o, thesaurus: thesaurus, stopwords: lexicon.English()}, nil
}

// Name of the augmenter.
func (s *SynonymReplacement) Name() string { return "SynonymReplacement" }

// Options returns the augmenter's configuration.
func (s *SynonymReplacement) Options() Options { return *s.opts }

// Augment implements Augmenter.
func (s *SynonymReplacement) Augment(ctx context.Context, texts []string) ([]string, error) {
	return run(ctx, s.Name(), s.opts, texts, func(_ *rand.Rand, texts []string) variantFn[string] {
		eligible := func(word string) bool { return isContentWord(s.stopwords, word) }
		sel := wordSelector(s.opts.TFIDF, tokenizeAll(texts, tokenize.Words), eligible)
		sub := synonymOf(s.thesaurus)
		return repeat(s.opts.NumAug, func(rng *rand.Rand, text string) string {
			return tokenize.Join(noise.ReplaceWords(rng, tokenize.Words(text), s.opts.Alpha, sel, sub))
		})
	})
}

// WordSplit splits each word, with probability alpha, in two at a random position. Words of one or
// two characters are never split.
type WordSplit struct {
	opts *Options
}

var _ Augmenter = (*WordSplit)(nil)

// NewWordSplit creates a WordSplit augmenter.
// Defaults: alpha=0.1, 4 variants per text, OriginalsFirst layout.
func NewWordSplit(opts ...Option) (*WordSplit, error) {
	o, err := newOptions("WordSplit", Options{Alpha: 0.1, NumAug: 4, Layout: OriginalsFirst}, opts)
	if err != nil {
		return nil, err
	}
	return &WordSplit{opts: o}, nil
}

// Name of the augmenter.
func (w *WordSplit) Name() string { return "WordSplit" }

// Options returns the augmenter's configuration.
func (w *WordSplit) Options() Options { return *w.opts }

// Augment implements Augmenter.
func (w *WordSplit) Augment(ctx context.Context, texts []string) ([]string, error) {
	return run(ctx, w.Name(), w.opts, texts, perText(repeat(w.opts.NumAug, func(rng *rand.Rand, text string) string {
		return tokenize.Join(noise.SplitWords(rng, tokenize.Words(text), w.opts.Alpha))
	})))
}
