package augment

import (
	"context"
	"math/rand/v2"
	"strings"

	"github.com/gomlx/go-textaug/noise"
	"github.com/gomlx/go-textaug/vectors"
	"github.com/pkg/errors"
)

// NumSimilarCandidates is the number of nearest words considered by SimilarWordReplacement.
const NumSimilarCandidates = 15

// NearestWords finds the words most similar to a given one, e.g. *vectors.Model.
type NearestWords interface {
	// MostSimilar returns up to n words ordered by decreasing similarity, possibly including word.
	MostSimilar(word string, n int) ([]vectors.Similarity, error)
}

var _ NearestWords = (*vectors.Model)(nil)

// SimilarWordReplacement replaces floor(alpha * word_count) times a random word by one of the
// NumSimilarCandidates words with the most similar vectors. Candidates equal to the word (ignoring
// case) are excluded, and words without a vector are left unchanged.
type SimilarWordReplacement struct {
	opts    *Options
	nearest NearestWords
}

var _ Augmenter = (*SimilarWordReplacement)(nil)

// NewSimilarWordReplacement creates a SimilarWordReplacement augmenter using the given word vectors.
// Defaults: alpha=0.1, 4 variants per text, Interleaved layout.
func NewSimilarWordReplacement(nearest NearestWords, opts ...Option) (*SimilarWordReplacement, error) {
	if nearest == nil {
		return nil, errors.Wrap(ErrInvalidOption, "SimilarWordReplacement requires word vectors")
	}
	o, err := newOptions("SimilarWordReplacement", Options{Alpha: 0.1, NumAug: 4, Layout: Interleaved}, opts)
	if err != nil {
		return nil, err
	}
	return &SimilarWordReplacement{opts: o, nearest: nearest}, nil
}

// Name of the augmenter.
func (s *SimilarWordReplacement) Name() string { return "SimilarWordReplacement" }

// Options returns the augmenter's configuration.
func (s *SimilarWordReplacement) Options() Options { return *s.opts }

// Augment implements Augmenter.
func (s *SimilarWordReplacement) Augment(ctx context.Context, texts []string) ([]string, error) {
	return run(ctx, s.Name(), s.opts, texts, func(_ *rand.Rand, texts []string) variantFn[string] {
		sel := wordSelector(s.opts.TFIDF, tokenizeAll(texts, strings.Fields), nil)
		return repeat(s.opts.NumAug, func(rng *rand.Rand, text string) string {
			return strings.Join(noise.ReplaceWords(rng, strings.Fields(text), s.opts.Alpha, sel, s.similarWord), " ")
		})
	})
}

// similarWord implements noise.WordSubstituter.
func (s *SimilarWordReplacement) similarWord(rng *rand.Rand, word string) string {
	similar, err := s.nearest.MostSimilar(word, NumSimilarCandidates)
	if err != nil {
		if !errors.Is(err, vectors.ErrUnknownWord) {
			s.opts.Logger.Sugar().Debugf("similar words of %q: %v", word, err)
		}
		return word
	}
	candidates := make([]string, 0, len(similar))
	for _, sim := range similar {
		if !strings.EqualFold(sim.Word, word) {
			candidates = append(candidates, sim.Word)
		}
	}
	if len(candidates) == 0 {
		return word
	}
	return candidates[rng.IntN(len(candidates))]
}
