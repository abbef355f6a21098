package augment

import (
	"context"
	"math/rand/v2"
	"strings"

	"github.com/gomlx/go-textaug/inference"
	"github.com/gomlx/go-textaug/internal/tokenize"
	"github.com/gomlx/go-textaug/noise"
	"github.com/gomlx/go-textaug/tokenizers"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// modelBase holds what is common to the model backed augmenters.
type modelBase struct {
	name string
	opts *Options
}

// Name of the augmenter.
func (m *modelBase) Name() string { return m.name }

// Options returns the augmenter's configuration.
func (m *modelBase) Options() Options { return *m.opts }

// results runs generate over texts with a fresh generator, returning the variants of each text.
func (m *modelBase) results(ctx context.Context, texts []string,
	prepare func(rng *rand.Rand, texts []string) variantFn[Result]) ([][]Result, error) {
	rng := newRand(m.opts.Seed)
	results, err := collect(ctx, m.name, m.opts, rng, texts, prepare(rng, texts))
	if err != nil {
		return nil, err
	}
	var numFallbacks int
	for _, textResults := range results {
		for _, r := range textResults {
			if r.Fallback {
				numFallbacks++
			}
		}
	}
	if numFallbacks > 0 {
		m.opts.Logger.Info("model failed to generate some variants, originals used instead",
			zap.String("augmenter", m.name), zap.Int("fallbacks", numFallbacks), zap.Int("inputs", len(texts)))
	}
	return results, nil
}

func (m *modelBase) augmentResults(ctx context.Context, texts []string,
	prepare func(rng *rand.Rand, texts []string) variantFn[Result]) ([]Result, error) {
	results, err := m.results(ctx, texts, prepare)
	if err != nil {
		return nil, err
	}
	flat := make([]Result, 0, len(texts)*m.opts.NumAug)
	for _, textResults := range results {
		flat = append(flat, textResults...)
	}
	return flat, nil
}

func (m *modelBase) augment(ctx context.Context, texts []string,
	prepare func(rng *rand.Rand, texts []string) variantFn[Result]) ([]string, error) {
	results, err := m.results(ctx, texts, prepare)
	if err != nil {
		return nil, err
	}
	variants := make([][]string, len(results))
	for ii, textResults := range results {
		variants[ii] = make([]string, len(textResults))
		for jj, r := range textResults {
			variants[ii][jj] = r.Text
		}
	}
	return m.opts.Layout.arrange(texts, variants), nil
}

// fallback converts a generation failure of the model into a fallback Result for source. Any
// other error is returned as is.
func (m *modelBase) fallback(source string, err error) (Result, error) {
	if !inference.IsGenerationFailure(err) {
		return Result{}, err
	}
	m.opts.Logger.Debug("falling back to original", zap.String("augmenter", m.name), zap.Error(err))
	return Result{Source: source, Text: source, Fallback: true, Cause: err}, nil
}

// merge joins per sentence results into one Result for source: the texts are joined with a
// space, and it is a fallback if any of the sentences fell back.
func merge(source string, parts []Result) Result {
	texts := make([]string, len(parts))
	merged := Result{Source: source}
	for ii, part := range parts {
		texts[ii] = part.Text
		if part.Fallback && !merged.Fallback {
			merged.Fallback = true
			merged.Cause = part.Cause
		}
	}
	merged.Text = strings.Join(texts, " ")
	if len(parts) == 0 {
		merged.Text = source
	}
	return merged
}

// BackTranslation generates variants by translating each text to an interim language and back to
// its base language.
type BackTranslation struct {
	modelBase
	translator inference.Translator
}

var _ ResultAugmenter = (*BackTranslation)(nil)

// NewBackTranslation creates a BackTranslation augmenter. The languages must be set with
// WithLanguages. Defaults: 1 variant per text, Interleaved layout.
func NewBackTranslation(translator inference.Translator, opts ...Option) (*BackTranslation, error) {
	const name = "BackTranslation"
	if translator == nil {
		return nil, errors.Wrapf(ErrInvalidOption, "%s requires a translator", name)
	}
	o, err := newOptions(name, Options{NumAug: 1, Layout: Interleaved}, opts)
	if err != nil {
		return nil, err
	}
	if o.BaseLanguage == "" || o.InterimLanguage == "" {
		return nil, errors.Wrapf(ErrInvalidOption, "%s requires base and interim languages", name)
	}
	if o.BaseLanguage == o.InterimLanguage {
		return nil, errors.Wrapf(ErrInvalidOption, "%s base and interim languages must differ, got %q", name, o.BaseLanguage)
	}
	return &BackTranslation{modelBase: modelBase{name: name, opts: o}, translator: translator}, nil
}

// Augment implements Augmenter.
func (b *BackTranslation) Augment(ctx context.Context, texts []string) ([]string, error) {
	return b.augment(ctx, texts, perText(b.variants))
}

// AugmentResults implements ResultAugmenter.
func (b *BackTranslation) AugmentResults(ctx context.Context, texts []string) ([]Result, error) {
	return b.augmentResults(ctx, texts, perText(b.variants))
}

func (b *BackTranslation) variants(ctx context.Context, _ *rand.Rand, text string) ([]Result, error) {
	results := make([]Result, b.opts.NumAug)
	for ii := range results {
		r, err := b.roundTrip(ctx, text)
		if err != nil {
			return nil, err
		}
		results[ii] = r
	}
	return results, nil
}

func (b *BackTranslation) roundTrip(ctx context.Context, text string) (Result, error) {
	interim, err := b.translator.Translate(ctx, text, b.opts.BaseLanguage, b.opts.InterimLanguage)
	if err != nil {
		return b.fallback(text, err)
	}
	back, err := b.translator.Translate(ctx, interim, b.opts.InterimLanguage, b.opts.BaseLanguage)
	if err != nil {
		return b.fallback(text, err)
	}
	return Result{Source: text, Text: back}, nil
}

// AbstractiveSummarization generates variants by summarizing each text.
type AbstractiveSummarization struct {
	modelBase
	summarizer inference.Summarizer
}

var _ ResultAugmenter = (*AbstractiveSummarization)(nil)

// NewAbstractiveSummarization creates an AbstractiveSummarization augmenter.
// Defaults: 1 variant per text, OriginalsFirst layout.
func NewAbstractiveSummarization(summarizer inference.Summarizer, opts ...Option) (*AbstractiveSummarization, error) {
	const name = "AbstractiveSummarization"
	if summarizer == nil {
		return nil, errors.Wrapf(ErrInvalidOption, "%s requires a summarizer", name)
	}
	o, err := newOptions(name, Options{NumAug: 1, Layout: OriginalsFirst}, opts)
	if err != nil {
		return nil, err
	}
	return &AbstractiveSummarization{modelBase: modelBase{name: name, opts: o}, summarizer: summarizer}, nil
}

// Augment implements Augmenter.
func (a *AbstractiveSummarization) Augment(ctx context.Context, texts []string) ([]string, error) {
	return a.augment(ctx, texts, perText(a.variants))
}

// AugmentResults implements ResultAugmenter.
func (a *AbstractiveSummarization) AugmentResults(ctx context.Context, texts []string) ([]Result, error) {
	return a.augmentResults(ctx, texts, perText(a.variants))
}

func (a *AbstractiveSummarization) variants(ctx context.Context, _ *rand.Rand, text string) ([]Result, error) {
	results := make([]Result, a.opts.NumAug)
	for ii := range results {
		summary, err := a.summarizer.Summarize(ctx, text)
		if err != nil {
			r, err := a.fallback(text, err)
			if err != nil {
				return nil, err
			}
			results[ii] = r
			continue
		}
		results[ii] = Result{Source: text, Text: summary}
	}
	return results, nil
}

// Paraphrase generates variants by paraphrasing each sentence of a text: the i-th variant joins
// the i-th paraphrase of every sentence.
type Paraphrase struct {
	modelBase
	paraphraser inference.Paraphraser
	tokenizer   tokenizers.Tokenizer
	maxTokens   int
}

var _ ResultAugmenter = (*Paraphrase)(nil)

// NewParaphrase creates a Paraphrase augmenter.
// Defaults: 10 variants per text, OriginalsFirst layout.
func NewParaphrase(paraphraser inference.Paraphraser, opts ...Option) (*Paraphrase, error) {
	const name = "Paraphrase"
	if paraphraser == nil {
		return nil, errors.Wrapf(ErrInvalidOption, "%s requires a paraphraser", name)
	}
	o, err := newOptions(name, Options{NumAug: 10, Layout: OriginalsFirst}, opts)
	if err != nil {
		return nil, err
	}
	return &Paraphrase{modelBase: modelBase{name: name, opts: o}, paraphraser: paraphraser}, nil
}

// WithTruncation truncates sentences to maxTokens tokens of the model's tokenizer before sending
// them to the paraphraser. See tokenizers.New and api.Config.MaxInputTokens.
//
// It returns the augmenter itself, and should be called before it is used.
func (p *Paraphrase) WithTruncation(tokenizer tokenizers.Tokenizer, maxTokens int) *Paraphrase {
	p.tokenizer = tokenizer
	p.maxTokens = maxTokens
	return p
}

// Augment implements Augmenter.
func (p *Paraphrase) Augment(ctx context.Context, texts []string) ([]string, error) {
	return p.augment(ctx, texts, perText(p.variants))
}

// AugmentResults implements ResultAugmenter.
func (p *Paraphrase) AugmentResults(ctx context.Context, texts []string) ([]Result, error) {
	return p.augmentResults(ctx, texts, perText(p.variants))
}

func (p *Paraphrase) variants(ctx context.Context, _ *rand.Rand, text string) ([]Result, error) {
	numAug := p.opts.NumAug
	sentences := tokenize.Sentences(text)
	if len(sentences) == 0 {
		sentences = []string{text}
	}
	// perSentence[s][i] is the i-th paraphrase of sentence s.
	perSentence := make([][]Result, len(sentences))
	for s, sentence := range sentences {
		if p.tokenizer != nil && p.maxTokens > 0 {
			sentence = tokenizers.Truncate(p.tokenizer, sentence, p.maxTokens)
		}
		perSentence[s] = make([]Result, numAug)
		paraphrases, err := p.paraphraser.Paraphrase(ctx, sentence, numAug)
		if err == nil && len(paraphrases) == 0 {
			err = inference.GenerationErrorf("no paraphrases for sentence #%d", s)
		}
		if err != nil {
			r, err := p.fallback(sentences[s], err)
			if err != nil {
				return nil, err
			}
			for ii := range perSentence[s] {
				perSentence[s][ii] = r
			}
			continue
		}
		// If fewer than numAug paraphrases were returned, they are reused in order.
		for ii := range perSentence[s] {
			perSentence[s][ii] = Result{Source: sentences[s], Text: paraphrases[ii%len(paraphrases)]}
		}
	}
	results := make([]Result, numAug)
	parts := make([]Result, len(sentences))
	for ii := range results {
		for s := range sentences {
			parts[s] = perSentence[s][ii]
		}
		results[ii] = merge(text, parts)
	}
	return results, nil
}

// ContextualWordReplacement generates variants by masking one random word in each sentence, and
// replacing it by one of the candidates proposed by a masked language model.
type ContextualWordReplacement struct {
	modelBase
	filler inference.MaskFiller
}

var _ ResultAugmenter = (*ContextualWordReplacement)(nil)

// NewContextualWordReplacement creates a ContextualWordReplacement augmenter. With TF-IDF enabled,
// the masked word is drawn proportionally to its weight in the batch.
// Defaults: 10 variants per text, OriginalsFirst layout.
func NewContextualWordReplacement(filler inference.MaskFiller, opts ...Option) (*ContextualWordReplacement, error) {
	const name = "ContextualWordReplacement"
	if filler == nil {
		return nil, errors.Wrapf(ErrInvalidOption, "%s requires a mask filler", name)
	}
	o, err := newOptions(name, Options{NumAug: 10, Layout: OriginalsFirst}, opts)
	if err != nil {
		return nil, err
	}
	return &ContextualWordReplacement{modelBase: modelBase{name: name, opts: o}, filler: filler}, nil
}

// Augment implements Augmenter.
func (c *ContextualWordReplacement) Augment(ctx context.Context, texts []string) ([]string, error) {
	return c.augment(ctx, texts, c.prepare)
}

// AugmentResults implements ResultAugmenter.
func (c *ContextualWordReplacement) AugmentResults(ctx context.Context, texts []string) ([]Result, error) {
	return c.augmentResults(ctx, texts, c.prepare)
}

func (c *ContextualWordReplacement) prepare(_ *rand.Rand, texts []string) variantFn[Result] {
	sel := wordSelector(c.opts.TFIDF, tokenizeAll(texts, strings.Fields), nil)
	maskToken := c.filler.MaskToken()
	return func(ctx context.Context, rng *rand.Rand, text string) ([]Result, error) {
		sentences := tokenize.Sentences(text)
		results := make([]Result, c.opts.NumAug)
		parts := make([]Result, len(sentences))
		for ii := range results {
			for s, sentence := range sentences {
				r, err := c.replace(ctx, rng, sel, maskToken, sentence)
				if err != nil {
					return nil, err
				}
				parts[s] = r
			}
			results[ii] = merge(text, parts)
		}
		return results, nil
	}
}

// replace masks one word of sentence and returns one of the filled sequences, chosen uniformly.
func (c *ContextualWordReplacement) replace(ctx context.Context, rng *rand.Rand, sel noise.Selector,
	maskToken, sentence string) (Result, error) {
	words := strings.Fields(sentence)
	idx := sel(rng, words)
	if idx < 0 {
		return Result{Source: sentence, Text: sentence}, nil
	}
	words[idx] = maskToken
	candidates, err := c.filler.FillMask(ctx, strings.Join(words, " "))
	if err == nil && len(candidates) == 0 {
		err = inference.GenerationErrorf("no candidates to fill the mask")
	}
	if err != nil {
		return c.fallback(sentence, err)
	}
	chosen := candidates[rng.IntN(len(candidates))]
	return Result{Source: sentence, Text: strings.TrimSpace(chosen.Sequence)}, nil
}
