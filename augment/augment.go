// Package augment implements the text augmenters: each one takes an ordered collection of texts and
// returns it expanded with generated variants.
//
// There are two families:
//
//   - Noise augmenters (CharacterNoise, KeyboardNoise, OCRNoise, OCRAugmentation, WordSplit,
//     EasyDataAugmentation, SynonymReplacement, SimilarWordReplacement) perturb characters or words
//     with random edits, controlled by Options.Alpha.
//   - Model backed augmenters (BackTranslation, AbstractiveSummarization, Paraphrase,
//     ContextualWordReplacement) delegate generation to an inference collaborator. When the model
//     fails for a specific input (see inference.ErrGeneration) they fall back to the original text,
//     and report it in a Result.
//
// Every Augment call draws from its own random generator, seeded from Options.Seed if set, so
// augmenters are safe for concurrent use and seeded calls are reproducible.
//
// Augmenters can be created by name with New, see Names for the list of registered ones.
package augment

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// Configuration errors, returned (wrapped) by the constructors before any text is processed.
var (
	ErrInvalidOption    = errors.New("invalid option")
	ErrUnknownOperation = errors.New("unknown operation")
	ErrUnknownAugmenter = errors.New("unknown augmenter")
)

// Augmenter expands a collection of texts with generated variants.
type Augmenter interface {
	// Name of the augmenter, as registered with Register.
	Name() string

	// Augment returns the texts and their variants, laid out according to the augmenter's Layout.
	// Inputs are processed sequentially in order; ctx is checked between inputs.
	Augment(ctx context.Context, texts []string) ([]string, error)
}

// Layout defines how originals and variants are arranged in the output of Augment.
type Layout int

const (
	// LayoutDefault selects the augmenter's own default layout.
	LayoutDefault Layout = iota

	// Interleaved emits each original followed by its variants.
	Interleaved

	// OriginalsFirst emits all the originals, in order, followed by all the variants.
	OriginalsFirst

	// VariantsOnly discards the originals.
	VariantsOnly
)

var layoutNames = map[Layout]string{
	LayoutDefault:  "default",
	Interleaved:    "interleaved",
	OriginalsFirst: "originals_first",
	VariantsOnly:   "variants_only",
}

// String implements fmt.Stringer.
func (l Layout) String() string {
	if name, found := layoutNames[l]; found {
		return name
	}
	return fmt.Sprintf("Layout(%d)", int(l))
}

// ParseLayout converts a layout name (as returned by Layout.String) to a Layout.
// The empty string is LayoutDefault.
func ParseLayout(name string) (Layout, error) {
	if name == "" {
		return LayoutDefault, nil
	}
	for layout, layoutName := range layoutNames {
		if layoutName == name {
			return layout, nil
		}
	}
	return LayoutDefault, errors.Wrapf(ErrInvalidOption, "unknown layout %q, valid layouts are interleaved, originals_first and variants_only", name)
}

// OutputSize returns the number of texts Augment returns for numInputs inputs.
func (l Layout) OutputSize(numInputs, numAug int) int {
	if l == VariantsOnly {
		return numInputs * numAug
	}
	return numInputs * (numAug + 1)
}

// arrange lays out originals and their variants. variants[i] holds the variants of originals[i].
func (l Layout) arrange(originals []string, variants [][]string) []string {
	total := len(originals)
	for _, v := range variants {
		total += len(v)
	}
	out := make([]string, 0, total)
	switch l {
	case Interleaved:
		for ii, original := range originals {
			out = append(out, original)
			out = append(out, variants[ii]...)
		}
	case OriginalsFirst:
		out = append(out, originals...)
		for _, v := range variants {
			out = append(out, v...)
		}
	case VariantsOnly:
		for _, v := range variants {
			out = append(out, v...)
		}
	default:
		panic(errors.Errorf("layout %s not resolved", l))
	}
	return out
}

// Result of one generated variant of a model backed augmenter.
type Result struct {
	// Source is the original text.
	Source string

	// Text is the generated variant, or Source if Fallback is true.
	Text string

	// Fallback is true if the model failed to generate from Source (or from parts of it, for
	// augmenters that work per sentence), and the original text was used instead.
	Fallback bool

	// Cause of the fallback, an error wrapping inference.ErrGeneration. Nil if Fallback is false.
	Cause error
}

// ResultAugmenter is implemented by the model backed augmenters, exposing whether each variant
// was generated or fell back to the original.
type ResultAugmenter interface {
	Augmenter

	// AugmentResults returns the Options.NumAug variants of each text, in input order, without
	// the originals.
	AugmentResults(ctx context.Context, texts []string) ([]Result, error)
}

// newRand returns the generator for one Augment call.
func newRand(seed *uint64) *rand.Rand {
	if seed != nil {
		return rand.New(rand.NewPCG(*seed, *seed))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// progress reports the inputs processed by an Augment call. It is a no-op if not enabled.
type progress struct {
	bar *progressbar.ProgressBar
}

func newProgress(enabled bool, name string, total int) progress {
	if !enabled {
		return progress{}
	}
	return progress{bar: progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(name),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)}
}

func (p progress) add() {
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

func (p progress) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

// variantFn generates the variants of one text.
type variantFn[T any] func(ctx context.Context, rng *rand.Rand, text string) ([]T, error)

// collect generates the variants of each text in order, checking ctx between texts.
func collect[T any](ctx context.Context, name string, opts *Options, rng *rand.Rand, texts []string,
	generate variantFn[T]) ([][]T, error) {
	bar := newProgress(opts.ShowProgress, name, len(texts))
	defer bar.finish()
	variants := make([][]T, len(texts))
	for ii, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, errors.WithMessagef(err, "%s interrupted at text #%d", name, ii)
		}
		v, err := generate(ctx, rng, text)
		if err != nil {
			return nil, errors.WithMessagef(err, "%s failed on text #%d", name, ii)
		}
		variants[ii] = v
		bar.add()
	}
	return variants, nil
}

// run is the Augment loop shared by the noise augmenters: it creates the call's generator,
// prepares the batch level state with prepare, generates the variants of each text and lays
// them out.
func run(ctx context.Context, name string, opts *Options, texts []string,
	prepare func(rng *rand.Rand, texts []string) variantFn[string]) ([]string, error) {
	rng := newRand(opts.Seed)
	variants, err := collect(ctx, name, opts, rng, texts, prepare(rng, texts))
	if err != nil {
		return nil, err
	}
	out := opts.Layout.arrange(texts, variants)
	opts.Logger.Debug("augmented", zap.String("augmenter", name),
		zap.Int("inputs", len(texts)), zap.Int("outputs", len(out)))
	return out, nil
}

// repeat returns a variantFn that calls once numAug times for each text.
func repeat(numAug int, once func(rng *rand.Rand, text string) string) variantFn[string] {
	return func(_ context.Context, rng *rand.Rand, text string) ([]string, error) {
		v := make([]string, numAug)
		for ii := range v {
			v[ii] = once(rng, text)
		}
		return v, nil
	}
}

// perText adapts a variantFn that needs no batch level state to a prepare function.
func perText[T any](fn variantFn[T]) func(*rand.Rand, []string) variantFn[T] {
	return func(*rand.Rand, []string) variantFn[T] { return fn }
}
