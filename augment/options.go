package augment

import (
	"math"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Options configure an augmenter. Each constructor starts from its own defaults, and applies the
// given Option functions on top.
type Options struct {
	// Alpha is the perturbation rate in [0, 1]: the probability of editing each character or word,
	// or the fraction of words/characters edited, depending on the operation.
	Alpha float64

	// NumAug is the number of variants generated per input text. It must be > 0.
	NumAug int

	// Seed of the random generator. If set, each Augment call restarts from it, so calls with the
	// same input produce the same output. If nil, every call is seeded randomly.
	Seed *uint64

	// ShowProgress renders a progress bar on stderr during Augment.
	ShowProgress bool

	// TFIDF selects the words to edit with probability proportional to their TF-IDF weight,
	// fitted over the whole batch given to Augment, instead of uniformly.
	TFIDF bool

	// Layout of the output, LayoutDefault selects the augmenter's default.
	Layout Layout

	// Operations enabled, for augmenters that pick one operation per variant.
	Operations []string

	// BaseLanguage and InterimLanguage used by BackTranslation, as ISO 639-1 codes.
	BaseLanguage, InterimLanguage string

	// Logger used to report progress and fallbacks. Defaults to a no-op logger.
	Logger *zap.Logger
}

// Option modifies Options.
type Option func(*Options)

// WithAlpha sets the perturbation rate, see Options.Alpha.
func WithAlpha(alpha float64) Option {
	return func(o *Options) { o.Alpha = alpha }
}

// WithNumAug sets the number of variants generated per text.
func WithNumAug(numAug int) Option {
	return func(o *Options) { o.NumAug = numAug }
}

// WithSeed makes Augment calls reproducible, see Options.Seed.
func WithSeed(seed uint64) Option {
	return func(o *Options) { o.Seed = &seed }
}

// WithProgress enables or disables the progress bar.
func WithProgress(show bool) Option {
	return func(o *Options) { o.ShowProgress = show }
}

// WithTFIDF enables TF-IDF weighted selection of the words to edit.
func WithTFIDF(enabled bool) Option {
	return func(o *Options) { o.TFIDF = enabled }
}

// WithLayout sets the output layout.
func WithLayout(layout Layout) Option {
	return func(o *Options) { o.Layout = layout }
}

// WithOperations sets the operations enabled, e.g. WithOperations("insertion", "swap").
func WithOperations(operations ...string) Option {
	return func(o *Options) { o.Operations = slices.Clone(operations) }
}

// WithLanguages sets the base and interim languages of BackTranslation.
func WithLanguages(base, interim string) Option {
	return func(o *Options) {
		o.BaseLanguage = base
		o.InterimLanguage = interim
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

// newOptions applies opts over defaults and validates the result.
func newOptions(name string, defaults Options, opts []Option) (*Options, error) {
	o := defaults
	o.Operations = slices.Clone(defaults.Operations)
	for _, opt := range opts {
		opt(&o)
	}
	if o.Layout == LayoutDefault {
		o.Layout = defaults.Layout
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if err := o.validate(); err != nil {
		return nil, errors.WithMessagef(err, "configuring %s", name)
	}
	return &o, nil
}

func (o *Options) validate() error {
	if math.IsNaN(o.Alpha) || o.Alpha < 0 || o.Alpha > 1 {
		return errors.Wrapf(ErrInvalidOption, "alpha must be in [0, 1], got %g", o.Alpha)
	}
	if o.NumAug <= 0 {
		return errors.Wrapf(ErrInvalidOption, "number of augmentations must be > 0, got %d", o.NumAug)
	}
	if _, found := layoutNames[o.Layout]; !found || o.Layout == LayoutDefault {
		return errors.Wrapf(ErrInvalidOption, "invalid layout %s", o.Layout)
	}
	return nil
}

// validateOperations checks that operations is not empty and only holds names in valid.
func validateOperations(operations, valid []string) error {
	if len(operations) == 0 {
		return errors.Wrapf(ErrInvalidOption, "no operations given, valid operations are %s", strings.Join(valid, ", "))
	}
	for _, op := range operations {
		if !slices.Contains(valid, op) {
			return errors.Wrapf(ErrUnknownOperation, "invalid operation %q, valid operations are %s", op, strings.Join(valid, ", "))
		}
	}
	return nil
}
