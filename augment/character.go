package augment

import (
	"context"
	"math/rand/v2"

	"github.com/gomlx/go-textaug/noise"
)

// Character noise operations.
const (
	OpInsertion = "insertion"
	OpDeletion  = "deletion"
	OpSwap      = "swap"
	OpReplace   = "replace"
	OpShuffle   = "shuffle"
)

// CharacterNoise adds character level noise: each variant applies one operation, picked uniformly
// among the enabled ones:
//
//   - insertion: floor(alpha * word_count) random characters inserted in random words.
//   - deletion: each character dropped with probability alpha.
//   - swap: floor(alpha * char_count) swaps of two random characters.
//   - replace: each character replaced by a random one with probability alpha.
//
// The inserted and replacing characters come from noise.RandomCharacters, unless a confusion table
// is configured with WithTable.
type CharacterNoise struct {
	opts *Options
	sub  noise.Substituter
}

var _ Augmenter = (*CharacterNoise)(nil)

// CharacterNoiseOperations are the valid operations of CharacterNoise.
var CharacterNoiseOperations = []string{OpInsertion, OpDeletion, OpSwap, OpReplace}

// NewCharacterNoise creates a CharacterNoise augmenter. Defaults: alpha=0.01, 4 variants per text,
// all operations, Interleaved layout.
func NewCharacterNoise(opts ...Option) (*CharacterNoise, error) {
	o, err := newOptions("CharacterNoise", Options{
		Alpha:      0.01,
		NumAug:     4,
		Operations: CharacterNoiseOperations,
		Layout:     Interleaved,
	}, opts)
	if err != nil {
		return nil, err
	}
	if err := validateOperations(o.Operations, CharacterNoiseOperations); err != nil {
		return nil, err
	}
	return &CharacterNoise{opts: o, sub: noise.RandomCharacters}, nil
}

// WithTable makes insertion and replacement context dependent: characters with an entry in table
// are replaced by one of their substitutes, and insertions use a substitute of the character
// following the insertion point. Characters without an entry still use noise.RandomCharacters.
//
// It returns the augmenter itself, and should be called before it is used.
func (c *CharacterNoise) WithTable(table noise.Table) *CharacterNoise {
	c.sub = noise.WithFallback(table, noise.RandomCharacters)
	return c
}

// Name of the augmenter.
func (c *CharacterNoise) Name() string { return "CharacterNoise" }

// Options returns the augmenter's configuration.
func (c *CharacterNoise) Options() Options { return *c.opts }

// Augment implements Augmenter.
func (c *CharacterNoise) Augment(ctx context.Context, texts []string) ([]string, error) {
	return run(ctx, c.Name(), c.opts, texts, perText(repeat(c.opts.NumAug, c.variant)))
}

func (c *CharacterNoise) variant(rng *rand.Rand, text string) string {
	alpha := c.opts.Alpha
	switch c.opts.Operations[rng.IntN(len(c.opts.Operations))] {
	case OpInsertion:
		return noise.Insert(rng, text, alpha, c.sub)
	case OpDeletion:
		return noise.Delete(rng, text, alpha)
	case OpSwap:
		return noise.Swap(rng, text, alpha)
	default:
		return noise.Replace(rng, text, alpha, c.sub)
	}
}

// TableNoise replaces each character, with probability alpha, by one of its substitutes in a
// confusion table. Characters not in the table are kept. See NewKeyboardNoise, NewOCRNoise and
// NewOCRAugmentation.
type TableNoise struct {
	name  string
	opts  *Options
	table noise.Table
}

var _ Augmenter = (*TableNoise)(nil)

// NewTableNoise creates a replace-only augmenter for an arbitrary confusion table.
// Defaults: alpha=0.01, 4 variants per text, OriginalsFirst layout.
func NewTableNoise(name string, table noise.Table, opts ...Option) (*TableNoise, error) {
	return newTableNoise(name, table, Options{Alpha: 0.01, NumAug: 4, Layout: OriginalsFirst}, opts)
}

func newTableNoise(name string, table noise.Table, defaults Options, opts []Option) (*TableNoise, error) {
	o, err := newOptions(name, defaults, opts)
	if err != nil {
		return nil, err
	}
	return &TableNoise{name: name, opts: o, table: table}, nil
}

// NewKeyboardNoise creates an augmenter that mimics typing mistakes, replacing characters by keys
// adjacent to them on a QWERTY keyboard (noise.Keyboard).
// Defaults: alpha=0.01, 4 variants per text, OriginalsFirst layout.
func NewKeyboardNoise(opts ...Option) (*TableNoise, error) {
	return newTableNoise("KeyboardNoise", noise.Keyboard,
		Options{Alpha: 0.01, NumAug: 4, Layout: OriginalsFirst}, opts)
}

// NewOCRNoise creates an augmenter that mimics OCR errors, replacing characters by visually
// similar ones (noise.OCR), e.g. "m" by "rn".
// Defaults: alpha=0.01, 4 variants per text, OriginalsFirst layout.
func NewOCRNoise(opts ...Option) (*TableNoise, error) {
	return newTableNoise("OCRNoise", noise.OCR,
		Options{Alpha: 0.01, NumAug: 4, Layout: OriginalsFirst}, opts)
}

// NewOCRAugmentation is NewOCRNoise with a higher default rate and each original followed by its
// variants. Defaults: alpha=0.05, 4 variants per text, Interleaved layout.
func NewOCRAugmentation(opts ...Option) (*TableNoise, error) {
	return newTableNoise("OCRAugmentation", noise.OCR,
		Options{Alpha: 0.05, NumAug: 4, Layout: Interleaved}, opts)
}

// Name of the augmenter.
func (t *TableNoise) Name() string { return t.name }

// Options returns the augmenter's configuration.
func (t *TableNoise) Options() Options { return *t.opts }

// Augment implements Augmenter.
func (t *TableNoise) Augment(ctx context.Context, texts []string) ([]string, error) {
	return run(ctx, t.name, t.opts, texts, perText(repeat(t.opts.NumAug, func(rng *rand.Rand, text string) string {
		return noise.Replace(rng, text, t.opts.Alpha, t.table)
	})))
}
