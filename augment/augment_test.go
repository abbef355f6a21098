package augment

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/go-faker/faker/v4"
	"github.com/gomlx/go-textaug/lexicon"
	"github.com/gomlx/go-textaug/noise"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testThesaurus() lexicon.MapThesaurus {
	th := make(lexicon.MapThesaurus)
	th.Add("quick", "fast", "speedy")
	th.Add("fox", "dodger")
	th.Add("happy", "glad", "felicitous")
	return th
}

func randomTexts(n int) []string {
	texts := make([]string, n)
	for ii := range texts {
		texts[ii] = faker.Paragraph()
	}
	// Degenerate inputs must be handled too.
	return append(texts, "", "a", "word", "Hi.")
}

// noiseAugmenters returns one instance of each augmenter that doesn't need a model.
func noiseAugmenters(t *testing.T, opts ...Option) []Augmenter {
	deps := Dependencies{Thesaurus: testThesaurus(), Vectors: testVectors(t)}
	var augmenters []Augmenter
	for _, name := range []string{"CharacterNoise", "KeyboardNoise", "OCRNoise", "OCRAugmentation", "WordSplit",
		"EasyDataAugmentation", "SynonymReplacement", "SimilarWordReplacement"} {
		a, err := New(name, deps, opts...)
		require.NoError(t, err, "creating %s", name)
		augmenters = append(augmenters, a)
	}
	return augmenters
}

type optionsGetter interface {
	Options() Options
}

func TestOutputLength(t *testing.T) {
	ctx := context.Background()
	texts := randomTexts(5)
	for _, layout := range []Layout{LayoutDefault, Interleaved, OriginalsFirst, VariantsOnly} {
		for _, numAug := range []int{1, 3} {
			for _, a := range noiseAugmenters(t, WithNumAug(numAug), WithLayout(layout), WithAlpha(0.3)) {
				out, err := a.Augment(ctx, texts)
				require.NoError(t, err)
				resolved := a.(optionsGetter).Options().Layout
				assert.Len(t, out, resolved.OutputSize(len(texts), numAug), "%s with layout %s", a.Name(), layout)
			}
		}
	}
}

func TestLayouts(t *testing.T) {
	originals := []string{"a", "b"}
	variants := [][]string{{"a1", "a2"}, {"b1", "b2"}}
	assert.Equal(t, []string{"a", "a1", "a2", "b", "b1", "b2"}, Interleaved.arrange(originals, variants))
	assert.Equal(t, []string{"a", "b", "a1", "a2", "b1", "b2"}, OriginalsFirst.arrange(originals, variants))
	assert.Equal(t, []string{"a1", "a2", "b1", "b2"}, VariantsOnly.arrange(originals, variants))

	for _, layout := range []Layout{Interleaved, OriginalsFirst, VariantsOnly} {
		parsed, err := ParseLayout(layout.String())
		require.NoError(t, err)
		assert.Equal(t, layout, parsed)
	}
	_, err := ParseLayout("sideways")
	assert.True(t, errors.Is(err, ErrInvalidOption))
}

func TestDefaultLayouts(t *testing.T) {
	want := map[string]Layout{
		"CharacterNoise":         Interleaved,
		"KeyboardNoise":          OriginalsFirst,
		"OCRNoise":               OriginalsFirst,
		"OCRAugmentation":        Interleaved,
		"WordSplit":              OriginalsFirst,
		"EasyDataAugmentation":   Interleaved,
		"SynonymReplacement":     OriginalsFirst,
		"SimilarWordReplacement": Interleaved,
	}
	for _, a := range noiseAugmenters(t) {
		assert.Equal(t, want[a.Name()], a.(optionsGetter).Options().Layout, a.Name())
	}
}

func TestSeededDeterminism(t *testing.T) {
	ctx := context.Background()
	texts := randomTexts(5)
	for _, a := range noiseAugmenters(t, WithSeed(42), WithAlpha(0.3)) {
		first, err := a.Augment(ctx, texts)
		require.NoError(t, err)
		second, err := a.Augment(ctx, texts)
		require.NoError(t, err)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("%s is not deterministic with a fixed seed (-first +second):\n%s", a.Name(), diff)
		}
	}
}

func TestConcurrentAugmentIsDeterministic(t *testing.T) {
	ctx := context.Background()
	texts := randomTexts(3)
	a, err := NewCharacterNoise(WithSeed(7), WithAlpha(0.2))
	require.NoError(t, err)
	want, err := a.Augment(ctx, texts)
	require.NoError(t, err)

	const numGoroutines = 8
	results := make(chan []string, numGoroutines)
	for range numGoroutines {
		go func() {
			out, err := a.Augment(ctx, texts)
			assert.NoError(t, err)
			results <- out
		}()
	}
	for range numGoroutines {
		assert.Equal(t, want, <-results)
	}
}

func TestInvalidOptions(t *testing.T) {
	for _, tc := range []struct {
		name string
		opts []Option
		want error
	}{
		{"negative alpha", []Option{WithAlpha(-0.1)}, ErrInvalidOption},
		{"alpha above 1", []Option{WithAlpha(1.5)}, ErrInvalidOption},
		{"zero augmentations", []Option{WithNumAug(0)}, ErrInvalidOption},
		{"unknown layout", []Option{WithLayout(Layout(99))}, ErrInvalidOption},
		{"unknown operation", []Option{WithOperations("insertion", "transmogrify")}, ErrUnknownOperation},
		{"no operations", []Option{WithOperations()}, ErrInvalidOption},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCharacterNoise(tc.opts...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
			fmt.Printf("\t%s: %v\n", tc.name, err)
		})
	}

	// Operations valid for one augmenter may be invalid for another.
	_, err := NewEasyDataAugmentation(testThesaurus(), WithOperations(OpReplace))
	assert.True(t, errors.Is(err, ErrUnknownOperation))
	_, err = NewEasyDataAugmentation(nil)
	assert.True(t, errors.Is(err, ErrInvalidOption), "insertion without thesaurus")
	_, err = NewEasyDataAugmentation(nil, WithOperations(OpDeletion, OpShuffle))
	assert.NoError(t, err)
	_, err = NewSynonymReplacement(nil)
	assert.True(t, errors.Is(err, ErrInvalidOption))
}

func TestRegistry(t *testing.T) {
	names := Names()
	assert.True(t, slices.IsSorted(names))
	assert.Len(t, names, 12)
	_, err := New("Teleport", Dependencies{})
	assert.True(t, errors.Is(err, ErrUnknownAugmenter))

	// Model backed augmenters fail without their collaborator, and don't return a typed nil.
	a, err := New("BackTranslation", Dependencies{}, WithLanguages("en", "fr"))
	assert.True(t, errors.Is(err, ErrInvalidOption))
	assert.Nil(t, a)
}

func TestCanceledContext(t *testing.T) {
	a, err := NewCharacterNoise()
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = a.Augment(ctx, []string{"some text"})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestKeyboardNoiseCat(t *testing.T) {
	a, err := NewKeyboardNoise(WithAlpha(1), WithSeed(3), WithNumAug(1))
	require.NoError(t, err)
	out, err := a.Augment(context.Background(), []string{"cat"})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "cat", out[0])
	variant := []rune(out[1])
	require.Len(t, variant, 3)
	for ii, r := range "cat" {
		assert.Contains(t, noise.Keyboard[r], string(variant[ii]), "character #%d of %q", ii, out[1])
	}
}

func TestOCRNoiseStaysInTable(t *testing.T) {
	a, err := NewOCRNoise(WithAlpha(1), WithNumAug(10))
	require.NoError(t, err)
	out, err := a.Augment(context.Background(), []string{"m"})
	require.NoError(t, err)
	for _, variant := range out[1:] {
		assert.Contains(t, noise.OCR['m'], variant)
	}
}

func TestCharacterNoiseOperations(t *testing.T) {
	ctx := context.Background()
	text := "The quick brown fox jumps over the lazy dog"

	a, err := NewCharacterNoise(WithOperations(OpDeletion), WithAlpha(1), WithNumAug(2))
	require.NoError(t, err)
	out, err := a.Augment(ctx, []string{text})
	require.NoError(t, err)
	assert.Equal(t, []string{text, "", ""}, out)

	a, err = NewCharacterNoise(WithOperations(OpSwap), WithAlpha(0.5), WithNumAug(3))
	require.NoError(t, err)
	out, err = a.Augment(ctx, []string{text})
	require.NoError(t, err)
	for _, variant := range out[1:] {
		assert.Equal(t, sortedRunes(text), sortedRunes(variant))
	}

	a, err = NewCharacterNoise(WithOperations(OpReplace), WithAlpha(0), WithNumAug(3))
	require.NoError(t, err)
	out, err = a.Augment(ctx, []string{text})
	require.NoError(t, err)
	assert.Equal(t, []string{text, text, text, text}, out)

	// With a table, replaced characters come from the table (or the random charset).
	a, err = NewCharacterNoise(WithOperations(OpReplace), WithAlpha(1), WithNumAug(3))
	require.NoError(t, err)
	a.WithTable(noise.Table{'z': {"Z"}})
	out, err = a.Augment(ctx, []string{"zzz"})
	require.NoError(t, err)
	assert.Equal(t, []string{"zzz", "ZZZ", "ZZZ", "ZZZ"}, out)
}

func sortedRunes(s string) []rune {
	r := []rune(s)
	slices.Sort(r)
	return r
}

func TestWordSplit(t *testing.T) {
	a, err := NewWordSplit(WithAlpha(1), WithNumAug(5))
	require.NoError(t, err)
	out, err := a.Augment(context.Background(), []string{"an elephant"})
	require.NoError(t, err)
	for _, variant := range out[1:] {
		fields := strings.Fields(variant)
		require.Len(t, fields, 3, "variant %q", variant)
		assert.Equal(t, "an", fields[0])
		assert.Equal(t, "elephant", fields[1]+fields[2])
	}
}
