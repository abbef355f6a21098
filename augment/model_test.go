package augment

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/gomlx/go-textaug/inference"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTranslator "translates" by tagging the text with the target language. Texts containing
// "untranslatable" fail with a generation error, texts containing "offline" with a transport error.
type fakeTranslator struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeTranslator) Translate(_ context.Context, text, source, target string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, source+">"+target)
	f.mu.Unlock()
	switch {
	case strings.Contains(text, "untranslatable"):
		return "", inference.GenerationErrorf("degenerate output")
	case strings.Contains(text, "offline"):
		return "", errors.New("connection refused")
	}
	if prefix := "[" + source + "]"; strings.HasPrefix(text, prefix) {
		return strings.TrimPrefix(text, prefix), nil
	}
	return "[" + target + "]" + text, nil
}

type fakeSummarizer struct{}

func (fakeSummarizer) Summarize(_ context.Context, text string) (string, error) {
	if text == "" {
		return "", inference.GenerationErrorf("empty input")
	}
	return "summary of " + strings.Fields(text)[0], nil
}

// fakeParaphraser returns n numbered paraphrases, or only one for sentences containing "once".
type fakeParaphraser struct{}

func (fakeParaphraser) Paraphrase(_ context.Context, sentence string, n int) ([]string, error) {
	if strings.Contains(sentence, "gibberish") {
		return nil, inference.GenerationErrorf("nothing to paraphrase")
	}
	if strings.Contains(sentence, "once") {
		n = 1
	}
	out := make([]string, n)
	for ii := range out {
		out[ii] = fmt.Sprintf("%s#%d", strings.TrimSuffix(sentence, "."), ii)
	}
	return out, nil
}

// fakeMaskFiller fills the mask with "X" and "Y".
type fakeMaskFiller struct {
	mu     sync.Mutex
	masked []string
}

func (f *fakeMaskFiller) MaskToken() string { return "[MASK]" }

func (f *fakeMaskFiller) FillMask(_ context.Context, masked string) ([]inference.Candidate, error) {
	f.mu.Lock()
	f.masked = append(f.masked, masked)
	f.mu.Unlock()
	if strings.Contains(masked, "broken") {
		return nil, inference.GenerationErrorf("runtime failure")
	}
	return []inference.Candidate{
		{Sequence: strings.Replace(masked, "[MASK]", "X", 1), Token: "X", Score: 0.6},
		{Sequence: strings.Replace(masked, "[MASK]", "Y", 1), Token: "Y", Score: 0.3},
	}, nil
}

func TestBackTranslation(t *testing.T) {
	translator := &fakeTranslator{}
	a, err := NewBackTranslation(translator, WithLanguages("en", "fr"))
	require.NoError(t, err)
	texts := []string{"hello", "untranslatable text"}
	out, err := a.Augment(context.Background(), texts)
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "hello", "untranslatable text", "untranslatable text"}, out)
	assert.Equal(t, []string{"en>fr", "fr>en", "en>fr"}, translator.calls)

	results, err := a.AugmentResults(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.False(t, results[0].Fallback)
	assert.True(t, results[1].Fallback)
	assert.Equal(t, "untranslatable text", results[1].Text)
	assert.True(t, inference.IsGenerationFailure(results[1].Cause))

	// Errors that are not generation failures abort the batch.
	_, err = a.Augment(context.Background(), []string{"hello", "offline"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Contains(t, err.Error(), "text #1")

	_, err = NewBackTranslation(translator)
	assert.True(t, errors.Is(err, ErrInvalidOption), "languages are required")
	_, err = NewBackTranslation(translator, WithLanguages("en", "en"))
	assert.True(t, errors.Is(err, ErrInvalidOption))
}

func TestAbstractiveSummarization(t *testing.T) {
	a, err := NewAbstractiveSummarization(fakeSummarizer{})
	require.NoError(t, err)
	out, err := a.Augment(context.Background(), []string{"Cats are great pets.", "", "Dogs too."})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cats are great pets.", "", "Dogs too.", "summary of Cats", "", "summary of Dogs"}, out)

	results, err := a.AugmentResults(context.Background(), []string{""})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Fallback)
}

func TestParaphrase(t *testing.T) {
	a, err := NewParaphrase(fakeParaphraser{}, WithNumAug(3))
	require.NoError(t, err)
	out, err := a.Augment(context.Background(), []string{"First one. Second one."})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"First one. Second one.",
		"First one#0 Second one#0",
		"First one#1 Second one#1",
		"First one#2 Second one#2",
	}, out)

	// Fewer paraphrases than variants are reused, failed sentences fall back to the original.
	results, err := a.AugmentResults(context.Background(), []string{"Say it once. Some gibberish."})
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Equal(t, "Say it once#0 Some gibberish.", r.Text)
		assert.True(t, r.Fallback)
		assert.Equal(t, "Say it once. Some gibberish.", r.Source)
	}
}

func TestContextualWordReplacement(t *testing.T) {
	filler := &fakeMaskFiller{}
	a, err := NewContextualWordReplacement(filler, WithNumAug(4), WithSeed(1))
	require.NoError(t, err)
	out, err := a.Augment(context.Background(), []string{"The cat sat. The dog ran."})
	require.NoError(t, err)
	require.Len(t, out, 5)
	for _, variant := range out[1:] {
		replaced := strings.Count(variant, "X") + strings.Count(variant, "Y")
		assert.Equal(t, 2, replaced, "variant %q should have one replacement per sentence", variant)
	}
	// One word masked per sentence per variant.
	assert.Len(t, filler.masked, 8)
	for _, masked := range filler.masked {
		assert.Equal(t, 1, strings.Count(masked, "[MASK]"))
	}

	// Whichever word is masked, the fake filler still sees "broken" and fails.
	results, err := a.AugmentResults(context.Background(), []string{"broken broken broken."})
	require.NoError(t, err)
	require.Len(t, results, 4)
	for _, r := range results {
		assert.True(t, r.Fallback)
		assert.Equal(t, "broken broken broken.", r.Text)
	}
}

func TestContextualWordReplacementTFIDF(t *testing.T) {
	filler := &fakeMaskFiller{}
	a, err := NewContextualWordReplacement(filler, WithNumAug(20), WithTFIDF(true))
	require.NoError(t, err)
	_, err = a.Augment(context.Background(), []string{"a a b", "b b c"})
	require.NoError(t, err)
	require.Len(t, filler.masked, 40)
	for _, masked := range filler.masked {
		assert.Len(t, strings.Fields(masked), 3)
		assert.Equal(t, 1, strings.Count(masked, "[MASK]"))
	}
}

func TestModelAugmentersRequireCollaborators(t *testing.T) {
	_, err := NewAbstractiveSummarization(nil)
	assert.True(t, errors.Is(err, ErrInvalidOption))
	_, err = NewParaphrase(nil)
	assert.True(t, errors.Is(err, ErrInvalidOption))
	_, err = NewContextualWordReplacement(nil)
	assert.True(t, errors.Is(err, ErrInvalidOption))
	_, err = NewBackTranslation(nil, WithLanguages("en", "de"))
	assert.True(t, errors.Is(err, ErrInvalidOption))
}
