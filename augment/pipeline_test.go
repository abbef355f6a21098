package augment

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipeline(t *testing.T) {
	ctx := context.Background()
	texts := []string{"The quick brown fox.", "Jumps over the lazy dog."}
	keyboard, err := NewKeyboardNoise(WithSeed(1), WithAlpha(0.2), WithNumAug(2), WithLayout(VariantsOnly))
	require.NoError(t, err)
	split, err := NewWordSplit(WithSeed(2), WithAlpha(0.5), WithNumAug(3), WithLayout(VariantsOnly))
	require.NoError(t, err)

	p := NewPipeline(keyboard, split).WithOriginals(true)
	out, err := p.Augment(ctx, texts)
	require.NoError(t, err)
	require.Len(t, out, 2+2*2+2*3)
	assert.Equal(t, texts, out[:2])

	// Stage outputs are concatenated in order, identical to running them alone.
	wantKeyboard, err := keyboard.Augment(ctx, texts)
	require.NoError(t, err)
	wantSplit, err := split.Augment(ctx, texts)
	require.NoError(t, err)
	assert.Equal(t, wantKeyboard, out[2:6])
	assert.Equal(t, wantSplit, out[6:])

	// Limiting parallelism doesn't change the result.
	again, err := NewPipeline(keyboard, split).WithOriginals(true).WithMaxParallel(1).Augment(ctx, texts)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestPipelineErrors(t *testing.T) {
	_, err := NewPipeline().Augment(context.Background(), []string{"x"})
	assert.True(t, errors.Is(err, ErrInvalidOption))

	failing, err := NewBackTranslation(&fakeTranslator{}, WithLanguages("en", "es"))
	require.NoError(t, err)
	noisy, err := NewCharacterNoise()
	require.NoError(t, err)
	_, err = NewPipeline(noisy, failing).Augment(context.Background(), []string{"offline"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline stage #1 (BackTranslation)")
}
