package config

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gomlx/go-textaug/augment"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleConfig = `
logging:
  level: debug
inference:
  provider: hfapi
  endpoint: http://localhost:8080
originals: true
max_parallel: 2
augmenters:
  - name: KeyboardNoise
    alpha: 0.05
    n_aug: 2
    seed: 42
    layout: variants_only
  - name: CharacterNoise
    operations: [swap, deletion]
  - name: BackTranslation
    base_language: en
    interim_language: fr
`

func TestParse(t *testing.T) {
	t.Setenv("HF_TOKEN", "hf_secret")
	t.Setenv("HF_INFERENCE_ENDPOINT", "http://ignored")
	cfg, err := Parse([]byte(exampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 100, cfg.Logging.MaxSizeMB, "defaults are kept for fields not in the file")
	assert.Equal(t, "hf_secret", cfg.Inference.Token)
	assert.Equal(t, "http://localhost:8080", cfg.Inference.Endpoint, "file values take precedence over the environment")
	assert.Equal(t, 4, cfg.Inference.MaxInFlight)
	assert.True(t, cfg.Originals)
	assert.Equal(t, 2, cfg.MaxParallel)

	require.Len(t, cfg.Augmenters, 3)
	keyboard := cfg.Augmenters[0]
	require.NotNil(t, keyboard.Alpha)
	assert.Equal(t, 0.05, *keyboard.Alpha)
	assert.Equal(t, 2, keyboard.NumAug)
	require.NotNil(t, keyboard.Seed)
	assert.Equal(t, uint64(42), *keyboard.Seed)
	assert.Equal(t, []string{"swap", "deletion"}, cfg.Augmenters[1].Operations)
	assert.Nil(t, cfg.Augmenters[1].Alpha)
}

func TestLoad(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "textaug.yaml")
	require.NoError(t, os.WriteFile(filePath, []byte(exampleConfig), 0644))
	cfg, err := Load(filePath)
	require.NoError(t, err)
	assert.Len(t, cfg.Augmenters, 3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		yaml   string
		target error
	}{
		{"no augmenters", "logging: {level: info}", augment.ErrInvalidOption},
		{"bad level", "logging: {level: loud}\naugmenters: [{name: WordSplit}]", augment.ErrInvalidOption},
		{"bad provider", "inference: {provider: openai}\naugmenters: [{name: WordSplit}]", augment.ErrInvalidOption},
		{"unknown augmenter", "augmenters: [{name: Shouting}]", augment.ErrUnknownAugmenter},
		{"bad layout", "augmenters: [{name: WordSplit, layout: sideways}]", augment.ErrInvalidOption},
	}
	for _, tc := range testCases {
		_, err := Parse([]byte(tc.yaml))
		fmt.Printf("\t%s: %v\n", tc.name, err)
		require.Error(t, err, tc.name)
		assert.True(t, errors.Is(err, tc.target), "%s: got %v", tc.name, err)
	}

	_, err := Parse([]byte("augmenters: [[not a map]]"))
	require.Error(t, err)
}

func TestBuild(t *testing.T) {
	var requested []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		requested = append(requested, req.URL.Path)
		http.Error(w, `{"error": "overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg, err := Parse([]byte(exampleConfig))
	require.NoError(t, err)
	cfg.Inference.Endpoint = server.URL
	cfg.MaxParallel = 1
	pipeline, err := cfg.Build(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Pipeline", pipeline.Name())
	assert.Empty(t, requested, "building doesn't call the inference endpoint")

	_, err = pipeline.Augment(context.Background(), []string{"hello"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overloaded")
	assert.Equal(t, []string{"/models/Helsinki-NLP/opus-mt-en-fr"}, requested)

	// Option errors are reported by Build, with the augmenter position.
	cfg.Augmenters[1].Operations = []string{"rotate"}
	_, err = cfg.Build(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, augment.ErrUnknownOperation))
	assert.Contains(t, err.Error(), "augmenter #1 (CharacterNoise)")

	// Missing collaborators are invalid options.
	cfg, err = Parse([]byte("augmenters: [{name: SynonymReplacement}]"))
	require.NoError(t, err)
	_, err = cfg.Build(context.Background(), nil)
	assert.True(t, errors.Is(err, augment.ErrInvalidOption))
}

func TestBuildThesaurus(t *testing.T) {
	thesaurusPath := filepath.Join(t.TempDir(), "thesaurus.txt")
	require.NoError(t, os.WriteFile(thesaurusPath, []byte("happy,glad,felicitous\nquick,fast,speedy\n"), 0644))
	cfg, err := Parse([]byte(fmt.Sprintf(`
augmenters:
  - name: SynonymReplacement
    alpha: 1
    seed: 3
    thesaurus: %q
  - name: EasyDataAugmentation
    thesaurus: %q
`, thesaurusPath, thesaurusPath)))
	require.NoError(t, err)
	pipeline, err := cfg.Build(context.Background(), nil)
	require.NoError(t, err)
	out, err := pipeline.Augment(context.Background(), []string{"happy"})
	require.NoError(t, err)
	// SynonymReplacement then EasyDataAugmentation, each with the original and 4 variants.
	require.Len(t, out, 5+5)
	assert.Equal(t, "happy", out[0])
	assert.Contains(t, []string{"glad", "felicitous"}, out[1])
}

func TestAugmenterOptions(t *testing.T) {
	alpha := 0.3
	seed := uint64(7)
	ac := &Augmenter{Name: "WordSplit", Alpha: &alpha, NumAug: 3, Seed: &seed, Layout: "interleaved"}
	opts, err := ac.Options()
	require.NoError(t, err)
	a, err := augment.NewWordSplit(opts...)
	require.NoError(t, err)
	got := a.Options()
	assert.Equal(t, 0.3, got.Alpha)
	assert.Equal(t, 3, got.NumAug)
	assert.Equal(t, augment.Interleaved, got.Layout)
	require.NotNil(t, got.Seed)
	assert.Equal(t, uint64(7), *got.Seed)

	ac.Layout = "diagonal"
	_, err = ac.Options()
	assert.True(t, errors.Is(err, augment.ErrInvalidOption))
}
