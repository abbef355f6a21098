package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigContent(t *testing.T) {
	// Trimmed down tokenizer_config.json of FacebookAI/roberta-base.
	content := `{
		"tokenizer_class": "RobertaTokenizer",
		"model_max_length": 512,
		"mask_token": {"content": "<mask>", "lstrip": true, "normalized": false, "rstrip": false, "single_word": false},
		"pad_token": "<pad>",
		"unk_token": null
	}`
	config, err := ParseConfigContent([]byte(content))
	require.NoError(t, err)
	assert.Equal(t, "RobertaTokenizer", config.TokenizerClass)
	assert.Equal(t, TokenString("<mask>"), config.MaskToken)
	assert.Equal(t, TokenString("<pad>"), config.PadToken)
	assert.Equal(t, TokenString(""), config.UnkToken)
	assert.Equal(t, 512, config.MaxInputTokens())
	assert.Equal(t, "<mask>", config.MaskTokenOr("[MASK]"))
}

func TestConfigDefaults(t *testing.T) {
	config, err := ParseConfigContent([]byte(`{"model_max_length": 1000000000000000019884624838656}`))
	require.NoError(t, err)
	assert.Equal(t, 0, config.MaxInputTokens())
	assert.Equal(t, "[MASK]", config.MaskTokenOr("[MASK]"))

	_, err = ParseConfigContent([]byte(`{"mask_token": 3}`))
	assert.Error(t, err)
}
