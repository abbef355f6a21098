// Package tokenizers creates tokenizers from HuggingFace models.
//
// Given a HuggingFace repository (see hub.New), tokenizers will use its "tokenizer_config.json"
// to instantiate a Tokenizer. The model-backed augmenters use it to learn a model's mask token and
// to keep inputs within the model's maximum length.
package tokenizers

import (
	"github.com/gomlx/go-textaug/hub"
	"github.com/gomlx/go-textaug/tokenizers/api"
	"github.com/gomlx/go-textaug/tokenizers/sentencepiece"
	"github.com/pkg/errors"
)

// Tokenizer converts text to token ids and back, see api.Tokenizer.
type Tokenizer = api.Tokenizer

// New creates a new tokenizer from the given HuggingFace repo (see hub.New).
//
// Currently, it only supports "SentencePiece" encoders, and it attempts to download details from
// the repo file "tokenizer_config.json".
//
// If it fails to load those files, or create a tokenizer, it returns an error.
func New(repo *hub.Repo) (Tokenizer, error) {
	config, err := GetConfig(repo)
	if err != nil {
		return nil, err
	}

	constructor, found := registerOfClasses[config.TokenizerClass]
	if !found {
		return nil, errors.Errorf("unknown tokenizer class %q", config.TokenizerClass)
	}
	return constructor(config, repo)
}

// GetConfig returns the parsed "tokenizer_config.json" Config object for the repo.
func GetConfig(repo *hub.Repo) (*api.Config, error) {
	err := repo.DownloadInfo(false)
	if err != nil {
		return nil, err
	}
	localConfigFile, err := repo.DownloadFile("tokenizer_config.json")
	if err != nil {
		return nil, err
	}
	return api.ParseConfigFile(localConfigFile)
}

// Truncate text to at most maxTokens tokens, by encoding it and decoding back the first maxTokens.
// Text within the limit, or a maxTokens <= 0, returns text unchanged.
func Truncate(tokenizer Tokenizer, text string, maxTokens int) string {
	if maxTokens <= 0 {
		return text
	}
	ids := tokenizer.Encode(text)
	if len(ids) <= maxTokens {
		return text
	}
	return tokenizer.Decode(ids[:maxTokens])
}

// Config struct to hold HuggingFace's tokenizer_config.json contents.
type Config = api.Config

// TokenizerConstructor is used by Tokenizer implementations to provide implementations for different
// tokenizer classes.
type TokenizerConstructor func(config *api.Config, repo *hub.Repo) (api.Tokenizer, error)

// RegisterTokenizerClass used by Tokenizer implementations.
func RegisterTokenizerClass(name string, constructor TokenizerConstructor) {
	registerOfClasses[name] = constructor
}

var (
	registerOfClasses = make(map[string]TokenizerConstructor)
)

func init() {
	// SentencePiece based tokenizer classes, always included. T5 is what paraphrase models use.
	for _, className := range []string{
		"T5Tokenizer", "T5TokenizerFast", "GemmaTokenizer", "AlbertTokenizer", "XLNetTokenizer",
		"CamembertTokenizer", "MarianTokenizer"} {
		RegisterTokenizerClass(className, sentencepiece.New)
	}
}
