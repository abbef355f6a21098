package api

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

type TokensDecoder struct {
	Content    string `json:"content"`
	Lstrip     bool   `json:"lstrip"`
	Normalized bool   `json:"normalized"`
	Rstrip     bool   `json:"rstrip"`
	SingleWord bool   `json:"single_word"`
	Special    bool   `json:"special"`
}

// TokenString is a special token in tokenizer_config.json. It is either written as a plain string
// ("<mask>") or as an added token object ({"content": "<mask>", "lstrip": true, ...}).
type TokenString string

// UnmarshalJSON implements json.Unmarshaler, accepting both forms.
func (t *TokenString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = TokenString(s)
		return nil
	}
	var decoder TokensDecoder
	if err := json.Unmarshal(data, &decoder); err != nil {
		return errors.Wrapf(err, "special token must be a string or an object with \"content\"")
	}
	*t = TokenString(decoder.Content)
	return nil
}

// Config struct to hold HuggingFace's tokenizer_config.json contents.
// There is no formal schema for this file, but these are some common fields that may be of use.
// Specific tokenizer classes are free to implement additional features as they see fit.
//
// The extra field ConfigFile holds the path to the file with the full config.
type Config struct {
	ConfigFile     string
	TokenizerClass string `json:"tokenizer_class"`

	ChatTemplate           string `json:"chat_template"`
	UseDefaultSystemPrompt bool   `json:"use_default_system_prompt"`

	ModelMaxLength float64        `json:"model_max_length"`
	MaxLength      float64        `json:"max_length"`
	SpModelKwargs  map[string]any `json:"sp_model_kwargs"`

	ClsToken  TokenString `json:"cls_token"`
	UnkToken  TokenString `json:"unk_token"`
	SepToken  TokenString `json:"sep_token"`
	MaskToken TokenString `json:"mask_token"`
	BosToken  TokenString `json:"bos_token"`
	EosToken  TokenString `json:"eos_token"`
	PadToken  TokenString `json:"pad_token"`

	AddBosToken             bool                  `json:"add_bos_token"`
	AddEosToken             bool                  `json:"add_eos_token"`
	AddedTokensDecoder      map[int]TokensDecoder `json:"added_tokens_decoder"`
	AdditionalSpecialTokens []string              `json:"additional_special_tokens"`

	DoLowerCase                bool `json:"do_lower_case"`
	CleanUpTokenizationSpaces  bool `json:"clean_up_tokenization_spaces"`
	SpacesBetweenSpecialTokens bool `json:"spaces_between_special_tokens"`

	TokenizeChineseChars bool   `json:"tokenize_chinese_chars"`
	StripAccents         any    `json:"strip_accents"`
	NameOrPath           string `json:"name_or_path"`
	DoBasicTokenize      bool   `json:"do_basic_tokenize"`
	NeverSplit           any    `json:"never_split"`

	Stride             int    `json:"stride"`
	TruncationSide     string `json:"truncation_side"`
	TruncationStrategy string `json:"truncation_strategy"`
}

// maxSaneLength is above any real model's input length: HuggingFace writes a huge sentinel
// (int(1e30)) in model_max_length when the length is unknown.
const maxSaneLength = 1_000_000

// MaxInputTokens returns the maximum number of tokens the model accepts, or 0 if unknown.
func (c *Config) MaxInputTokens() int {
	for _, length := range []float64{c.ModelMaxLength, c.MaxLength} {
		if length > 0 && length < maxSaneLength {
			return int(length)
		}
	}
	return 0
}

// MaskTokenOr returns the configured mask token, or defaultToken if the config has none.
func (c *Config) MaskTokenOr(defaultToken string) string {
	if c.MaskToken == "" {
		return defaultToken
	}
	return string(c.MaskToken)
}

// ParseConfigFile parses the given file (holding a tokenizer_config.json file) into a Config structure.
func ParseConfigFile(filePath string) (*Config, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read file %q", filePath)
	}
	config, err := ParseConfigContent(content)
	if err != nil {
		return nil, errors.WithMessagef(err, "read from file %q", filePath)
	}
	config.ConfigFile = filePath
	return config, nil
}

// ParseConfigContent parses the given json content (of a tokenizer_config.json file) into a Config structure.
func ParseConfigContent(jsonContent []byte) (*Config, error) {
	config := &Config{}
	err := json.Unmarshal(jsonContent, config)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse tokenizer_config json content")
	}
	return config, nil
}
