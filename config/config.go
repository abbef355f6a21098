// Package config reads the YAML configuration of an augmentation run: the augmenters to apply,
// the inference backend used by the model backed ones and the logging setup.
//
// Example:
//
//	logging:
//	  level: info
//	  file: ~/.cache/textaug/textaug.log
//	inference:
//	  provider: hfapi
//	augmenters:
//	  - name: KeyboardNoise
//	    alpha: 0.05
//	    n_aug: 2
//	    seed: 42
//	    layout: variants_only
//	  - name: BackTranslation
//	    base_language: en
//	    interim_language: fr
//
// Secrets and endpoints left empty in the file are read from the environment: ${HF_TOKEN},
// ${HF_INFERENCE_ENDPOINT} and ${GEMINI_API_KEY}.
package config

import (
	"os"
	"slices"

	"github.com/gomlx/go-textaug/augment"
	"github.com/gomlx/go-textaug/hub"
	"github.com/gomlx/go-textaug/internal/files"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Inference providers.
const (
	ProviderHFAPI  = "hfapi"
	ProviderGemini = "gemini"
)

// Config of an augmentation run.
type Config struct {
	Logging    Logging     `yaml:"logging"`
	Inference  Inference   `yaml:"inference"`
	Augmenters []Augmenter `yaml:"augmenters"`

	// Originals prepends the input texts to the output, see augment.Pipeline.WithOriginals.
	Originals bool `yaml:"originals"`

	// MaxParallel limits how many augmenters run at the same time, 0 for no limit.
	MaxParallel int `yaml:"max_parallel"`
}

// Logging configuration.
type Logging struct {
	// Level is one of debug, info, warn or error.
	Level string `yaml:"level"`

	// File, if set, receives a copy of the logs, rotated when it reaches MaxSizeMB.
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Inference backend configuration.
type Inference struct {
	// Provider is ProviderHFAPI (default) or ProviderGemini.
	Provider string `yaml:"provider"`

	// Endpoint of the HuggingFace Inference API.
	Endpoint string `yaml:"endpoint"`

	// Token for HuggingFace.
	Token string `yaml:"token"`

	// APIKey for Gemini.
	APIKey string `yaml:"api_key"`

	// Model is the Gemini model.
	Model string `yaml:"model"`

	// MaxInFlight limits simultaneous HuggingFace requests.
	MaxInFlight int `yaml:"max_in_flight"`
}

// Augmenter configuration. Zero values select the augmenter's defaults.
type Augmenter struct {
	Name         string   `yaml:"name"`
	Alpha        *float64 `yaml:"alpha"`
	NumAug       int      `yaml:"n_aug"`
	Seed         *uint64  `yaml:"seed"`
	Operations   []string `yaml:"operations"`
	Layout       string   `yaml:"layout"`
	TFIDF        bool     `yaml:"tfidf"`
	ShowProgress bool     `yaml:"show_progress"`

	// Model is the HuggingFace model id used by Paraphrase, AbstractiveSummarization and
	// ContextualWordReplacement, or the translation model pattern of BackTranslation.
	Model string `yaml:"model"`

	// Truncate Paraphrase inputs to the model's maximum length, using its tokenizer from the Hub.
	Truncate bool `yaml:"truncate"`

	BaseLanguage    string `yaml:"base_language"`
	InterimLanguage string `yaml:"interim_language"`

	// Thesaurus file, see lexicon.ReadThesaurus.
	Thesaurus string `yaml:"thesaurus"`

	// Vectors file in GloVe/word2vec text format, or, if VectorsRepo is set, the name of the file
	// in that HuggingFace repository, given as "[datasets/]owner/name[@revision]".
	Vectors     string `yaml:"vectors"`
	VectorsRepo string `yaml:"vectors_repo"`
}

// Default returns the configuration used for the fields not given in a file.
func Default() *Config {
	return &Config{
		Logging:   Logging{Level: "info", MaxSizeMB: 100, MaxBackups: 3},
		Inference: Inference{Provider: ProviderHFAPI, MaxInFlight: 4},
	}
}

// Load reads the configuration from a YAML file, and fills secrets from the environment.
// A leading "~" in filePath is expanded to the user's home directory.
func Load(filePath string) (*Config, error) {
	filePath, err := files.ExpandHome(filePath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read configuration %q", filePath)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.WithMessagef(err, "configuration %q", filePath)
	}
	return cfg, nil
}

// Parse the YAML configuration in data over Default, and fills secrets from the environment.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse configuration")
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv fills the values not given in the configuration from the environment.
func (c *Config) applyEnv() {
	if c.Inference.Token == "" {
		c.Inference.Token = hub.GetEnvOr("HF_TOKEN", "")
	}
	if c.Inference.Endpoint == "" {
		c.Inference.Endpoint = hub.GetEnvOr("HF_INFERENCE_ENDPOINT", "")
	}
	if c.Inference.APIKey == "" {
		c.Inference.APIKey = hub.GetEnvOr("GEMINI_API_KEY", "")
	}
}

// Validate checks the values that can be checked without creating the augmenters.
func (c *Config) Validate() error {
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.Logging.Level) {
		return errors.Wrapf(augment.ErrInvalidOption, "invalid logging level %q", c.Logging.Level)
	}
	if c.Inference.Provider != ProviderHFAPI && c.Inference.Provider != ProviderGemini {
		return errors.Wrapf(augment.ErrInvalidOption, "invalid inference provider %q, valid providers are %s and %s",
			c.Inference.Provider, ProviderHFAPI, ProviderGemini)
	}
	if len(c.Augmenters) == 0 {
		return errors.Wrap(augment.ErrInvalidOption, "no augmenters configured")
	}
	names := augment.Names()
	for ii, a := range c.Augmenters {
		if !slices.Contains(names, a.Name) {
			return errors.Wrapf(augment.ErrUnknownAugmenter, "augmenter #%d %q, registered augmenters are %v", ii, a.Name, names)
		}
		if _, err := augment.ParseLayout(a.Layout); err != nil {
			return errors.WithMessagef(err, "augmenter #%d (%s)", ii, a.Name)
		}
	}
	return nil
}

// Options converts the augmenter configuration to augment options.
func (a *Augmenter) Options() ([]augment.Option, error) {
	var opts []augment.Option
	if a.Alpha != nil {
		opts = append(opts, augment.WithAlpha(*a.Alpha))
	}
	if a.NumAug != 0 {
		opts = append(opts, augment.WithNumAug(a.NumAug))
	}
	if a.Seed != nil {
		opts = append(opts, augment.WithSeed(*a.Seed))
	}
	if len(a.Operations) > 0 {
		opts = append(opts, augment.WithOperations(a.Operations...))
	}
	layout, err := augment.ParseLayout(a.Layout)
	if err != nil {
		return nil, err
	}
	opts = append(opts, augment.WithLayout(layout), augment.WithTFIDF(a.TFIDF), augment.WithProgress(a.ShowProgress))
	if a.BaseLanguage != "" || a.InterimLanguage != "" {
		opts = append(opts, augment.WithLanguages(a.BaseLanguage, a.InterimLanguage))
	}
	return opts, nil
}
