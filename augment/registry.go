package augment

import (
	"slices"
	"sync"

	"github.com/gomlx/go-textaug/inference"
	"github.com/gomlx/go-textaug/lexicon"
	"github.com/gomlx/go-textaug/tokenizers"
	"github.com/pkg/errors"
)

// Dependencies are the collaborators the augmenters may need. Constructors check that the ones
// they need are set.
type Dependencies struct {
	Thesaurus   lexicon.Thesaurus
	Vectors     NearestWords
	Translator  inference.Translator
	Summarizer  inference.Summarizer
	Paraphraser inference.Paraphraser
	MaskFiller  inference.MaskFiller

	// Tokenizer and MaxTokens, if set, truncate the sentences given to the Paraphraser.
	Tokenizer tokenizers.Tokenizer
	MaxTokens int
}

// Constructor creates an Augmenter from its dependencies and options.
type Constructor func(deps Dependencies, opts ...Option) (Augmenter, error)

var (
	registryMu   sync.RWMutex
	constructors = make(map[string]Constructor)
)

// Register a constructor for the augmenter name, so it can be created with New. It overwrites any
// previously registered constructor for name.
func Register(name string, constructor Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	constructors[name] = constructor
}

// Names returns the sorted names of the registered augmenters.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// New creates the augmenter registered under name. It returns an error wrapping
// ErrUnknownAugmenter if there is none.
func New(name string, deps Dependencies, opts ...Option) (Augmenter, error) {
	registryMu.RLock()
	constructor, found := constructors[name]
	registryMu.RUnlock()
	if !found {
		return nil, errors.Wrapf(ErrUnknownAugmenter, "%q, registered augmenters are %v", name, Names())
	}
	return constructor(deps, opts...)
}

// wrap returns a nil Augmenter on errors, instead of an interface holding a nil pointer.
func wrap(a Augmenter, err error) (Augmenter, error) {
	if err != nil {
		return nil, err
	}
	return a, nil
}

func init() {
	Register("CharacterNoise", func(_ Dependencies, opts ...Option) (Augmenter, error) {
		return wrap(NewCharacterNoise(opts...))
	})
	Register("KeyboardNoise", func(_ Dependencies, opts ...Option) (Augmenter, error) {
		return wrap(NewKeyboardNoise(opts...))
	})
	Register("OCRNoise", func(_ Dependencies, opts ...Option) (Augmenter, error) {
		return wrap(NewOCRNoise(opts...))
	})
	Register("OCRAugmentation", func(_ Dependencies, opts ...Option) (Augmenter, error) {
		return wrap(NewOCRAugmentation(opts...))
	})
	Register("WordSplit", func(_ Dependencies, opts ...Option) (Augmenter, error) {
		return wrap(NewWordSplit(opts...))
	})
	Register("EasyDataAugmentation", func(deps Dependencies, opts ...Option) (Augmenter, error) {
		return wrap(NewEasyDataAugmentation(deps.Thesaurus, opts...))
	})
	Register("SynonymReplacement", func(deps Dependencies, opts ...Option) (Augmenter, error) {
		return wrap(NewSynonymReplacement(deps.Thesaurus, opts...))
	})
	Register("SimilarWordReplacement", func(deps Dependencies, opts ...Option) (Augmenter, error) {
		return wrap(NewSimilarWordReplacement(deps.Vectors, opts...))
	})
	Register("BackTranslation", func(deps Dependencies, opts ...Option) (Augmenter, error) {
		return wrap(NewBackTranslation(deps.Translator, opts...))
	})
	Register("AbstractiveSummarization", func(deps Dependencies, opts ...Option) (Augmenter, error) {
		return wrap(NewAbstractiveSummarization(deps.Summarizer, opts...))
	})
	Register("Paraphrase", func(deps Dependencies, opts ...Option) (Augmenter, error) {
		p, err := NewParaphrase(deps.Paraphraser, opts...)
		if err != nil {
			return nil, err
		}
		if deps.Tokenizer != nil {
			p.WithTruncation(deps.Tokenizer, deps.MaxTokens)
		}
		return p, nil
	})
	Register("ContextualWordReplacement", func(deps Dependencies, opts ...Option) (Augmenter, error) {
		return wrap(NewContextualWordReplacement(deps.MaskFiller, opts...))
	})
}
