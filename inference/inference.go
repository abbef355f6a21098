// Package inference defines the models the model-backed augmenters delegate to: summarization,
// translation, paraphrasing and masked-word filling.
//
// Implementations live in sub-packages: hfapi (HuggingFace Inference API) and gemini (Google Gemini).
// Tests and users can provide their own, e.g. wrapping a locally served model.
//
// Implementations report per-input generation failures (degenerate or empty output, input the
// model cannot process) with errors wrapping ErrGeneration. The augmenters recover from those by
// falling back to the original text; any other error (network, authentication, cancellation)
// aborts the augmentation.
package inference

import (
	"context"

	"github.com/pkg/errors"
)

// ErrGeneration is wrapped by errors caused by one specific input that the model failed to
// generate from.
var ErrGeneration = errors.New("generation failed")

// GenerationErrorf returns an error wrapping ErrGeneration with the formatted message.
func GenerationErrorf(format string, args ...any) error {
	return errors.Wrapf(ErrGeneration, format, args...)
}

// IsGenerationFailure reports whether err is (or wraps) ErrGeneration.
func IsGenerationFailure(err error) bool {
	return errors.Is(err, ErrGeneration)
}

// Summarizer creates an abstractive summary of a text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Translator translates a text between two languages, given as ISO 639-1 codes (e.g. "en", "es").
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Paraphraser rephrases a sentence, returning up to n alternatives.
type Paraphraser interface {
	Paraphrase(ctx context.Context, sentence string, n int) ([]string, error)
}

// Candidate filling of a masked sentence.
type Candidate struct {
	// Sequence is the full sentence with the mask replaced.
	Sequence string

	// Token is the word that replaced the mask.
	Token string

	// Score is the model's probability for the candidate.
	Score float64
}

// MaskFiller proposes replacements for the mask token in a sentence.
type MaskFiller interface {
	// FillMask returns candidates for a sentence with exactly one occurrence of MaskToken().
	FillMask(ctx context.Context, masked string) ([]Candidate, error)

	// MaskToken used by the model, e.g. "<mask>" or "[MASK]".
	MaskToken() string
}
