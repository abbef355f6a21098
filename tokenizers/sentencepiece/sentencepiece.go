// Package sentencepiece implements a tokenizers.Tokenizer based on SentencePiece tokenizer.
package sentencepiece

import (
	esentencepiece "github.com/eliben/go-sentencepiece"
	"github.com/gomlx/go-textaug/hub"
	"github.com/gomlx/go-textaug/tokenizers/api"
	"github.com/pkg/errors"
)

// ModelFileNames are the names under which repos store the SentencePiece model proto, in order of
// preference: "tokenizer.model" (Gemma, Llama), "spiece.model" (T5, Albert) and "source.spm" (Marian).
var ModelFileNames = []string{"tokenizer.model", "spiece.model", "source.spm"}

// New creates a SentencePiece tokenizer based on the first of ModelFileNames found in the repo.
//
// It implements a tokenizer.TokenizerConstructor function signature.
func New(config *api.Config, repo *hub.Repo) (api.Tokenizer, error) {
	for _, fileName := range ModelFileNames {
		if !repo.HasFile(fileName) {
			continue
		}
		tokenizerFile, err := repo.DownloadFile(fileName)
		if err != nil {
			return nil, errors.Wrapf(err, "can't download %q file", fileName)
		}
		return NewFromPath(tokenizerFile)
	}
	return nil, errors.Errorf("none of %q found in repo %q", ModelFileNames, repo)
}

// NewFromPath creates a SentencePiece tokenizer from a local model proto file.
func NewFromPath(filePath string) (*Tokenizer, error) {
	proc, err := esentencepiece.NewProcessorFromPath(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "can't create sentencepiece tokenizer from %q", filePath)
	}
	return &Tokenizer{Processor: proc}, nil
}

// Tokenizer implements tokenizers.Tokenizer with Google's SentencePiece, used by T5 and Marian
// translation models among others.
type Tokenizer struct {
	*esentencepiece.Processor
}

var _ api.Tokenizer = &Tokenizer{}

// Encode returns the token ids of text.
func (p *Tokenizer) Encode(text string) []int {
	tokens := p.Processor.Encode(text)
	ids := make([]int, len(tokens))
	for ii, t := range tokens {
		ids[ii] = t.ID
	}
	return ids
}

// Decode returns the text of the token ids.
func (p *Tokenizer) Decode(ids []int) string {
	return p.Processor.Decode(ids)
}
