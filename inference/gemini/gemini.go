// Package gemini implements the generative inference interfaces (summarization, translation and
// paraphrasing) by prompting a Google Gemini model.
//
// Fill-mask is not offered: a generative model has no calibrated scores for masked candidates,
// use hfapi for contextual word replacement.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/gomlx/go-textaug/hub"
	"github.com/gomlx/go-textaug/inference"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// DefaultModel used if none is given.
const DefaultModel = "gemini-2.5-flash"

// generator returns up to n candidate completions for the prompt. It is the seam between the
// prompting logic and the genai client.
type generator interface {
	generate(ctx context.Context, prompt string, n int, temperature float32) ([]string, error)
}

// Client prompts a Gemini model. Create it with New, it is safe for concurrent use.
type Client struct {
	gen    generator
	model  string
	logger *zap.Logger

	// Temperature used for paraphrasing. Summaries and translations use 0.
	Temperature float32
}

// New creates a Client for the given model (DefaultModel if empty), authenticated with apiKey.
// If apiKey is empty, ${GEMINI_API_KEY} is used.
func New(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		apiKey = hub.GetEnvOr("GEMINI_API_KEY", "")
	}
	if apiKey == "" {
		return nil, errors.New("Gemini API key is required, set it in the configuration or in ${GEMINI_API_KEY}")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create GenAI client")
	}
	return newClient(&genaiGenerator{client: client, model: model}, model), nil
}

func newClient(gen generator, model string) *Client {
	return &Client{gen: gen, model: model, logger: zap.NewNop(), Temperature: 1.0}
}

// WithLogger sets the logger used to report generation failures at debug level.
func (c *Client) WithLogger(logger *zap.Logger) *Client {
	c.logger = logger
	return c
}

var (
	_ inference.Summarizer  = (*Client)(nil)
	_ inference.Translator  = (*Client)(nil)
	_ inference.Paraphraser = (*Client)(nil)
)

// Summarize implements inference.Summarizer.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	prompt := "Write a short abstractive summary of the following text. " +
		"Answer only with the summary.\n\n" + text
	return c.single(ctx, text, prompt)
}

// Translate implements inference.Translator.
func (c *Client) Translate(ctx context.Context, text, source, target string) (string, error) {
	prompt := fmt.Sprintf("Translate the following text from the language with ISO 639-1 code %q "+
		"to the language with code %q. Answer only with the translation.\n\n%s", source, target, text)
	return c.single(ctx, text, prompt)
}

// Paraphrase implements inference.Paraphraser.
func (c *Client) Paraphrase(ctx context.Context, sentence string, n int) ([]string, error) {
	if strings.TrimSpace(sentence) == "" {
		return nil, inference.GenerationErrorf("empty input")
	}
	prompt := "Paraphrase the following sentence. Answer only with the paraphrase.\n\n" + sentence
	texts, err := c.gen.generate(ctx, prompt, n, c.Temperature)
	if err != nil {
		return nil, err
	}
	paraphrases := make([]string, 0, len(texts))
	for _, text := range texts {
		if text = strings.TrimSpace(text); text != "" {
			paraphrases = append(paraphrases, text)
		}
	}
	if len(paraphrases) == 0 {
		return nil, inference.GenerationErrorf("model %q returned no paraphrase", c.model)
	}
	return paraphrases, nil
}

func (c *Client) single(ctx context.Context, input, prompt string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", inference.GenerationErrorf("empty input")
	}
	texts, err := c.gen.generate(ctx, prompt, 1, 0)
	if err != nil {
		return "", err
	}
	if len(texts) == 0 || strings.TrimSpace(texts[0]) == "" {
		c.logger.Debug("empty generation", zap.String("model", c.model))
		return "", inference.GenerationErrorf("model %q returned empty text", c.model)
	}
	return strings.TrimSpace(texts[0]), nil
}

// genaiGenerator implements generator with the genai client.
type genaiGenerator struct {
	client *genai.Client
	model  string
}

func (g *genaiGenerator) generate(ctx context.Context, prompt string, n int, temperature float32) ([]string, error) {
	if n <= 0 {
		n = 1
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:    genai.Ptr(temperature),
		CandidateCount: int32(n),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to generate content with %q", g.model)
	}
	return candidateTexts(g.model, resp)
}

// candidateTexts extracts the text of each candidate. A blocked prompt, or candidates all stopped
// by safety filters, is reported as a generation failure of the input.
func candidateTexts(model string, resp *genai.GenerateContentResponse) ([]string, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return nil, inference.GenerationErrorf("model %q blocked prompt: %s", model, resp.PromptFeedback.BlockReason)
	}
	texts := make([]string, 0, len(resp.Candidates))
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil || candidate.FinishReason == genai.FinishReasonSafety {
			continue
		}
		var sb strings.Builder
		for _, part := range candidate.Content.Parts {
			if part != nil && !part.Thought {
				sb.WriteString(part.Text)
			}
		}
		texts = append(texts, sb.String())
	}
	if len(texts) == 0 {
		return nil, inference.GenerationErrorf("model %q returned no candidates", model)
	}
	return texts, nil
}
