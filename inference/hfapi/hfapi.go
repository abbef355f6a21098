// Package hfapi implements the inference interfaces with the HuggingFace Inference API.
//
// Each model is queried with an HTTP POST to "{endpoint}/models/{model id}", with a JSON body
// holding the inputs and task parameters. The response shape depends on the model's task
// (pipeline tag): "summary_text" for summarization, "translation_text" for translation,
// "generated_text" for text2text-generation and a list of candidates for fill-mask.
package hfapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gomlx/go-textaug/hub"
	"github.com/gomlx/go-textaug/inference"
	"github.com/gomlx/go-textaug/internal/xsync"
	"github.com/gomlx/go-textaug/tokenizers"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DefaultEndpoint of the HuggingFace Inference API, overridden by ${HF_INFERENCE_ENDPOINT}.
const DefaultEndpoint = "https://api-inference.huggingface.co"

// DefaultMaskToken is used when a model's tokenizer config can't be read.
const DefaultMaskToken = "<mask>"

// Client for the HuggingFace Inference API. Create it with New. It is safe for concurrent use.
type Client struct {
	endpoint   string
	authToken  string
	userAgent  string
	httpClient *http.Client
	inFlight   *xsync.Semaphore
	logger     *zap.Logger
}

// New creates a Client using ${HF_INFERENCE_ENDPOINT} (or DefaultEndpoint) and the token in ${HF_TOKEN}.
// At most 4 requests are in flight at the same time, see WithMaxInFlight.
func New() *Client {
	return &Client{
		endpoint:   strings.TrimSuffix(hub.GetEnvOr("HF_INFERENCE_ENDPOINT", DefaultEndpoint), "/"),
		authToken:  hub.GetEnvOr("HF_TOKEN", ""),
		userAgent:  hub.DefaultHttpUserAgent(),
		httpClient: &http.Client{Timeout: 120 * time.Second},
		inFlight:   xsync.NewSemaphore(4),
		logger:     zap.NewNop(),
	}
}

// WithEndpoint sets the Inference API endpoint.
func (c *Client) WithEndpoint(endpoint string) *Client {
	c.endpoint = strings.TrimSuffix(endpoint, "/")
	return c
}

// WithAuth sets the authentication token. Setting it to empty ("") disables authentication.
func (c *Client) WithAuth(authToken string) *Client {
	c.authToken = authToken
	return c
}

// WithHTTPClient sets the http.Client used for requests.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	c.httpClient = httpClient
	return c
}

// WithMaxInFlight limits the number of simultaneous requests. If <= 0 there is no limit.
func (c *Client) WithMaxInFlight(n int) *Client {
	c.inFlight.Resize(n)
	return c
}

// WithLogger sets the logger used to report requests at debug level.
func (c *Client) WithLogger(logger *zap.Logger) *Client {
	c.logger = logger
	return c
}

type request struct {
	Inputs     string         `json:"inputs"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Options    map[string]any `json:"options,omitempty"`
}

type apiError struct {
	Error string `json:"error"`
}

// post sends inputs to the model and decodes the JSON response into out.
//
// A 400 or 422 status means the model rejected this specific input, and is reported as an
// inference.ErrGeneration failure. Other non-200 statuses are returned as plain errors.
func (c *Client) post(ctx context.Context, model string, req request, out any) error {
	if req.Options == nil {
		req.Options = map[string]any{"wait_for_model": true}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return errors.Wrap(err, "failed to marshal request")
	}
	url := fmt.Sprintf("%s/models/%s", c.endpoint, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	if c.authToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	if err := c.inFlight.AcquireContext(ctx); err != nil {
		return err
	}
	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	c.inFlight.Release()
	if err != nil {
		return errors.Wrapf(err, "request to %q failed", url)
	}
	defer func() { _ = resp.Body.Close() }()
	contents, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "failed reading response (%d) from %q", resp.StatusCode, url)
	}
	c.logger.Debug("inference request",
		zap.String("model", model), zap.Int("status", resp.StatusCode), zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		msg := string(contents)
		var apiErr apiError
		if json.Unmarshal(contents, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity {
			return inference.GenerationErrorf("model %q rejected input: %s", model, msg)
		}
		return errors.Errorf("model %q returned status %d: %s", model, resp.StatusCode, msg)
	}
	if err := json.Unmarshal(contents, out); err != nil {
		return errors.Wrapf(err, "failed to decode response from %q", url)
	}
	return nil
}

// Summarizer returns an inference.Summarizer backed by the given summarization model,
// e.g. "sshleifer/distilbart-cnn-12-6".
func (c *Client) Summarizer(model string) *Summarizer {
	return &Summarizer{client: c, model: model}
}

// Summarizer implements inference.Summarizer.
type Summarizer struct {
	client *Client
	model  string
}

var _ inference.Summarizer = (*Summarizer)(nil)

// Summarize implements inference.Summarizer.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", inference.GenerationErrorf("empty input")
	}
	var resp []struct {
		SummaryText string `json:"summary_text"`
	}
	if err := s.client.post(ctx, s.model, request{Inputs: text}, &resp); err != nil {
		return "", err
	}
	if len(resp) == 0 || strings.TrimSpace(resp[0].SummaryText) == "" {
		return "", inference.GenerationErrorf("model %q returned no summary", s.model)
	}
	return resp[0].SummaryText, nil
}

// DefaultTranslationModel is the pattern of the model ids used for a pair of languages,
// filled with the source and target language codes.
const DefaultTranslationModel = "Helsinki-NLP/opus-mt-%s-%s"

// Translator returns an inference.Translator. Each pair of languages is served by the model
// given by modelPattern (formatted with source and target codes), or by DefaultTranslationModel
// if modelPattern is empty.
func (c *Client) Translator(modelPattern string) *Translator {
	if modelPattern == "" {
		modelPattern = DefaultTranslationModel
	}
	return &Translator{client: c, modelPattern: modelPattern}
}

// Translator implements inference.Translator.
type Translator struct {
	client       *Client
	modelPattern string
}

var _ inference.Translator = (*Translator)(nil)

// Translate implements inference.Translator.
func (t *Translator) Translate(ctx context.Context, text, source, target string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", inference.GenerationErrorf("empty input")
	}
	model := fmt.Sprintf(t.modelPattern, source, target)
	var resp []struct {
		TranslationText string `json:"translation_text"`
	}
	if err := t.client.post(ctx, model, request{Inputs: text}, &resp); err != nil {
		return "", err
	}
	if len(resp) == 0 || strings.TrimSpace(resp[0].TranslationText) == "" {
		return "", inference.GenerationErrorf("model %q returned no translation", model)
	}
	return resp[0].TranslationText, nil
}

// Paraphraser returns an inference.Paraphraser backed by a T5 style text2text-generation model,
// e.g. "Vamsi/T5_Paraphrase_Paws". Sentences are prefixed with "paraphrase: ".
func (c *Client) Paraphraser(model string) *Paraphraser {
	return &Paraphraser{client: c, model: model, Prefix: "paraphrase: "}
}

// Paraphraser implements inference.Paraphraser with sampled generation (top-k 120, top-p 0.95).
type Paraphraser struct {
	client *Client
	model  string

	// Prefix prepended to every sentence, the task prefix of T5 models.
	Prefix string
}

var _ inference.Paraphraser = (*Paraphraser)(nil)

// Paraphrase implements inference.Paraphraser.
func (p *Paraphraser) Paraphrase(ctx context.Context, sentence string, n int) ([]string, error) {
	if strings.TrimSpace(sentence) == "" {
		return nil, inference.GenerationErrorf("empty input")
	}
	req := request{
		Inputs: p.Prefix + sentence,
		Parameters: map[string]any{
			"do_sample":            true,
			"top_k":                120,
			"top_p":                0.95,
			"num_return_sequences": n,
		},
	}
	var resp []struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := p.client.post(ctx, p.model, req, &resp); err != nil {
		return nil, err
	}
	paraphrases := make([]string, 0, len(resp))
	for _, r := range resp {
		if text := strings.TrimSpace(r.GeneratedText); text != "" {
			paraphrases = append(paraphrases, text)
		}
	}
	if len(paraphrases) == 0 {
		return nil, inference.GenerationErrorf("model %q returned no paraphrase", p.model)
	}
	return paraphrases, nil
}

// MaskFiller returns an inference.MaskFiller backed by a fill-mask model, e.g. "distilroberta-base".
//
// The mask token is read from the model's "tokenizer_config.json" in repo on first use; if repo is
// nil or the config can't be read, DefaultMaskToken is used.
func (c *Client) MaskFiller(model string, repo *hub.Repo) *MaskFiller {
	return &MaskFiller{client: c, model: model, repo: repo}
}

// MaskFiller implements inference.MaskFiller.
type MaskFiller struct {
	client *Client
	model  string
	repo   *hub.Repo

	maskOnce  sync.Once
	maskToken string
}

var _ inference.MaskFiller = (*MaskFiller)(nil)

// MaskToken implements inference.MaskFiller.
func (m *MaskFiller) MaskToken() string {
	m.maskOnce.Do(func() {
		m.maskToken = DefaultMaskToken
		if m.repo == nil {
			return
		}
		config, err := tokenizers.GetConfig(m.repo)
		if err != nil {
			m.client.logger.Warn("failed to read tokenizer config, using default mask token",
				zap.String("model", m.model), zap.String("mask_token", DefaultMaskToken), zap.Error(err))
			return
		}
		m.maskToken = config.MaskTokenOr(DefaultMaskToken)
	})
	return m.maskToken
}

// FillMask implements inference.MaskFiller.
func (m *MaskFiller) FillMask(ctx context.Context, masked string) ([]inference.Candidate, error) {
	if !strings.Contains(masked, m.MaskToken()) {
		return nil, inference.GenerationErrorf("input has no mask token %q", m.MaskToken())
	}
	var resp []struct {
		Sequence string  `json:"sequence"`
		TokenStr string  `json:"token_str"`
		Score    float64 `json:"score"`
	}
	if err := m.client.post(ctx, m.model, request{Inputs: masked}, &resp); err != nil {
		return nil, err
	}
	if len(resp) == 0 {
		return nil, inference.GenerationErrorf("model %q returned no candidates", m.model)
	}
	candidates := make([]inference.Candidate, len(resp))
	for ii, r := range resp {
		candidates[ii] = inference.Candidate{Sequence: r.Sequence, Token: strings.TrimSpace(r.TokenStr), Score: r.Score}
	}
	return candidates, nil
}
