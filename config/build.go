package config

import (
	"context"

	"github.com/gomlx/go-textaug/augment"
	"github.com/gomlx/go-textaug/hub"
	"github.com/gomlx/go-textaug/inference"
	"github.com/gomlx/go-textaug/inference/gemini"
	"github.com/gomlx/go-textaug/inference/hfapi"
	"github.com/gomlx/go-textaug/lexicon"
	"github.com/gomlx/go-textaug/tokenizers"
	"github.com/gomlx/go-textaug/vectors"
	"github.com/gomlx/gomlx/ml/data/downloader"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Default HuggingFace models of the model backed augmenters.
const (
	DefaultSummarizationModel = "sshleifer/distilbart-cnn-12-6"
	DefaultParaphraseModel    = "Vamsi/T5_Paraphrase_Paws"
	DefaultFillMaskModel      = "distilroberta-base"
)

// maxParallelDownloads limits simultaneous Hub downloads across all repositories.
const maxParallelDownloads = 8

// builder creates the collaborators of the augmenters, sharing them between augmenters.
type builder struct {
	cfg    *Config
	logger *zap.Logger

	downloads    *downloader.Manager
	hfClient     *hfapi.Client
	geminiClient *gemini.Client
	thesauri     map[string]lexicon.Thesaurus
	vectors      map[string]*vectors.Model
}

// Build creates the configured augmenters, with the collaborators they need, and returns them in
// an augment.Pipeline.
//
// Files (thesauri, vectors, tokenizers) are loaded, and downloaded from the HuggingFace Hub if
// needed, during Build. Fill-mask models are always served by the HuggingFace Inference API, the
// other models by the configured provider.
func (c *Config) Build(ctx context.Context, logger *zap.Logger) (*augment.Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &builder{
		cfg:      c,
		logger:   logger,
		thesauri: make(map[string]lexicon.Thesaurus),
		vectors:  make(map[string]*vectors.Model),
	}
	stages := make([]augment.Augmenter, 0, len(c.Augmenters))
	for ii := range c.Augmenters {
		a, err := b.augmenter(ctx, &c.Augmenters[ii])
		if err != nil {
			return nil, errors.WithMessagef(err, "augmenter #%d (%s)", ii, c.Augmenters[ii].Name)
		}
		stages = append(stages, a)
	}
	return augment.NewPipeline(stages...).
		WithOriginals(c.Originals).
		WithMaxParallel(c.MaxParallel).
		WithLogger(logger), nil
}

func (b *builder) augmenter(ctx context.Context, ac *Augmenter) (augment.Augmenter, error) {
	opts, err := ac.Options()
	if err != nil {
		return nil, err
	}
	opts = append(opts, augment.WithLogger(b.logger.With(zap.String("augmenter", ac.Name))))
	var deps augment.Dependencies
	if ac.Thesaurus != "" {
		if deps.Thesaurus, err = b.thesaurus(ac.Thesaurus); err != nil {
			return nil, err
		}
	}
	if ac.Vectors != "" {
		if deps.Vectors, err = b.wordVectors(ac.VectorsRepo, ac.Vectors); err != nil {
			return nil, err
		}
	}

	switch ac.Name {
	case "BackTranslation":
		deps.Translator, err = b.translator(ctx, ac.Model)
	case "AbstractiveSummarization":
		deps.Summarizer, err = b.summarizer(ctx, ac.Model)
	case "Paraphrase":
		deps.Paraphraser, err = b.paraphraser(ctx, ac.Model)
		if err == nil && ac.Truncate {
			err = b.truncation(&deps, modelOr(ac.Model, DefaultParaphraseModel))
		}
	case "ContextualWordReplacement":
		model := modelOr(ac.Model, DefaultFillMaskModel)
		b.checkTask(model, "fill-mask")
		repo, repoErr := b.repo(model)
		if repoErr != nil {
			// Without a repository the filler uses hfapi.DefaultMaskToken.
			b.logger.Warn("can't read the model's mask token", zap.String("model", model), zap.Error(repoErr))
			repo = nil
		}
		deps.MaskFiller = b.hf().MaskFiller(model, repo)
	}
	if err != nil {
		return nil, err
	}
	return augment.New(ac.Name, deps, opts...)
}

func modelOr(model, defaultModel string) string {
	if model == "" {
		return defaultModel
	}
	return model
}

// repo returns the HuggingFace Hub repository ref (see hub.Parse). All repositories share one
// download manager.
func (b *builder) repo(ref string) (*hub.Repo, error) {
	repo, err := hub.Parse(ref)
	if err != nil {
		return nil, err
	}
	token := b.cfg.Inference.Token
	if b.downloads == nil {
		b.downloads = downloader.New().MaxParallel(maxParallelDownloads).WithAuthToken(token)
	}
	return repo.WithAuth(token).WithDownloadManager(b.downloads), nil
}

// checkTask logs a warning if the model's pipeline tag on the Hub is not task. Failing to check
// (e.g. offline) is not an error, the inference request will report it if the model is unusable.
func (b *builder) checkTask(model, task string) {
	repo, err := b.repo(model)
	if err == nil {
		err = repo.CheckTask(task)
	}
	if err != nil {
		b.logger.Warn("model may not support task", zap.String("model", model), zap.String("task", task), zap.Error(err))
	}
}

func (b *builder) hf() *hfapi.Client {
	if b.hfClient == nil {
		inf := b.cfg.Inference
		b.hfClient = hfapi.New().WithAuth(inf.Token).WithMaxInFlight(inf.MaxInFlight).WithLogger(b.logger)
		if inf.Endpoint != "" {
			b.hfClient.WithEndpoint(inf.Endpoint)
		}
	}
	return b.hfClient
}

func (b *builder) gemini(ctx context.Context) (*gemini.Client, error) {
	if b.geminiClient == nil {
		client, err := gemini.New(ctx, b.cfg.Inference.APIKey, b.cfg.Inference.Model)
		if err != nil {
			return nil, err
		}
		b.geminiClient = client.WithLogger(b.logger)
	}
	return b.geminiClient, nil
}

func (b *builder) translator(ctx context.Context, modelPattern string) (inference.Translator, error) {
	if b.cfg.Inference.Provider == ProviderGemini {
		return b.gemini(ctx)
	}
	return b.hf().Translator(modelPattern), nil
}

func (b *builder) summarizer(ctx context.Context, model string) (inference.Summarizer, error) {
	if b.cfg.Inference.Provider == ProviderGemini {
		return b.gemini(ctx)
	}
	model = modelOr(model, DefaultSummarizationModel)
	b.checkTask(model, "summarization")
	return b.hf().Summarizer(model), nil
}

func (b *builder) paraphraser(ctx context.Context, model string) (inference.Paraphraser, error) {
	if b.cfg.Inference.Provider == ProviderGemini {
		return b.gemini(ctx)
	}
	model = modelOr(model, DefaultParaphraseModel)
	b.checkTask(model, "text2text-generation")
	return b.hf().Paraphraser(model), nil
}

// truncation sets the tokenizer and maximum input length of the model in deps.
func (b *builder) truncation(deps *augment.Dependencies, model string) error {
	repo, err := b.repo(model)
	if err != nil {
		return err
	}
	tokenizer, err := tokenizers.New(repo)
	if err != nil {
		return errors.WithMessagef(err, "tokenizer of %q for truncation", model)
	}
	tokenizerConfig, err := tokenizers.GetConfig(repo)
	if err != nil {
		return errors.WithMessagef(err, "tokenizer configuration of %q for truncation", model)
	}
	deps.Tokenizer = tokenizer
	deps.MaxTokens = tokenizerConfig.MaxInputTokens()
	if deps.MaxTokens == 0 {
		b.logger.Warn("model has no maximum input length, inputs won't be truncated", zap.String("model", model))
	}
	return nil
}

func (b *builder) thesaurus(filePath string) (lexicon.Thesaurus, error) {
	if th, found := b.thesauri[filePath]; found {
		return th, nil
	}
	th, err := lexicon.LoadThesaurus(filePath)
	if err != nil {
		return nil, err
	}
	b.logger.Info("loaded thesaurus", zap.String("file", filePath), zap.Int("words", len(th)))
	b.thesauri[filePath] = th
	return th, nil
}

func (b *builder) wordVectors(repoID, fileName string) (augment.NearestWords, error) {
	key := repoID + ":" + fileName
	if m, found := b.vectors[key]; found {
		return m, nil
	}
	var (
		m   *vectors.Model
		err error
	)
	if repoID != "" {
		var repo *hub.Repo
		if repo, err = b.repo(repoID); err == nil {
			m, err = vectors.LoadFromHub(repo, fileName)
		}
	} else {
		m, err = vectors.Load(fileName)
	}
	if err != nil {
		return nil, err
	}
	b.logger.Info("loaded word vectors", zap.String("vectors", key),
		zap.Int("words", m.Len()), zap.Int("dimensions", m.Dimensions()))
	b.vectors[key] = m
	return m, nil
}
