package augment

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Pipeline runs several augmenters over the same texts and concatenates their outputs, in the
// order the augmenters were given. Each augmenter runs in its own goroutine with its own random
// generator, so the output is deterministic if every augmenter is seeded.
//
// Each augmenter lays out its own output: configure them with VariantsOnly and enable
// WithOriginals to get each original exactly once.
type Pipeline struct {
	stages      []Augmenter
	originals   bool
	maxParallel int
	logger      *zap.Logger
}

var _ Augmenter = (*Pipeline)(nil)

// NewPipeline creates a Pipeline running the given augmenters.
func NewPipeline(stages ...Augmenter) *Pipeline {
	return &Pipeline{stages: stages, logger: zap.NewNop()}
}

// WithOriginals prepends the input texts to the output of the pipeline.
func (p *Pipeline) WithOriginals(originals bool) *Pipeline {
	p.originals = originals
	return p
}

// WithMaxParallel limits the number of augmenters running at the same time. If <= 0 (the default)
// they all run at once.
func (p *Pipeline) WithMaxParallel(n int) *Pipeline {
	p.maxParallel = n
	return p
}

// WithLogger sets the logger used to report each stage.
func (p *Pipeline) WithLogger(logger *zap.Logger) *Pipeline {
	p.logger = logger
	return p
}

// Name implements Augmenter.
func (p *Pipeline) Name() string { return "Pipeline" }

// Augment implements Augmenter. If any augmenter fails, the others are canceled and the first
// error is returned.
func (p *Pipeline) Augment(ctx context.Context, texts []string) ([]string, error) {
	if len(p.stages) == 0 {
		return nil, errors.Wrap(ErrInvalidOption, "pipeline has no augmenters")
	}
	outputs := make([][]string, len(p.stages))
	g, gCtx := errgroup.WithContext(ctx)
	if p.maxParallel > 0 {
		g.SetLimit(p.maxParallel)
	}
	for ii, stage := range p.stages {
		g.Go(func() error {
			out, err := stage.Augment(gCtx, texts)
			if err != nil {
				return errors.WithMessagef(err, "pipeline stage #%d (%s)", ii, stage.Name())
			}
			outputs[ii] = out
			p.logger.Debug("pipeline stage done", zap.Int("stage", ii), zap.String("augmenter", stage.Name()),
				zap.Int("outputs", len(out)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	total := 0
	if p.originals {
		total = len(texts)
	}
	for _, out := range outputs {
		total += len(out)
	}
	result := make([]string, 0, total)
	if p.originals {
		result = append(result, texts...)
	}
	for _, out := range outputs {
		result = append(result, out...)
	}
	return result, nil
}
