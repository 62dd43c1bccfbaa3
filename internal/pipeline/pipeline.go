// Package pipeline runs one recording through encoding, generation, recovery
// and packaging.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/kdduha/audioflow/internal/diagram"
	"github.com/kdduha/audioflow/internal/generation"
	"github.com/kdduha/audioflow/internal/media"
	"github.com/kdduha/audioflow/internal/metrics"
	"github.com/kdduha/audioflow/internal/models"
	"github.com/kdduha/audioflow/internal/prompt"
	"github.com/kdduha/audioflow/internal/recovery"
	"github.com/rs/zerolog"
)

const unsupportedKind = "unsupported"

type Options struct {
	Language        string
	Pacing          time.Duration
	MaxOutputTokens int32
	// Packager defaults to diagram.New().
	Packager *diagram.Packager
}

type Pipeline struct {
	generator       generation.Generator
	contract        prompt.Contract
	parser          *recovery.Parser
	packager        *diagram.Packager
	pacing          time.Duration
	maxOutputTokens int32
	logger          zerolog.Logger
}

func New(generator generation.Generator, opts Options, logger zerolog.Logger) *Pipeline {
	contract := prompt.For(opts.Language)
	packager := opts.Packager
	if packager == nil {
		packager = diagram.New()
	}
	return &Pipeline{
		generator:       generator,
		contract:        contract,
		parser:          recovery.New(contract.MissingSummary),
		packager:        packager,
		pacing:          opts.Pacing,
		maxOutputTokens: opts.MaxOutputTokens,
		logger:          logger.With().Str("component", "pipeline").Logger(),
	}
}

// Run converts one recording into a diagram. notify is called before each
// stage and may be nil. The result is all-or-nothing: on failure the returned
// error is always a *Error.
func (p *Pipeline) Run(ctx context.Context, file models.MediaFile, notify func(models.Status)) (*models.DiagramResult, error) {
	if notify == nil {
		notify = func(models.Status) {}
	}

	kind := media.Kind(file.MIMEType)
	if kind == "" {
		kind = unsupportedKind
	}
	log := p.logger.With().Str("file", file.Name).Str("mime_type", file.MIMEType).Logger()

	start := time.Now()
	result, err := p.run(ctx, file, notify, log)
	if err != nil {
		metrics.PipelineRunsTotal(string(KindOf(err)), kind)
		log.Error().Err(err).Dur("duration", time.Since(start)).Msg("run failed")
		return nil, err
	}

	metrics.PipelineRunsTotal("ok", kind)
	log.Info().Dur("duration", time.Since(start)).Str("result", result.FileName).Msg("run finished")
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, file models.MediaFile, notify func(models.Status), log zerolog.Logger) (*models.DiagramResult, error) {
	if err := CheckInput(file); err != nil {
		return nil, err
	}

	notify(models.StatusUploading)
	stageStart := time.Now()
	payload, err := media.Encode(ctx, file)
	if err != nil {
		return nil, newError(ctx, StageEncode, err)
	}
	p.stageDone(log, StageEncode, stageStart)

	notify(models.StatusAnalyzing)
	stageStart = time.Now()
	if err := p.pace(ctx); err != nil {
		return nil, newError(ctx, StageAnalyze, err)
	}
	p.stageDone(log, StageAnalyze, stageStart)

	notify(models.StatusGenerating)
	stageStart = time.Now()
	raw, err := p.generator.Generate(ctx, models.GenerationRequest{
		Media:             payload,
		SystemInstruction: p.contract.System,
		UserInstruction:   p.contract.User,
		ResponseFormat:    models.ResponseFormatJSON,
		MaxOutputTokens:   p.maxOutputTokens,
	})
	if err != nil {
		return nil, newError(ctx, StageGenerate, err)
	}
	p.stageDone(log, StageGenerate, stageStart)

	stageStart = time.Now()
	draft, strategy, err := p.parser.Recover(raw)
	if err != nil {
		log.Debug().Int("response_bytes", len(raw)).Msg("unparseable model response")
		return nil, newError(ctx, StageRecover, err)
	}
	metrics.RecoveryStrategyTotal(strategy)
	log.Debug().Str("strategy", strategy).Msg("model response recovered")
	p.stageDone(log, StageRecover, stageStart)

	stageStart = time.Now()
	doc := p.packager.Package(draft)
	if err := diagram.Check(doc); err != nil {
		log.Warn().Err(err).Str("kind", string(KindPackaging)).Msg("diagram document may not open in draw.io")
	}
	p.stageDone(log, StagePackage, stageStart)

	return &models.DiagramResult{
		XML:      doc,
		Summary:  draft.Summary,
		FileName: diagram.FileName(file.Name),
	}, nil
}

// CheckInput rejects files whose declared type is not audio or video. Run
// calls it first; callers that hand the file to a background run use it to
// fail early.
func CheckInput(file models.MediaFile) error {
	if media.IsSupported(file.MIMEType) {
		return nil
	}
	return &Error{
		Kind:    KindInvalidInput,
		Stage:   StageInput,
		Message: messages[KindInvalidInput],
		Err:     fmt.Errorf("unsupported media type %q", file.MIMEType),
	}
}

func (p *Pipeline) pace(ctx context.Context) error {
	if p.pacing <= 0 {
		return nil
	}
	timer := time.NewTimer(p.pacing)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (p *Pipeline) stageDone(log zerolog.Logger, stage Stage, start time.Time) {
	d := time.Since(start)
	metrics.PipelineStageDuration(string(stage), d)
	log.Debug().Str("stage", string(stage)).Dur("duration", d).Msg("stage finished")
}
