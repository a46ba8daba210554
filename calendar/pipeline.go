package calendar

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// PipelineOptions configures every stage at once.
type PipelineOptions struct {
	Merger    MergerOptions
	Inference InferenceOptions
	Logger    *slog.Logger
}

// Pipeline wires the stages together: merge raw annotations, normalize
// names, synthesize from shading, validate, and extend across the forward
// window. Each invocation is independent; concurrent runs need no
// coordination as long as each owns its input.
type Pipeline struct {
	merger     *Merger
	normalizer *Normalizer
	validator  *Validator
	inference  *InferenceEngine
	logger     *slog.Logger
}

// NewPipeline creates a pipeline with the given options.
func NewPipeline(opts PipelineOptions) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Merger.Logger == nil {
		opts.Merger.Logger = logger
	}
	if opts.Inference.Logger == nil {
		opts.Inference.Logger = logger
	}
	return &Pipeline{
		merger:     NewMerger(opts.Merger),
		normalizer: NewNormalizer(logger),
		validator:  NewValidator(logger),
		inference:  NewInferenceEngine(opts.Inference),
		logger:     logger,
	}
}

// Run executes the full pipeline over one extraction result. Data-quality
// issues are recovered locally: the result is always best-effort plus an
// omitted list. Only a missing input is an error.
func (p *Pipeline) Run(in *Input, ctx SchoolYearContext) (*Result, error) {
	if in == nil {
		return nil, errors.Wrap(ErrMissingInput, "nil input")
	}
	if ctx.SchoolYear == "" {
		ctx.SchoolYear = in.SchoolYear
	}
	logger := p.logger.With("run", uuid.NewString(), "schoolYear", ctx.SchoolYear)

	if len(in.RawDates) == 0 && len(in.Shading) == 0 {
		logger.Info("no raw dates in extraction result")
		return &Result{
			SchoolName:      in.SchoolName,
			SchoolYear:      in.SchoolYear,
			Holidays:        []CanonicalHoliday{},
			OmittedHolidays: omittedHolidays(nil),
			Confidence:      in.Confidence,
			Notes:           "No dates found in calendar",
		}, nil
	}

	merged := p.merger.Merge(in.RawDates)
	logger.Debug("merge stage complete", "breaks", len(merged))

	holidays := p.normalizer.Normalize(merged, ctx)
	holidays = SynthesizeFromShading(holidays, in.Shading, ctx, logger)
	holidays = p.validator.Validate(holidays)
	holidays = p.inference.Extend(holidays, ctx)

	result := &Result{
		SchoolName:      in.SchoolName,
		SchoolYear:      in.SchoolYear,
		Holidays:        holidays,
		OmittedHolidays: omittedHolidays(holidays),
		Confidence:      in.Confidence,
		Notes: fmt.Sprintf("Processed %d raw dates into %d holidays/breaks",
			len(in.RawDates), len(holidays)),
	}
	logger.Info("pipeline complete",
		"holidays", len(result.Holidays), "omitted", len(result.OmittedHolidays))
	return result, nil
}

// omittedHolidays lists the standard holiday types with no verified or
// inferred instance. Christmas Break is treated as mandatory downstream and
// is never reported as omitted.
func omittedHolidays(holidays []CanonicalHoliday) []string {
	found := make(map[string]bool, len(holidays))
	for _, h := range holidays {
		found[h.Name] = true
	}
	var omitted []string
	for _, name := range StandardHolidays {
		if name == NameChristmasBreak || found[name] {
			continue
		}
		omitted = append(omitted, name)
	}
	if omitted == nil {
		omitted = []string{}
	}
	return omitted
}
