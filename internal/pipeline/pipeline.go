package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"basegraph.app/reviewdesk/common/llm"
	"basegraph.app/reviewdesk/common/logger"
)

var (
	// ErrInvalidPipeline wraps every construction-time configuration error.
	ErrInvalidPipeline = errors.New("invalid pipeline")
	// ErrMissingInput is returned by Run when a declared input key is absent.
	ErrMissingInput = errors.New("missing pipeline input")
)

// Stage is one model invocation: a template and the key its output is published under.
type Stage struct {
	Name      string `yaml:"name"`
	Template  string `yaml:"template"`
	OutputKey string `yaml:"output_key"`
}

// StageError reports which stage's invocation failed.
type StageError struct {
	Stage string
	Index int
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline stage %d (%s): %v", e.Index+1, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

type compiledStage struct {
	Stage
	template *Template
}

// Pipeline runs a fixed, validated sequence of stages. Each stage sees the
// initial input plus the text outputs of strictly earlier stages.
type Pipeline struct {
	llm       llm.Invoker
	inputKeys []string
	stages    []compiledStage
}

// New validates the stage list against the declared input keys. Every
// placeholder must resolve to an input or an earlier stage's output key.
func New(invoker llm.Invoker, inputKeys []string, stages ...Stage) (*Pipeline, error) {
	if invoker == nil {
		return nil, fmt.Errorf("%w: invoker is required", ErrInvalidPipeline)
	}
	if len(stages) == 0 {
		return nil, fmt.Errorf("%w: at least one stage is required", ErrInvalidPipeline)
	}

	available := make(map[string]string, len(inputKeys)+len(stages))
	for _, key := range inputKeys {
		if !validName(key) {
			return nil, fmt.Errorf("%w: invalid input key %q", ErrInvalidPipeline, key)
		}
		if _, dup := available[key]; dup {
			return nil, fmt.Errorf("%w: duplicate input key %q", ErrInvalidPipeline, key)
		}
		available[key] = "input"
	}

	names := make(map[string]struct{}, len(stages))
	compiled := make([]compiledStage, 0, len(stages))
	for i, stage := range stages {
		if stage.Name == "" {
			return nil, fmt.Errorf("%w: stage %d has no name", ErrInvalidPipeline, i+1)
		}
		if _, dup := names[stage.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate stage name %q", ErrInvalidPipeline, stage.Name)
		}
		names[stage.Name] = struct{}{}

		if !validName(stage.OutputKey) {
			return nil, fmt.Errorf("%w: stage %q has invalid output key %q", ErrInvalidPipeline, stage.Name, stage.OutputKey)
		}

		tmpl, err := ParseTemplate(stage.Template)
		if err != nil {
			return nil, fmt.Errorf("%w: stage %q: %v", ErrInvalidPipeline, stage.Name, err)
		}
		for _, ref := range tmpl.Placeholders() {
			if _, ok := available[ref]; !ok {
				return nil, fmt.Errorf("%w: stage %q references {%s}, which is not an input or an earlier output",
					ErrInvalidPipeline, stage.Name, ref)
			}
		}

		if owner, taken := available[stage.OutputKey]; taken {
			return nil, fmt.Errorf("%w: stage %q output key %q already provided by %s",
				ErrInvalidPipeline, stage.Name, stage.OutputKey, owner)
		}
		available[stage.OutputKey] = "stage " + stage.Name

		compiled = append(compiled, compiledStage{Stage: stage, template: tmpl})
	}

	return &Pipeline{
		llm:       invoker,
		inputKeys: append([]string(nil), inputKeys...),
		stages:    compiled,
	}, nil
}

// InputKeys returns the variables Run expects.
func (p *Pipeline) InputKeys() []string {
	return append([]string(nil), p.inputKeys...)
}

// Stages returns the stage definitions in execution order.
func (p *Pipeline) Stages() []Stage {
	stages := make([]Stage, len(p.stages))
	for i, s := range p.stages {
		stages[i] = s.Stage
	}
	return stages
}

// Run executes the stages in order. It returns either every stage's output or
// an error and no result.
func (p *Pipeline) Run(ctx context.Context, input map[string]string) (*Result, error) {
	vars := make(map[string]string, len(p.inputKeys)+len(p.stages))
	for _, key := range p.inputKeys {
		value, ok := input[key]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingInput, key)
		}
		vars[key] = value
	}

	result := newResult(len(p.stages))
	for i, stage := range p.stages {
		output, err := p.runStage(ctx, i, stage, vars)
		if err != nil {
			return nil, err
		}
		vars[stage.OutputKey] = output
		result.set(stage.OutputKey, output)
	}

	return result, nil
}

func (p *Pipeline) runStage(ctx context.Context, index int, stage compiledStage, vars map[string]string) (string, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Stage: logger.Ptr(stage.Name)})
	sc := logger.StartSpan(ctx, "pipeline.stage", trace.WithAttributes(
		attribute.String("pipeline.stage", stage.Name),
		attribute.Int("pipeline.stage_index", index),
	))
	defer sc.End()
	ctx = sc.Context()

	// Construction guarantees every placeholder is bound by now
	prompt, err := stage.template.Render(vars)
	if err != nil {
		sc.RecordError(err)
		return "", &StageError{Stage: stage.Name, Index: index, Err: err}
	}

	start := time.Now()
	completion, err := p.llm.Complete(ctx, llm.CompletionRequest{
		Messages: llm.Prompt(prompt),
	})
	if err != nil {
		sc.RecordError(err)
		slog.WarnContext(ctx, "pipeline stage failed", "error", err)
		return "", &StageError{Stage: stage.Name, Index: index, Err: err}
	}

	slog.DebugContext(ctx, "pipeline stage completed",
		"output_key", stage.OutputKey,
		"output_chars", len(completion.Content),
		"latency_ms", time.Since(start).Milliseconds())

	return completion.Content, nil
}
