// Package pipeline runs the résumé/job comparison as an ordered chain of
// reasoning stages.
//
// Stages execute strictly one after another. A stage may call one tool and
// receives the outputs of the earlier stages it references, followed by the
// tool output, as context for its reasoning call.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/resume-advisor/internal/ai"
	"github.com/spigell/resume-advisor/internal/extraction"
	"github.com/spigell/resume-advisor/internal/logger"
)

// Input keys understood by the default stages.
const (
	InputResume = "resume"
	InputJobURL = "job_url"
)

// ErrEmptyOutput is returned when a reasoner answers with blank text.
var ErrEmptyOutput = errors.New("reasoner returned empty output")

// Tool is a bounded capability a stage calls before reasoning. Calls never
// fail with a Go error; failures travel inside the result.
type Tool interface {
	Name() string
	Description() string
	Call(ctx context.Context, input string) extraction.Result
}

// Inputs holds the raw pipeline inputs keyed by InputResume, InputJobURL and
// any other key a custom stage declares.
type Inputs map[string]string

// State is a point in the pipeline state machine.
type State string

const (
	StateInit   State = "init"
	StateDone   State = "done"
	StateFailed State = "failed"
)

// Running is the state held while the named stage executes.
func Running(stage string) State {
	return State(stage + "_running")
}

// Step records what a single stage did.
type Step struct {
	Stage    string
	Role     ai.Role
	Tool     string
	Degraded bool
	// ToolOutput is the rendered tool result forwarded as context.
	ToolOutput string
	Output     string
	Duration   time.Duration
}

// Result is the outcome of one pipeline run.
type Result struct {
	RunID string
	// Output is the final stage's text, returned without post-processing.
	Output      string
	State       State
	Transitions []State
	Steps       []Step
}

// Pipeline executes a validated list of stages against a Reasoner.
type Pipeline struct {
	stages   []Stage
	reasoner ai.Reasoner
	logger   *zap.Logger
}

// New validates stages and returns a Pipeline ready to run.
func New(reasoner ai.Reasoner, stages []Stage, log *zap.Logger) (*Pipeline, error) {
	if reasoner == nil {
		return nil, errors.New("reasoner is required")
	}

	if err := Validate(stages); err != nil {
		return nil, err
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &Pipeline{
		stages:   append([]Stage(nil), stages...),
		reasoner: reasoner,
		logger:   log,
	}, nil
}

// Stages returns a copy of the configured stages.
func (p *Pipeline) Stages() []Stage {
	return append([]Stage(nil), p.stages...)
}

// Run executes every stage in order and returns the last stage's output.
//
// The returned Result is never nil. On error its State is StateFailed and
// Steps lists the stages that completed.
func (p *Pipeline) Run(ctx context.Context, inputs Inputs) (*Result, error) {
	result := &Result{
		RunID:       uuid.NewString(),
		State:       StateInit,
		Transitions: []State{StateInit},
	}
	log := p.logger.With(zap.String("run_id", result.RunID))

	outputs := make(map[string]string, len(p.stages))

	fail := func(err error) (*Result, error) {
		result.advance(StateFailed)
		log.Error("pipeline failed", zap.Error(err))
		return result, err
	}

	log.Info("pipeline started", zap.Int("stages", len(p.stages)))

	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return fail(fmt.Errorf("%s: %w", stage.Name, err))
		}

		result.advance(Running(stage.Name))

		step, err := p.runStage(ctx, log, stage, inputs, outputs)
		if err != nil {
			return fail(err)
		}

		outputs[stage.Name] = step.Output
		result.Steps = append(result.Steps, step)
	}

	result.Output = result.Steps[len(result.Steps)-1].Output
	result.advance(StateDone)

	log.Info("pipeline finished",
		zap.Int("degraded_stages", result.DegradedStages()),
		zap.Int("output_length", len([]rune(result.Output))),
	)

	return result, nil
}

func (p *Pipeline) runStage(ctx context.Context, log *zap.Logger, stage Stage, inputs Inputs, outputs map[string]string) (Step, error) {
	start := time.Now()
	step := Step{Stage: stage.Name, Role: stage.Role}

	toolName := ""
	if stage.Tool != nil {
		toolName = stage.Tool.Name()
	}
	step.Tool = toolName

	stageLog := logger.WithFields(log, logger.StageFields(stage.Name, string(stage.Role), toolName)...)

	blocks := make([]string, 0, len(stage.InputRefs)+1)
	for _, ref := range stage.InputRefs {
		blocks = append(blocks, outputs[ref])
	}

	if stage.Tool != nil {
		res := stage.Tool.Call(ctx, inputs[stage.ToolInput])
		step.ToolOutput = res.String()

		if failed, cause := toolFailure(res); failed {
			if stage.OnToolError == Abort {
				return step, &ToolError{Stage: stage.Name, Tool: toolName, Err: cause}
			}

			step.Degraded = true
			stageLog.Warn("tool failed, forwarding error as context",
				zap.Bool(logger.FieldDegraded, true),
				zap.String("kind", string(cause.Kind)),
				zap.String("tool_output", step.ToolOutput),
			)
		} else {
			stageLog.Debug("tool succeeded",
				zap.Int("text_length", len([]rune(res.Text))),
				zap.Bool("truncated", res.Truncated),
			)
		}

		blocks = append(blocks, step.ToolOutput)
	}

	output, err := p.reasoner.Invoke(ctx, stage.Role, blocks)
	if err != nil {
		return step, fmt.Errorf("%s: %w", stage.Name, err)
	}
	if strings.TrimSpace(output) == "" {
		return step, fmt.Errorf("%s: %w", stage.Name, &ai.InvocationError{Role: stage.Role, Err: ErrEmptyOutput})
	}

	step.Output = output
	step.Duration = time.Since(start)

	stageLog.Info("stage completed",
		zap.Bool(logger.FieldDegraded, step.Degraded),
		zap.Duration("duration", step.Duration),
	)

	return step, nil
}

func toolFailure(res extraction.Result) (bool, *extraction.Error) {
	if res.Err != nil {
		return true, res.Err
	}
	if strings.TrimSpace(res.Text) == "" {
		return true, &extraction.Error{Kind: extraction.KindEmpty, Message: "tool returned no content."}
	}
	return false, nil
}

func (r *Result) advance(state State) {
	r.State = state
	r.Transitions = append(r.Transitions, state)
}

// DegradedStages counts stages that reasoned over a tool failure.
func (r *Result) DegradedStages() int {
	count := 0
	for _, step := range r.Steps {
		if step.Degraded {
			count++
		}
	}
	return count
}

// ToolError is returned when a stage with the Abort policy sees its tool fail.
type ToolError struct {
	Stage string
	Tool  string
	Err   *extraction.Error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s: tool %s failed: %s", e.Stage, e.Tool, e.Err.Message)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}
