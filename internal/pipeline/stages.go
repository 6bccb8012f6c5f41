package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/resume-advisor/internal/ai"
)

// Default stage names, in execution order.
const (
	StageResumeAnalysis = "resume_analysis"
	StageJobAnalysis    = "job_analysis"
	StageMatchAdvisory  = "match_advisory"
)

// OnToolError selects what a stage does when its tool fails.
type OnToolError string

const (
	// Degrade forwards the rendered "Error:" string to the reasoner as context.
	Degrade OnToolError = "degrade"
	// Abort stops the run with a *ToolError.
	Abort OnToolError = "abort"
)

// ParseOnToolError resolves a configured policy. Empty means Degrade.
func ParseOnToolError(value string) (OnToolError, error) {
	switch OnToolError(strings.ToLower(strings.TrimSpace(value))) {
	case "", Degrade:
		return Degrade, nil
	case Abort:
		return Abort, nil
	default:
		return "", fmt.Errorf("unknown tool error policy %q (want %q or %q)", value, Degrade, Abort)
	}
}

// Stage describes one step of the pipeline.
type Stage struct {
	Name string
	Role ai.Role
	// InputRefs name earlier stages whose outputs become context, in order.
	InputRefs []string
	// Tool is optional. When set it is called with Inputs[ToolInput].
	Tool        Tool
	ToolInput   string
	OnToolError OnToolError
}

// DefaultStages returns the résumé analysis, job analysis and match advisory
// chain. Each stage sees every earlier output.
func DefaultStages(resumeTool, jobTool Tool, policy OnToolError) []Stage {
	if policy == "" {
		policy = Degrade
	}

	return []Stage{
		{
			Name:        StageResumeAnalysis,
			Role:        ai.ResumeAnalyst,
			Tool:        resumeTool,
			ToolInput:   InputResume,
			OnToolError: policy,
		},
		{
			Name:        StageJobAnalysis,
			Role:        ai.JobAnalyst,
			InputRefs:   []string{StageResumeAnalysis},
			Tool:        jobTool,
			ToolInput:   InputJobURL,
			OnToolError: policy,
		},
		{
			Name:      StageMatchAdvisory,
			Role:      ai.MatchAdvisor,
			InputRefs: []string{StageResumeAnalysis, StageJobAnalysis},
		},
	}
}

// Validate checks that stages form a linear chain: names are unique, every
// reference points at an earlier stage, and tool bindings are complete.
func Validate(stages []Stage) error {
	if len(stages) == 0 {
		return errors.New("pipeline has no stages")
	}

	seen := make(map[string]struct{}, len(stages))
	for i, stage := range stages {
		name := strings.TrimSpace(stage.Name)
		if name == "" {
			return fmt.Errorf("stage %d: name is required", i)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("stage %s: duplicate name", name)
		}
		if _, err := ai.ParseRole(string(stage.Role)); err != nil {
			return fmt.Errorf("stage %s: %w", name, err)
		}

		for _, ref := range stage.InputRefs {
			if ref == name {
				return fmt.Errorf("stage %s: references itself", name)
			}
			if _, ok := seen[ref]; !ok {
				return fmt.Errorf("stage %s: input %q is not an earlier stage", name, ref)
			}
		}

		if stage.Tool != nil && strings.TrimSpace(stage.ToolInput) == "" {
			return fmt.Errorf("stage %s: tool %s has no input key", name, stage.Tool.Name())
		}

		switch stage.OnToolError {
		case "", Degrade, Abort:
		default:
			return fmt.Errorf("stage %s: unknown tool error policy %q", name, stage.OnToolError)
		}

		seen[name] = struct{}{}
	}

	return nil
}

// Status describes a configured stage.
type Status struct {
	Name    string
	Role    ai.Role
	Tool    string
	Details map[string]string
}

// Describe returns status entries for the provided stages.
func Describe(stages []Stage) []Status {
	statuses := make([]Status, 0, len(stages))
	for _, stage := range stages {
		details := map[string]string{}
		if len(stage.InputRefs) > 0 {
			details["inputs"] = strings.Join(stage.InputRefs, ",")
		}

		status := Status{Name: stage.Name, Role: stage.Role, Details: details}
		if stage.Tool != nil {
			status.Tool = stage.Tool.Name()
			details["tool_input"] = stage.ToolInput
			policy := stage.OnToolError
			if policy == "" {
				policy = Degrade
			}
			details["on_tool_error"] = string(policy)
		}

		statuses = append(statuses, status)
	}
	return statuses
}
