package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/resume-advisor/internal/ai"
	"github.com/spigell/resume-advisor/internal/logger"
)

type stubGenerator struct {
	response    string
	err         error
	lastSystem  string
	lastMessage string
}

func (s *stubGenerator) GenerateContent(_ context.Context, system, message string) (string, error) {
	s.lastSystem = system
	s.lastMessage = message
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) Model() string {
	return "stub-model"
}

func TestAgentInvoke(t *testing.T) {
	stub := &stubGenerator{response: "Match Score: 80%"}
	agent := NewAgent(stub, nil, 0, zap.NewNop())

	output, err := agent.Invoke(context.Background(), ai.MatchAdvisor, []string{"resume analysis", "job analysis"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if output != "Match Score: 80%" {
		t.Fatalf("unexpected output: %q", output)
	}

	profile := ai.DefaultProfiles()[ai.MatchAdvisor]

	if !strings.Contains(stub.lastSystem, "You are the "+profile.Title+".") {
		t.Fatalf("expected persona title in system instruction: %s", stub.lastSystem)
	}
	if !strings.Contains(stub.lastSystem, profile.Goal) {
		t.Fatalf("expected goal in system instruction: %s", stub.lastSystem)
	}
	if !strings.Contains(stub.lastMessage, profile.Task) {
		t.Fatalf("expected task in message: %s", stub.lastMessage)
	}

	first := strings.Index(stub.lastMessage, "[Context 1]\nresume analysis")
	second := strings.Index(stub.lastMessage, "[Context 2]\njob analysis")
	if first == -1 || second == -1 || first > second {
		t.Fatalf("expected context blocks in order, got: %s", stub.lastMessage)
	}
}

func TestAgentInvokeForwardsToolErrorsAsContext(t *testing.T) {
	stub := &stubGenerator{response: "The job posting could not be retrieved."}
	agent := NewAgent(stub, nil, 0, zap.NewNop())

	toolFailure := "Error: Request timed out for 'https://x'."
	if _, err := agent.Invoke(context.Background(), ai.JobAnalyst, []string{"resume analysis", toolFailure}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(stub.lastMessage, toolFailure) {
		t.Fatalf("expected tool failure to be forwarded verbatim: %s", stub.lastMessage)
	}
}

func TestAgentInvokeWrapsGeneratorError(t *testing.T) {
	cause := errors.New("permission denied: API key not valid")
	agent := NewAgent(&stubGenerator{err: cause}, nil, 0, zap.NewNop())

	_, err := agent.Invoke(context.Background(), ai.ResumeAnalyst, []string{"resume"})
	if err == nil {
		t.Fatal("expected error")
	}

	var invErr *ai.InvocationError
	if !errors.As(err, &invErr) {
		t.Fatalf("expected invocation error, got %T", err)
	}
	if invErr.Role != ai.ResumeAnalyst {
		t.Fatalf("unexpected role: %s", invErr.Role)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to unwrap")
	}
}

func TestAgentInvokeUnknownRole(t *testing.T) {
	stub := &stubGenerator{response: "unused"}
	agent := NewAgent(stub, ai.Profiles{}, 0, zap.NewNop())

	_, err := agent.Invoke(context.Background(), ai.MatchAdvisor, nil)

	var invErr *ai.InvocationError
	if !errors.As(err, &invErr) {
		t.Fatalf("expected invocation error, got %v", err)
	}
	if stub.lastMessage != "" {
		t.Fatalf("generator should not be called")
	}
}

func TestAgentLogsPreviews(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	stub := &stubGenerator{response: strings.Repeat("r", 50)}
	agent := NewAgent(stub, nil, 10, zap.New(core))

	if _, err := agent.Invoke(context.Background(), ai.ResumeAnalyst, []string{"resume"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := observed.FilterMessage("gemini generate content response").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 response entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx["response_preview"] != strings.Repeat("r", 10)+"..." {
		t.Fatalf("unexpected preview: %v", ctx["response_preview"])
	}
	if ctx[logger.FieldProvider] != "gemini" || ctx[logger.FieldModel] != "stub-model" {
		t.Fatalf("expected common ai fields, got %v", ctx)
	}
}

func TestFormatContextEmpty(t *testing.T) {
	if got := formatContext(nil); got != "(none)" {
		t.Fatalf("unexpected empty context rendering: %q", got)
	}
}
