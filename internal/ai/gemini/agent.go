package gemini

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/resume-advisor/internal/ai"
	"github.com/spigell/resume-advisor/internal/logger"
	"github.com/spigell/resume-advisor/internal/utils"
)

const (
	providerName        = "gemini"
	defaultMaxLogLength = 200
)

//go:embed system.md
var systemTemplate string

//go:embed prompt.md
var promptTemplate string

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Model() string
}

// Agent answers pipeline stages with Gemini, one persona per role.
type Agent struct {
	generator contentGenerator
	profiles  ai.Profiles
	logger    *zap.Logger
	maxLogLen int
}

// NewAgent creates an Agent. A nil profiles map uses ai.DefaultProfiles.
func NewAgent(generator contentGenerator, profiles ai.Profiles, maxLogLength int, log *zap.Logger) *Agent {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	if profiles == nil {
		profiles = ai.DefaultProfiles()
	}

	return &Agent{
		generator: generator,
		profiles:  profiles,
		logger:    logger.WithCommonFields(log, providerName, generator.Model()),
		maxLogLen: maxLogLength,
	}
}

// Invoke implements ai.Reasoner.
func (a *Agent) Invoke(ctx context.Context, role ai.Role, inputs []string) (string, error) {
	profile, ok := a.profiles[role]
	if !ok {
		return "", &ai.InvocationError{Role: role, Err: fmt.Errorf("no profile configured")}
	}

	system := buildSystemInstruction(profile)
	message := buildMessage(profile, inputs)

	a.logger.Debug("gemini generate content request",
		zap.String("role", string(role)),
		zap.Int("context_blocks", len(inputs)),
		zap.Int("prompt_length", utf8.RuneCountInString(message)),
		zap.String("prompt_preview", utils.Preview(message, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, system, message)
	if err != nil {
		return "", &ai.InvocationError{Role: role, Err: err}
	}

	a.logger.Debug("gemini generate content response",
		zap.String("role", string(role)),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.Preview(raw, a.maxLogLen)),
	)

	return raw, nil
}

func buildSystemInstruction(profile ai.Profile) string {
	template := systemTemplate
	if strings.TrimSpace(template) == "" {
		template = "You are the {{TITLE}}.\nGoal: {{GOAL}}\n{{BACKSTORY}}"
	}

	replacer := strings.NewReplacer(
		"{{TITLE}}", profile.Title,
		"{{GOAL}}", profile.Goal,
		"{{BACKSTORY}}", profile.Backstory,
	)
	return replacer.Replace(template)
}

func buildMessage(profile ai.Profile, inputs []string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "{{TASK}}\n\n{{EXPECTED_OUTPUT}}\n\n{{CONTEXT}}"
	}

	replacer := strings.NewReplacer(
		"{{TASK}}", profile.Task,
		"{{EXPECTED_OUTPUT}}", profile.ExpectedOutput,
		"{{CONTEXT}}", formatContext(inputs),
	)
	return replacer.Replace(template)
}

func formatContext(inputs []string) string {
	if len(inputs) == 0 {
		return "(none)"
	}

	blocks := make([]string, 0, len(inputs))
	for i, block := range inputs {
		blocks = append(blocks, fmt.Sprintf("[Context %d]\n%s", i+1, strings.TrimSpace(block)))
	}

	return strings.Join(blocks, "\n\n")
}
