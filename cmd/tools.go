package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/resume-advisor/internal/ai"
	"github.com/spigell/resume-advisor/internal/ai/gemini"
	"github.com/spigell/resume-advisor/internal/pipeline"
	"github.com/spigell/resume-advisor/internal/resume"
	"github.com/spigell/resume-advisor/internal/scraper"
	"github.com/spigell/resume-advisor/internal/secrets"
)

const troubleshootingHint = "check that GEMINI_API_KEY or GOOGLE_API_KEY is valid; make sure the job URL opens in a browser; " +
	"provide the resume as plain text, PDF or DOCX"

// newIngestor builds the résumé tool. An S3 client is created only when the
// résumé lives in a bucket.
func newIngestor(ctx context.Context, config *Config, resumePath string, logger *zap.Logger) (*resume.Ingestor, error) {
	opts := resume.Options{MaxChars: config.ResumeLimits.MaxChars}

	if resume.IsS3Path(resume.NormalizePath(resumePath)) {
		client, err := resume.NewS3Client(ctx, resume.S3Config{
			Region:   config.S3.Region,
			Endpoint: config.S3.Endpoint,
		})
		if err != nil {
			return nil, err
		}
		opts.S3 = client
	}

	return resume.New(logger.Named("resume"), opts), nil
}

func newExtractor(config *Config, logger *zap.Logger) *scraper.Extractor {
	return scraper.New(logger.Named("scraper"), scraper.Options{
		Timeout:   config.Scraper.Timeout,
		UserAgent: config.Scraper.UserAgent,
		MaxChars:  config.Scraper.MaxChars,
	})
}

func newStages(config *Config, resumeTool, jobTool pipeline.Tool) ([]pipeline.Stage, error) {
	policy, err := pipeline.ParseOnToolError(config.Pipeline.OnToolError)
	if err != nil {
		return nil, err
	}
	return pipeline.DefaultStages(resumeTool, jobTool, policy), nil
}

func newReasoner(ctx context.Context, cfg *Config, logger *zap.Logger) (ai.Reasoner, error) {
	config := cfg.AI
	if config == nil || config.Gemini == nil {
		return nil, fmt.Errorf("gemini configuration is required")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: config.Gemini.APIKey,
		File:  config.Gemini.APIKeyFile,
		Env:   []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set GEMINI_API_KEY, ai.gemini.api-key or ai.gemini.api-key-file)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, gemini.GeneratorOptions{
		Model:       config.Gemini.Model,
		MaxRetries:  config.Gemini.MaxRetries,
		Temperature: config.Gemini.Temperature,
	}, logger.With(zap.Int("ai_retry_attempts", config.Gemini.MaxRetries)))
	if err != nil {
		return nil, err
	}

	profiles := ai.DefaultProfiles()
	if err := profiles.Apply(cfg.Agents); err != nil {
		return nil, fmt.Errorf("agents: %w", err)
	}

	return gemini.NewAgent(generator, profiles, config.Gemini.MaxLogLength, logger), nil
}
