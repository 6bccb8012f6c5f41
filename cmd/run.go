package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-advisor/internal/logger"
	"github.com/spigell/resume-advisor/internal/pipeline"
	"github.com/spigell/resume-advisor/internal/resume"
)

const stdinPath = "-"

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Analyze a resume against a job posting",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("resume", "r", "", "path to the resume (text, PDF, DOCX or s3://bucket/key). Use - to read text from stdin")
	runCmd.Flags().String("resume-text", "", "resume text passed inline instead of a file")
	runCmd.Flags().StringP("job-url", "u", "", "URL of the job posting")
	runCmd.Flags().StringP("output", "o", "", "also write the report to this file")
	runCmd.Flags().String("on-tool-error", "", "what to do when a tool fails: degrade or abort")

	viper.BindPFlag("resume", runCmd.Flags().Lookup("resume"))
	viper.BindPFlag("resume-text", runCmd.Flags().Lookup("resume-text"))
	viper.BindPFlag("job-url", runCmd.Flags().Lookup("job-url"))
	viper.BindPFlag("output", runCmd.Flags().Lookup("output"))
	viper.BindPFlag("pipeline.on-tool-error", runCmd.Flags().Lookup("on-tool-error"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the resume-advisor", zap.String("version", version))

	resumePath, cleanup, err := resolveResume(config, cmd.InOrStdin())
	if err != nil {
		logger.Fatal("resolving the resume", zap.Error(err),
			zap.String("hint", "pass --resume <path>, --resume-text or pipe the text with --resume -"),
		)
	}
	defer cleanup()

	// Fatal exits without running deferred calls.
	fatal := func(msg string, fields ...zap.Field) {
		cleanup()
		logger.Fatal(msg, fields...)
	}

	jobURL, err := resolveJobURL(config)
	if err != nil {
		fatal("resolving the job url", zap.Error(err), zap.String("hint", "pass --job-url <url>"))
	}

	ingestor, err := newIngestor(ctx, config, resumePath, logger)
	if err != nil {
		fatal("creating the resume reader", zap.Error(err),
			zap.String("hint", "configure s3.region/s3.endpoint and AWS credentials for s3:// resumes"),
		)
	}

	stages, err := newStages(config, ingestor, newExtractor(config, logger))
	if err != nil {
		fatal("preparing stages", zap.Error(err))
	}

	reasoner, err := newReasoner(ctx, config, logger)
	if err != nil {
		fatal("creating the ai reasoner", zap.Error(err), zap.String("hint", troubleshootingHint))
	}

	p, err := pipeline.New(reasoner, stages, logger.Named("pipeline"))
	if err != nil {
		fatal("creating the pipeline", zap.Error(err))
	}

	out := cmd.OutOrStdout()
	printBanner(out, p.Stages())

	result, err := p.Run(ctx, pipeline.Inputs{
		pipeline.InputResume: resumePath,
		pipeline.InputJobURL: jobURL,
	})
	if err != nil {
		var toolErr *pipeline.ToolError
		if errors.As(err, &toolErr) {
			fatal("tool failed", zap.Error(err), zap.String("tool", toolErr.Tool),
				zap.String("hint", "rerun with --on-tool-error degrade to analyze what is available"),
			)
		}
		fatal("analysis failed", zap.Error(err), zap.String("hint", troubleshootingHint))
	}

	printReport(out, result)

	if path := strings.TrimSpace(config.Output); path != "" {
		if err := os.WriteFile(path, []byte(result.Output+"\n"), 0o644); err != nil {
			fatal("writing the report", zap.Error(err), zap.String("path", path))
		}
		logger.Info("report written", zap.String("path", path))
	}
}

// resolveResume returns a readable résumé path and a cleanup func for any
// temporary file created for inline or piped text.
func resolveResume(config *Config, stdin io.Reader) (string, func(), error) {
	noop := func() {}

	if text := strings.TrimSpace(config.ResumeText); text != "" {
		return resume.Stage(text)
	}

	path := strings.TrimSpace(config.Resume)
	if path == stdinPath {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", noop, fmt.Errorf("reading resume from stdin: %w", err)
		}
		if strings.TrimSpace(string(data)) == "" {
			return "", noop, errors.New("resume text from stdin is empty")
		}
		return resume.Stage(string(data))
	}

	if path == "" {
		if !interactive() {
			return "", noop, errors.New("resume is required")
		}
		prompted, err := ask("Path to your resume file")
		if err != nil {
			return "", noop, err
		}
		path = prompted
	}

	return path, noop, nil
}

func resolveJobURL(config *Config) (string, error) {
	if url := strings.TrimSpace(config.JobURL); url != "" {
		return url, nil
	}

	if !interactive() {
		return "", errors.New("job url is required")
	}

	return ask("Job posting URL")
}

func ask(label string) (string, error) {
	prompt := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("value must not be empty")
			}
			return nil
		},
	}

	value, err := prompt.Run()
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(value), nil
}

func interactive() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func printBanner(w io.Writer, stages []pipeline.Stage) {
	fmt.Fprintln(w, "Running the resume analysis:")
	for i, status := range pipeline.Describe(stages) {
		line := fmt.Sprintf("  %d. %s (%s)", i+1, status.Name, status.Role)
		if status.Tool != "" {
			line += " using " + status.Tool
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w)
}

func printReport(w io.Writer, result *pipeline.Result) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "MATCH REPORT")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, result.Output)
	fmt.Fprintln(w, rule)

	if degraded := result.DegradedStages(); degraded > 0 {
		fmt.Fprintf(w, "Note: %d stage(s) ran without their tool output; see the report for details.\n", degraded)
	}
}
