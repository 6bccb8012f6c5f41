package cmd

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-advisor/internal/ai"
	"github.com/spigell/resume-advisor/internal/logger"
	"github.com/spigell/resume-advisor/internal/pipeline"
	"github.com/spigell/resume-advisor/internal/resume"
)

var stagesCmd = &cobra.Command{
	Use:   "stages",
	Short: "Print the configured analysis stages and agent goals",
	Run: func(cmd *cobra.Command, _ []string) {
		logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
		if err != nil {
			log.Fatalf("creating a logger: %s", err)
		}
		defer logger.Sync()

		config, err := getConfig()
		if err != nil {
			logger.Fatal("getting a config", zap.Error(err))
		}

		stages, err := newStages(config, resume.New(logger, resume.Options{}), newExtractor(config, logger))
		if err != nil {
			logger.Fatal("preparing stages", zap.Error(err))
		}

		profiles := ai.DefaultProfiles()
		if err := profiles.Apply(config.Agents); err != nil {
			logger.Fatal("applying agent overrides", zap.Error(err))
		}

		out := cmd.OutOrStdout()
		for i, status := range pipeline.Describe(stages) {
			fmt.Fprintf(out, "%d. %s\n", i+1, status.Name)
			fmt.Fprintf(out, "   role: %s (%s)\n", status.Role, profiles[status.Role].Title)
			fmt.Fprintf(out, "   goal: %s\n", profiles[status.Role].Goal)
			if status.Tool != "" {
				fmt.Fprintf(out, "   tool: %s\n", status.Tool)
			}
			fmt.Fprint(out, formatDetails(status.Details))
		}
	},
}

func init() {
	rootCmd.AddCommand(stagesCmd)
}

func formatDetails(details map[string]string) string {
	keys := make([]string, 0, len(details))
	for key := range details {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		fmt.Fprintf(&b, "   %s: %s\n", key, details[key])
	}
	return b.String()
}
