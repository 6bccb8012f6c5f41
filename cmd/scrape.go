package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-advisor/internal/logger"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <url>",
	Short: "Fetch a job posting with the scraper tool and print the extracted text",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
		if err != nil {
			log.Fatalf("creating a logger: %s", err)
		}
		defer logger.Sync()

		config, err := getConfig()
		if err != nil {
			logger.Fatal("getting a config", zap.Error(err))
		}

		result := newExtractor(config, logger).Extract(context.Background(), args[0])
		if result.Failed() {
			logger.Warn("job posting could not be extracted", zap.String("kind", string(result.Err.Kind)))
		} else if result.Truncated {
			logger.Info("job posting truncated", zap.Int("max_chars", config.Scraper.MaxChars))
		}

		fmt.Fprintln(cmd.OutOrStdout(), result.String())
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
}
