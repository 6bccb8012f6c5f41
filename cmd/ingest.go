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

var ingestCmd = &cobra.Command{
	Use:   "ingest <path>",
	Short: "Read a resume with the resume tool and print what the analyst would see",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
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

		ingestor, err := newIngestor(ctx, config, args[0], logger)
		if err != nil {
			logger.Fatal("creating the resume reader", zap.Error(err))
		}

		result := ingestor.Ingest(ctx, args[0])
		if result.Failed() {
			logger.Warn("resume could not be read", zap.String("kind", string(result.Err.Kind)))
		}

		fmt.Fprintln(cmd.OutOrStdout(), result.String())
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
