package cmd

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/resume-advisor/internal/scraper"
)

const (
	app       = "resume-advisor"
	envPrefix = "RESUME_ADVISOR"
)

type Config struct {
	Resume       string         `mapstructure:"resume"`
	ResumeText   string         `mapstructure:"resume-text"`
	JobURL       string         `mapstructure:"job-url"`
	Output       string         `mapstructure:"output"`
	AI           *AIConfig      `mapstructure:"ai" validate:"required"`
	Scraper      ScraperConfig  `mapstructure:"scraper"`
	ResumeLimits ResumeLimits   `mapstructure:"resume-limits"`
	S3           S3Config       `mapstructure:"s3"`
	Agents       map[string]any `mapstructure:"agents"`
	Pipeline     PipelineConfig `mapstructure:"pipeline"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider" validate:"omitempty,oneof=gemini"`
	Gemini   *GeminiConfig `mapstructure:"gemini" validate:"required"`
}

type GeminiConfig struct {
	APIKey       string   `mapstructure:"api-key"`
	APIKeyFile   string   `mapstructure:"api-key-file"`
	Model        string   `mapstructure:"model"`
	MaxRetries   int      `mapstructure:"max-retries" validate:"gte=0,lte=10"`
	MaxLogLength int      `mapstructure:"max-log-length" validate:"gte=0"`
	Temperature  *float32 `mapstructure:"temperature" validate:"omitempty,gte=0,lte=2"`
}

type ScraperConfig struct {
	Timeout   time.Duration `mapstructure:"timeout" validate:"gte=0"`
	UserAgent string        `mapstructure:"user-agent"`
	MaxChars  int           `mapstructure:"max-chars" validate:"gte=0"`
}

type ResumeLimits struct {
	// Zero keeps the whole résumé.
	MaxChars int `mapstructure:"max-chars" validate:"gte=0"`
}

type S3Config struct {
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint" validate:"omitempty,url"`
}

type PipelineConfig struct {
	OnToolError string `mapstructure:"on-tool-error" validate:"omitempty,oneof=degrade abort"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-advisor compares a resume with a job posting using a chain of AI analysts",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-advisor.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults()
}

func setDefaults() {
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.gemini.model", "gemini-2.5-pro")
	viper.SetDefault("ai.gemini.max-retries", 1)
	viper.SetDefault("ai.gemini.max-log-length", 200)
	viper.SetDefault("scraper.timeout", scraper.DefaultTimeout)
	viper.SetDefault("scraper.user-agent", scraper.DefaultUserAgent)
	viper.SetDefault("scraper.max-chars", scraper.DefaultMaxChars)
	viper.SetDefault("resume-limits.max-chars", 0)
	viper.SetDefault("pipeline.on-tool-error", "degrade")
}

func initConfig() {
	// A missing .env is the common case.
	_ = godotenv.Load()

	if err := bindEnv(); err != nil {
		log.Fatalf("binding environment variables: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// The config file is optional, but an explicit or broken one must parse.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

// envKeys have no default, so AutomaticEnv alone never surfaces them in
// Unmarshal. They are bound explicitly.
var envKeys = []string{
	"ai.gemini.api-key",
	"ai.gemini.temperature",
	"s3.region",
	"s3.endpoint",
}

func bindEnv() error {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	for _, key := range envKeys {
		if err := viper.BindEnv(key); err != nil {
			return fmt.Errorf("binding %s: %w", key, err)
		}
	}

	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE", envPrefix+"_AI_GEMINI_API_KEY_FILE"); err != nil {
		return fmt.Errorf("binding GEMINI_API_KEY_FILE: %w", err)
	}

	return nil
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return config, err
	}

	if config == nil {
		return nil, errors.New("empty configuration")
	}

	if err := config.Validate(); err != nil {
		return config, err
	}

	return config, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) {
			fields := make([]string, 0, len(invalid))
			for _, fe := range invalid {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
		}
		return err
	}
	return nil
}
