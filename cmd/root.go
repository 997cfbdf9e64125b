package cmd

import (
	"fmt"
	"os"

	"github.com/sibylsearch/sibyl/internal/config"
	"github.com/sibylsearch/sibyl/internal/logger"
	"github.com/spf13/cobra"
)

var (
	logLevel   string
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "sibyl",
	Short: "sibyl answers questions with streamed, web-grounded evidence",
	Long: `sibyl retrieves web sources for a query, ranks their content by
semantic relevance and streams a model-generated answer together with
images, videos and follow-up questions.

Commands:
  sibyl serve    Run the HTTP event-stream server
  sibyl ask      Answer one query in the terminal`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logger.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logger.SetLevel(level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info",
		"Log level: trace, debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: .sibyl.yaml next to the executable)")
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromPath(configPath)
	}
	return config.Load()
}

func initLogFile(cfg *config.Config) {
	if cfg.Logging.File == "" {
		return
	}
	f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		logger.Warn("[CMD] cannot open log file %s: %v", cfg.Logging.File, err)
		return
	}
	logger.SetOutput(f)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
