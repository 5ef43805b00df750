package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/docquiz/internal/config"
	"github.com/abhisek/docquiz/internal/logger"
	"github.com/abhisek/docquiz/internal/store"
)

// Set by the root command before any subcommand runs.
var (
	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "docquiz",
	Short: "Generate quiz questions from documents",
	Long: "docquiz extracts text from PDF, DOCX and TXT files and asks a language model\n" +
		"for short answer, long answer and multiple choice questions about it.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initRuntime(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite request log (overrides DOCQUIZ_DB env var)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}

// initRuntime loads configuration and builds the logger. Flags win over
// the environment and the config file.
func initRuntime(cmd *cobra.Command) error {
	configFile, _ := cmd.Flags().GetString("config")
	loaded, err := config.Load(config.Options{ConfigFile: configFile})
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		loaded.Log.Level = lvl
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		loaded.DB = p
	}

	l, err := logger.New(logger.Config{Level: loaded.Log.Level, Env: loaded.Log.Env})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	cfg = loaded
	log = l
	return nil
}

// resolveDBPath returns the request log path: --db or DOCQUIZ_DB when set,
// then the default XDG path.
func resolveDBPath() (string, error) {
	if cfg.DB != "" {
		return cfg.DB, store.EnsureDir(cfg.DB)
	}
	return store.DefaultDBPath()
}

// openRequestLog opens the request log when one is configured. The returned
// repo is nil when logging to SQLite is disabled.
func openRequestLog() (store.EventRepo, func(), error) {
	if cfg.DB == "" {
		return nil, func() {}, nil
	}
	if err := store.EnsureDir(cfg.DB); err != nil {
		return nil, nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return s.EventRepo(), func() { _ = s.Close() }, nil
}
