// Package cmd provides the speedreader command line interface,
// grounded on the teacher's cmd/ocr/cmd/root.go: a cobra root command
// carrying persistent flags bound into viper, with a single read
// subcommand replacing the teacher's image/pdf/serve/batch surface.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/speedreader/speedreader/internal/config"
	"github.com/speedreader/speedreader/internal/models"
	"github.com/speedreader/speedreader/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configLoader *config.Loader
	cfgFile      string
)

var rootCmd = &cobra.Command{
	Use:   "speedreader",
	Short: "Streaming OCR detection and recognition pipeline",
	Long: `speedreader runs a DBNet-class text detector and an SVTR-class CTC
recognizer over images, adapting parallelism to observed throughput.

Examples:
  speedreader read photo.jpg
  speedreader read *.png --max-parallelism 8`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			ver, commit, date := version.Info()
			fmt.Fprintf(cmd.OutOrStdout(), "speedreader %s (commit: %s, built: %s)\n", ver, commit, date)
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the root command. Called by main.main once.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetRootCommand returns the root command, for tests that want to drive
// it without os.Exit.
func GetRootCommand() *cobra.Command {
	return rootCmd
}

// setupLogging configures the process-wide slog default from cfg,
// mirroring the teacher's setupLogging.
func setupLogging(cfg *config.Config) {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	} else {
		switch cfg.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is search in ., $HOME, $HOME/.config/speedreader, /etc/speedreader)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	defaultModelsDir := models.DefaultModelsDir
	if envDir := os.Getenv(models.EnvModelsDir); envDir != "" {
		defaultModelsDir = envDir
	}
	rootCmd.PersistentFlags().String("models-dir", defaultModelsDir,
		"directory containing the detector/recognizer ONNX models and dictionary file")
	rootCmd.PersistentFlags().Bool("mock", false,
		"use an in-process mock kernel instead of loading ONNX models (for smoke testing)")
	rootCmd.Flags().Bool("version", false, "print version information and exit")

	if err := viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")); err != nil {
		panic(fmt.Sprintf("failed to bind flag: %v", err))
	}
	if err := viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		panic(fmt.Sprintf("failed to bind flag: %v", err))
	}
	if err := viper.BindPFlag("models_dir", rootCmd.PersistentFlags().Lookup("models-dir")); err != nil {
		panic(fmt.Sprintf("failed to bind flag: %v", err))
	}

	rootCmd.AddCommand(readCmd)
}

func initConfig() {
	configLoader = config.NewLoader()
}

// GetConfigLoader returns the process-wide configuration loader.
func GetConfigLoader() *config.Loader {
	if configLoader == nil {
		configLoader = config.NewLoader()
	}
	return configLoader
}

// GetConfig loads, validates, and returns the merged configuration
// (flags, config file, environment, defaults), then wires up logging.
// Unlike the teacher's two-phase GetConfig, this core's Loader always
// validates, so there is no unvalidated-then-reload dance: flag binding
// in init() runs before cobra parses args, so by the time a RunE calls
// this the viper instance already reflects the merged flags.
func GetConfig() (*config.Config, error) {
	loader := GetConfigLoader()
	var cfg *config.Config
	var err error
	if cfgFile != "" {
		cfg, err = loader.LoadWithFile(cfgFile)
	} else {
		cfg, err = loader.Load()
	}
	if err != nil {
		return nil, err
	}
	setupLogging(cfg)
	return cfg, nil
}
