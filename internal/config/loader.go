package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "speedreader"
	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "SPEEDREADER"
)

// Loader handles loading configuration from files, environment
// variables, and flags, grounded on the teacher's internal/config/loader.go.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader backed by viper's global
// instance, so flag bindings set up elsewhere keep working.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// Load loads configuration from files, environment variables, and
// defaults, validating the result.
func (l *Loader) Load() (*Config, error) {
	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("yaml")
	l.addConfigPaths()
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// LoadWithFile loads configuration from a specific file path.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	if configFile == "" {
		return l.Load()
	}
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configFile)
	}

	l.v.SetConfigFile(configFile)
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// GetViper returns the underlying viper instance, for cobra flag binding.
func (l *Loader) GetViper() *viper.Viper { return l.v }

func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(home)
		l.v.AddConfigPath(filepath.Join(home, ".config", "speedreader"))
	}
	l.v.AddConfigPath("/etc/speedreader")
}

func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

func (l *Loader) setDefaults() {
	d := DefaultConfig()

	l.v.SetDefault("models_dir", d.ModelsDir)
	l.v.SetDefault("log_level", d.LogLevel)
	l.v.SetDefault("verbose", d.Verbose)

	l.v.SetDefault("detector.threshold", d.Detector.Threshold)
	l.v.SetDefault("detector.dilation_ratio", d.Detector.DilationRatio)
	l.v.SetDefault("detector.min_points", d.Detector.MinPoints)
	l.v.SetDefault("detector.use_nms", d.Detector.UseNMS)
	l.v.SetDefault("detector.nms_threshold", d.Detector.NMSThreshold)
	l.v.SetDefault("detector.num_threads", d.Detector.NumThreads)

	l.v.SetDefault("recognizer.min_confidence", d.Recognizer.MinConfidence)
	l.v.SetDefault("recognizer.num_threads", d.Recognizer.NumThreads)

	l.v.SetDefault("executor.initial_parallelism", d.Executor.InitialParallelism)
	l.v.SetDefault("executor.min_parallelism", d.Executor.MinParallelism)

	l.v.SetDefault("tuner.k", d.Tuner.K)
	l.v.SetDefault("tuner.threshold", d.Tuner.Threshold)
	l.v.SetDefault("tuner.poll_millis", d.Tuner.PollMillis)

	l.v.SetDefault("video.command", d.Video.Command)
	l.v.SetDefault("video.sample_rate", d.Video.SampleRate)
	l.v.SetDefault("video.queue_capacity", d.Video.QueueCapacity)

	l.v.SetDefault("gpu.enabled", d.GPU.Enabled)
	l.v.SetDefault("gpu.device", d.GPU.Device)
}
