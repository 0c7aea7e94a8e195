package config

import (
	"fmt"
	"time"

	"github.com/speedreader/speedreader/internal/detection"
	"github.com/speedreader/speedreader/internal/engine"
	"github.com/speedreader/speedreader/internal/models"
	"github.com/speedreader/speedreader/internal/ocrpipeline"
	"github.com/speedreader/speedreader/internal/tuner"
)

const (
	infoLevel = "info"
	debugLevel = "debug"
	warnLevel  = "warn"
)

// DefaultConfig returns a configuration with sensible defaults, mirroring
// the teacher's DefaultConfig shape but trimmed to this core's knobs.
func DefaultConfig() Config {
	det := detection.DefaultConfig()
	tn := tuner.DefaultConfig()
	return Config{
		ModelsDir: models.DefaultModelsDir,
		LogLevel:  infoLevel,
		Verbose:   false,
		Detector: DetectorConfig{
			Threshold:     det.Threshold,
			DilationRatio: det.DilationRatio,
			MinPoints:     det.MinPoints,
			UseNMS:        false,
			NMSThreshold:  0.3,
			NumThreads:    0,
		},
		Recognizer: RecognizerConfig{
			MinConfidence: 0.0,
			NumThreads:    0,
		},
		Executor: ExecutorConfig{
			InitialParallelism: 4,
			MinParallelism:     1,
		},
		Tuner: TunerConfig{
			K:          int(tn.K),
			Threshold:  tn.Threshold,
			PollMillis: int(tn.PollInterval.Milliseconds()),
		},
		Video: VideoConfig{
			SampleRate:    1,
			QueueCapacity: 1,
		},
		GPU: GPUConfig{
			Enabled: false,
			Device:  0,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case infoLevel, debugLevel, warnLevel, "error":
	default:
		return fmt.Errorf("invalid log_level: %s", c.LogLevel)
	}
	if c.Detector.Threshold < 0 || c.Detector.Threshold > 1 {
		return fmt.Errorf("detector.threshold must be in [0,1], got %f", c.Detector.Threshold)
	}
	if c.Detector.DilationRatio < 0 {
		return fmt.Errorf("detector.dilation_ratio must be >= 0, got %f", c.Detector.DilationRatio)
	}
	if c.Detector.MinPoints < 3 {
		return fmt.Errorf("detector.min_points must be >= 3, got %d", c.Detector.MinPoints)
	}
	if c.Executor.InitialParallelism < 1 {
		return fmt.Errorf("executor.initial_parallelism must be >= 1, got %d", c.Executor.InitialParallelism)
	}
	if c.Executor.MinParallelism < 1 {
		return fmt.Errorf("executor.min_parallelism must be >= 1, got %d", c.Executor.MinParallelism)
	}
	if c.Executor.InitialParallelism < c.Executor.MinParallelism {
		return fmt.Errorf("executor.initial_parallelism must be >= executor.min_parallelism")
	}
	if c.Tuner.K < 1 {
		return fmt.Errorf("tuner.k must be >= 1, got %d", c.Tuner.K)
	}
	if c.Tuner.Threshold < 0 {
		return fmt.Errorf("tuner.threshold must be >= 0, got %f", c.Tuner.Threshold)
	}
	if c.Video.SampleRate < 0 {
		return fmt.Errorf("video.sample_rate must be >= 0, got %d", c.Video.SampleRate)
	}
	if c.Video.QueueCapacity < 1 {
		return fmt.Errorf("video.queue_capacity must be >= 1, got %d", c.Video.QueueCapacity)
	}
	return nil
}

// ToDetectionConfig converts to detection.Config.
func (c *Config) ToDetectionConfig() detection.Config {
	return detection.Config{
		Threshold:     c.Detector.Threshold,
		DilationRatio: c.Detector.DilationRatio,
		MinPoints:     c.Detector.MinPoints,
	}
}

// ToEngineConfig converts the shared executor/tuner knobs into an
// engine.Config; callers attach their own *engine.Metrics/Logger.
func (c *Config) ToEngineConfig() engine.Config {
	return engine.Config{
		InitialParallelism: c.Executor.InitialParallelism,
		MinParallelism:     c.Executor.MinParallelism,
		Tuner: tuner.Config{
			K:              float64(c.Tuner.K),
			Threshold:      c.Tuner.Threshold,
			PollInterval:   time.Duration(c.Tuner.PollMillis) * time.Millisecond,
			MinParallelism: c.Executor.MinParallelism,
		},
	}
}

// ToPipelineConfig converts to ocrpipeline.Config.
func (c *Config) ToPipelineConfig() ocrpipeline.Config {
	return ocrpipeline.Config{
		MaxParallelism: c.Executor.InitialParallelism,
		MaxBatchSize:   1,
	}
}
