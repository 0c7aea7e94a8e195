// Package config loads SpeedReader's configuration from a YAML file,
// environment variables, and defaults, using the teacher's
// file/env/flag-layering scheme (github.com/spf13/viper). Trimmed from
// the teacher's internal/config to the knobs this core actually exposes:
// detector, recognizer, executor, tuner, video, and GPU — the teacher's
// server, batch, orientation/textline/rectification, and barcode
// sections are dropped along with the packages they configured.
package config

// Config is the complete SpeedReader configuration.
type Config struct {
	ModelsDir string `mapstructure:"models_dir" yaml:"models_dir" json:"models_dir"`
	LogLevel  string `mapstructure:"log_level"  yaml:"log_level"  json:"log_level"`
	Verbose   bool   `mapstructure:"verbose"    yaml:"verbose"    json:"verbose"`

	Detector   DetectorConfig   `mapstructure:"detector"   yaml:"detector"   json:"detector"`
	Recognizer RecognizerConfig `mapstructure:"recognizer" yaml:"recognizer" json:"recognizer"`
	Executor   ExecutorConfig   `mapstructure:"executor"   yaml:"executor"   json:"executor"`
	Tuner      TunerConfig      `mapstructure:"tuner"      yaml:"tuner"      json:"tuner"`
	Video      VideoConfig      `mapstructure:"video"      yaml:"video"      json:"video"`
	GPU        GPUConfig        `mapstructure:"gpu"        yaml:"gpu"        json:"gpu"`
}

// DetectorConfig controls the detection stage's postprocess knobs.
type DetectorConfig struct {
	Threshold     float32 `mapstructure:"threshold"      yaml:"threshold"      json:"threshold"`
	DilationRatio float64 `mapstructure:"dilation_ratio" yaml:"dilation_ratio" json:"dilation_ratio"`
	MinPoints     int     `mapstructure:"min_points"     yaml:"min_points"     json:"min_points"`
	UseNMS        bool    `mapstructure:"use_nms"        yaml:"use_nms"        json:"use_nms"`
	NMSThreshold  float64 `mapstructure:"nms_threshold"  yaml:"nms_threshold"  json:"nms_threshold"`
	NumThreads    int     `mapstructure:"num_threads"    yaml:"num_threads"    json:"num_threads"`
}

// RecognizerConfig controls the recognition stage and its dictionary.
type RecognizerConfig struct {
	MinConfidence float64 `mapstructure:"min_confidence" yaml:"min_confidence" json:"min_confidence"`
	NumThreads    int     `mapstructure:"num_threads"    yaml:"num_threads"    json:"num_threads"`
}

// ExecutorConfig controls the managed executor's initial/floor parallelism.
type ExecutorConfig struct {
	InitialParallelism int `mapstructure:"initial_parallelism" yaml:"initial_parallelism" json:"initial_parallelism"`
	MinParallelism     int `mapstructure:"min_parallelism"     yaml:"min_parallelism"     json:"min_parallelism"`
}

// TunerConfig controls the adaptive tuner's hill-climbing parameters.
type TunerConfig struct {
	K            int     `mapstructure:"k"             yaml:"k"             json:"k"`
	Threshold    float64 `mapstructure:"threshold"     yaml:"threshold"     json:"threshold"`
	PollMillis   int     `mapstructure:"poll_millis"   yaml:"poll_millis"   json:"poll_millis"`
}

// VideoConfig controls the subprocess-backed frame source.
type VideoConfig struct {
	Command       string `mapstructure:"command"        yaml:"command"        json:"command"`
	SampleRate    int    `mapstructure:"sample_rate"    yaml:"sample_rate"    json:"sample_rate"`
	QueueCapacity int    `mapstructure:"queue_capacity" yaml:"queue_capacity" json:"queue_capacity"`
}

// GPUConfig controls ONNX Runtime GPU acceleration, shared by the
// detection and recognition engines.
type GPUConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Device  int  `mapstructure:"device"  yaml:"device"  json:"device"`
}
