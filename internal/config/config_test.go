package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "chatty"
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsOutOfRangeThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Detector.Threshold = 1.5
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsInitialBelowFloor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Executor.MinParallelism = 4
	cfg.Executor.InitialParallelism = 1
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsZeroQueueCapacity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Video.QueueCapacity = 0
	require.Error(t, cfg.Validate())
}

func TestToEngineConfigCarriesExecutorAndTunerKnobs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Executor.InitialParallelism = 8
	ec := cfg.ToEngineConfig()
	require.Equal(t, 8, ec.InitialParallelism)
	require.Equal(t, float64(cfg.Tuner.K), ec.Tuner.K)
}

func TestToDetectionConfigCarriesDetectorKnobs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Detector.MinPoints = 6
	dc := cfg.ToDetectionConfig()
	require.Equal(t, 6, dc.MinPoints)
}
