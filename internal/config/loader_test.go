package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoadWithFileMissingReturnsError(t *testing.T) {
	l := &Loader{v: viper.New()}
	_, err := l.LoadWithFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadWithFileAppliesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "speedreader.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\ndetector:\n  min_points: 5\n"), 0o600))

	l := &Loader{v: viper.New()}
	cfg, err := l.LoadWithFile(path)
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, 5, cfg.Detector.MinPoints)
}

func TestLoadWithEmptyPathFallsBackToDefaults(t *testing.T) {
	l := &Loader{v: viper.New()}
	cfg, err := l.LoadWithFile("")
	require.NoError(t, err)
	require.Equal(t, DefaultConfig().LogLevel, cfg.LogLevel)
}
