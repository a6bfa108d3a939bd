package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/wichananm65/grocery-store/internal/config"
)

func TestNew_LevelFromConfig(t *testing.T) {
	log, err := New(config.LoggerConfig{Mode: "production", Level: "warn"})
	require.NoError(t, err)
	require.False(t, log.Core().Enabled(zapcore.InfoLevel))
	require.True(t, log.Core().Enabled(zapcore.WarnLevel))
}

func TestNew_FileSink(t *testing.T) {
	log, err := New(config.LoggerConfig{
		Mode:       "development",
		Level:      "debug",
		FileEnable: true,
		Filename:   filepath.Join(t.TempDir(), "grocery.log"),
	})
	require.NoError(t, err)
	require.True(t, log.Core().Enabled(zapcore.DebugLevel))
	log.Info("written to both sinks")
}
