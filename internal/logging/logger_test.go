package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"feedviz/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_FileOutputWithCategories(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "feedviz.log")

	logger, err := New(config.LoggingConfig{Level: "info", Format: "json", File: logPath}, false)
	require.NoError(t, err)

	Get(logger, CategoryClassify).Info("column profiled")
	Get(logger, CategoryCompose).Debug("hidden at info level")
	_ = logger.Sync()

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, `"logger":"classify"`)
	assert.Contains(t, out, `"run_id":`)
	assert.Contains(t, out, "column profiled")
	assert.NotContains(t, out, "hidden at info level")
}

func TestNew_VerboseForcesDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "verbose.log")

	logger, err := New(config.LoggingConfig{Level: "error", Format: "console", File: logPath}, true)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(config.LoggingConfig{Level: "loud", Format: "json"}, false)
	assert.Error(t, err)
}

func TestGet_NilParent(t *testing.T) {
	l := Get(nil, CategoryOutput)
	require.NotNil(t, l)
	l.Info("goes nowhere")
}

func TestNewRunID(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	assert.Len(t, a, 8)
	assert.NotEqual(t, a, b)
	assert.False(t, strings.Contains(a, "-"))
}
