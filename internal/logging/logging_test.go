package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("chatty"))
}

func TestBuild_JSONToTerminal(t *testing.T) {
	var buf bytes.Buffer
	log, err := build(Config{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("processed", zap.String("file", "a.png"))
	require.NoError(t, log.Sync())

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"processed"`)
	assert.Contains(t, buf.String(), `"file":"a.png"`)
}

func TestBuild_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "jpegr.log")
	var term bytes.Buffer
	log, err := build(Config{Level: "debug", File: path, MaxSize: 1}, &term)
	require.NoError(t, err)

	log.Debug("to both")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to both")
	assert.Contains(t, term.String(), "to both")
}
