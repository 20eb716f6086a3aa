package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/phrazzld/taskhub-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureOutputs redirects console and JSON output to buffers and restores
// the previous writers and default logger when the test ends.
func captureOutputs(t *testing.T) (console, jsonBuf *bytes.Buffer) {
	t.Helper()

	console, jsonBuf = &bytes.Buffer{}, &bytes.Buffer{}
	prevConsole, prevJSON, prevDefault := consoleOutput, jsonOutput, slog.Default()
	consoleOutput, jsonOutput = console, jsonBuf

	t.Cleanup(func() {
		consoleOutput, jsonOutput = prevConsole, prevJSON
		slog.SetDefault(prevDefault)
	})
	return console, jsonBuf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
		ok    bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"warn", slog.LevelWarn, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"trace", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
	}

	for _, tc := range tests {
		level, ok := ParseLevel(tc.input)
		assert.Equal(t, tc.want, level, "input %q", tc.input)
		assert.Equal(t, tc.ok, ok, "input %q", tc.input)
	}
}

func TestSetupJSON(t *testing.T) {
	_, jsonBuf := captureOutputs(t)

	log, closeFn, err := Setup(config.LogConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)
	defer func() { require.NoError(t, closeFn()) }()

	log.Info("hidden")
	log.Warn("visible", "resource", "tasks")

	lines := strings.Split(strings.TrimSpace(jsonBuf.String()), "\n")
	require.Len(t, lines, 1, "info record should be filtered at warn level")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "visible", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "tasks", entry["resource"])

	assert.Same(t, log, slog.Default(), "Setup should install the logger as default")
}

func TestSetupText(t *testing.T) {
	console, jsonBuf := captureOutputs(t)

	log, _, err := Setup(config.LogConfig{Level: "debug", Format: "text"})
	require.NoError(t, err)

	log.Debug("list items", "resource", "clients")

	assert.Contains(t, console.String(), "list items")
	assert.Contains(t, console.String(), "clients")
	assert.Empty(t, jsonBuf.String())
}

func TestSetupInvalidLevelFallsBackToInfo(t *testing.T) {
	console, jsonBuf := captureOutputs(t)

	log, _, err := Setup(config.LogConfig{Level: "loud", Format: "json"})
	require.NoError(t, err)

	assert.Contains(t, console.String(), "invalid log level configured")
	log.Debug("hidden")
	log.Info("shown")
	assert.NotContains(t, jsonBuf.String(), "hidden")
	assert.Contains(t, jsonBuf.String(), "shown")
}

func TestSetupWithFile(t *testing.T) {
	_, jsonBuf := captureOutputs(t)
	path := filepath.Join(t.TempDir(), "logs", "taskhub.log")

	log, closeFn, err := Setup(config.LogConfig{Level: "info", Format: "json", File: path})
	require.NoError(t, err)

	log.With("component", "test").Error("disk and stdout")
	log.Debug("below level")
	log.WithGroup("req").Warn("grouped", "id", 2)
	require.NoError(t, closeFn())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "disk and stdout")
	assert.Contains(t, string(content), `"component":"test"`)
	assert.Contains(t, string(content), `"req":{"id":2}`)
	assert.NotContains(t, string(content), "below level")
	assert.Contains(t, jsonBuf.String(), "disk and stdout")
	assert.Contains(t, jsonBuf.String(), `"req":{"id":2}`)
	assert.NotContains(t, jsonBuf.String(), "below level")
}

func TestSetupWithUnwritableFile(t *testing.T) {
	captureOutputs(t)
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	_, _, err := Setup(config.LogConfig{Level: "info", Format: "json", File: filepath.Join(blocker, "x.log")})
	assert.Error(t, err)
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := WithLogger(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))

	fallback := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	assert.Same(t, fallback, FromContextOrDefault(context.Background(), fallback))
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}
