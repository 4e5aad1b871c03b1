package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]string{
		"":        "info",
		"INFO":    "info",
		"debug":   "debug",
		"warning": "warn",
		"error":   "error",
	}
	for in, want := range cases {
		lvl, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, lvl.String(), in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNew_ConsoleRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := newWithConsole(Config{Level: "warn"}, &buf)
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("shown", "plan_id", "p-1")
	log.Sync()

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "p-1")
}

func TestNew_WritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studyplan.log")
	var console bytes.Buffer
	log, err := newWithConsole(Config{Level: "debug", File: path}, &console)
	require.NoError(t, err)

	log.With("component", "test").Debug("to file", "count", 3)
	log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	require.NotEmpty(t, line)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &rec))
	assert.Equal(t, "to file", rec["msg"])
	assert.Equal(t, "DEBUG", rec["level"])
	assert.Equal(t, "test", rec["component"])
	assert.EqualValues(t, 3, rec["count"])
}

func TestFromZap_KeyValues(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := FromZap(zap.New(core)).With("task_id", "t-1")

	log.Error("build failed", "error", "boom")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "build failed", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "t-1", fields["task_id"])
	assert.Equal(t, "boom", fields["error"])
}

func TestNewNop(t *testing.T) {
	assert.NotPanics(t, func() {
		l := NewNop()
		l.Info("nothing")
		l.With("a", 1).Error("still nothing")
		l.Sync()
	})
}
