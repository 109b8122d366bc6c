package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitize(t *testing.T) {
	assert.Equal(t, "generate_chart_png", sanitize("generate chart.png"))
	assert.Equal(t, "run", sanitize("///"))
	assert.Len(t, sanitize(string(bytes.Repeat([]byte("a"), 100))), 60)
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, level)

	level, err = ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, level)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestZapAdapter_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewFromZap(zap.New(core))

	log.WithField("run_id", "abc").Named("orchestrator").Info("Iteration finished", "iteration", 2)
	log.WithFields(map[string]any{"provider": "groq", "model": "llama"}).Warn("Slow call")

	entries := logs.All()
	require.Len(t, entries, 2)

	first := entries[0]
	assert.Equal(t, "Iteration finished", first.Message)
	assert.Equal(t, "orchestrator", first.LoggerName)
	assert.Equal(t, "abc", first.ContextMap()["run_id"])
	assert.EqualValues(t, 2, first.ContextMap()["iteration"])

	second := entries[1]
	assert.Equal(t, zapcore.WarnLevel, second.Level)
	assert.Equal(t, "groq", second.ContextMap()["provider"])
}

func TestNewZapLogger_WritesFile(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer

	log, err := NewZapLogger(Config{Level: "info", Dir: dir, RunName: "generate", Console: &console})
	require.NoError(t, err)

	log.Debug("hidden on console")
	log.Info("visible", "key", "value")
	require.NoError(t, log.Close())

	assert.Contains(t, console.String(), "visible")
	assert.NotContains(t, console.String(), "hidden on console")

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Contains(t, files[0].Name(), "_generate.log")

	data, err := os.ReadFile(dir + "/" + files[0].Name())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"key":"value"`)
	assert.Contains(t, string(data), "hidden on console")
}
