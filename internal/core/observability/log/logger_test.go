package log

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_FieldsReachCore(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewWithCore(core).With(String("component", "test"))

	logger.Info("player joined",
		Int("players", 3),
		Float32("x", 1.5),
		Bool("first", false),
		Error(errors.New("boom")))

	entries := logs.FilterMessage("player joined").All()
	require.Len(t, entries, 1)

	ctx := entries[0].ContextMap()
	assert.Equal(t, "test", ctx["component"])
	assert.Equal(t, int64(3), ctx["players"])
	assert.Equal(t, false, ctx["first"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestLogger_LogDispatchesOnLevel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewWithCore(core)

	logger.Log(LevelWarn, "slow peer")
	logger.Log(LevelDebug, "tick")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
	assert.Equal(t, zapcore.DebugLevel, logs.All()[1].Level)
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"":        LevelInfo,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestLogger_SetLevel(t *testing.T) {
	logger := New(LevelInfo)
	assert.Equal(t, LevelInfo, logger.GetLevel())

	logger.SetLevel(LevelDebug)
	assert.Equal(t, LevelDebug, logger.GetLevel())

	derived := logger.With(String("k", "v"))
	assert.Equal(t, LevelDebug, derived.GetLevel())
}

func TestNewWithConfig_FileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")

	cfg := DefaultConfig()
	cfg.File = path
	logger, err := NewWithConfig(cfg)
	require.NoError(t, err)

	logger.Info("written to file", String("session_id", "abc"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
	assert.Contains(t, string(data), `"session_id":"abc"`)
}

func TestNewWithConfig_UnknownEncoding(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Encoding = "xml"
	_, err := NewWithConfig(cfg)
	assert.Error(t, err)
}
