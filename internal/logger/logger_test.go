package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInitialize_ValidLevels(t *testing.T) {
	// Save original Log and restore after test
	originalLog := Log
	defer func() { Log = originalLog }()

	levels := []string{"debug", "info", "warn", "error", "dpanic", "panic", "fatal"}

	for _, lvl := range levels {
		t.Run(lvl, func(t *testing.T) {
			err := Initialize(lvl)
			assert.NoError(t, err, "expected no error for level %s", lvl)
			assert.NotNil(t, Log, "Log should be initialized")
			assert.IsType(t, &zap.SugaredLogger{}, Log, "Log should be a SugaredLogger")

			// Ensure logging works without panic
			assert.NotPanics(t, func() {
				Log.Infow("test log", "level", lvl)
			})
		})
	}
}

func TestInitialize_LevelGate(t *testing.T) {
	// Save original Log and restore after test
	originalLog := Log
	defer func() { Log = originalLog }()

	err := Initialize("error")
	assert.NoError(t, err)

	core := Log.Desugar().Core()
	assert.False(t, core.Enabled(zapcore.DebugLevel), "debug should be filtered at error level")
	assert.False(t, core.Enabled(zapcore.InfoLevel), "info should be filtered at error level")
	assert.True(t, core.Enabled(zapcore.ErrorLevel))

	err = Initialize("debug")
	assert.NoError(t, err)
	assert.True(t, Log.Desugar().Core().Enabled(zapcore.DebugLevel))
}

func TestInitialize_InvalidLevel(t *testing.T) {
	// Save original Log and restore after test
	originalLog := Log
	defer func() { Log = originalLog }()

	err := Initialize("not-a-level")
	assert.Error(t, err, "expected error for invalid log level")
}

func TestLog_NopBeforeInitialize(t *testing.T) {
	// Save original Log and restore after test
	originalLog := Log
	defer func() { Log = originalLog }()

	// By default, Log is zap.NewNop().Sugar()
	assert.NotNil(t, Log)
	assert.IsType(t, &zap.SugaredLogger{}, Log)

	// Should not panic even if called
	assert.NotPanics(t, func() {
		Log.Infow("nop logger test")
	})
}
