package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapWrapper_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).WithFields(map[string]interface{}{"task": "credit"})

	log.Warn("oracle failed", map[string]interface{}{
		"error":   errors.New("connection refused"),
		"attempt": 2,
	})

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		ctx := entries[0].ContextMap()
		assert.Equal(t, "oracle failed", entries[0].Message)
		assert.Equal(t, "credit", ctx["task"])
		assert.Equal(t, "connection refused", ctx["error"])
		assert.EqualValues(t, 2, ctx["attempt"])
	}
}

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level   string
		enabled zapcore.Level
		blocked zapcore.Level
	}{
		{level: "debug", enabled: zapcore.DebugLevel, blocked: zapcore.DebugLevel - 1},
		{level: "info", enabled: zapcore.InfoLevel, blocked: zapcore.DebugLevel},
		{level: "warn", enabled: zapcore.WarnLevel, blocked: zapcore.InfoLevel},
		{level: "error", enabled: zapcore.ErrorLevel, blocked: zapcore.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l := New(tt.level, "json", "stderr")
			assert.True(t, l.Core().Enabled(tt.enabled))
			assert.False(t, l.Core().Enabled(tt.blocked))
		})
	}
}

func TestNoOpAndTestLoggers(t *testing.T) {
	NewNoOpLogger().With(map[string]interface{}{"a": 1}).Info("dropped", nil)
	NewTestLogger(t).WithError(errors.New("boom")).Error("visible in test output", nil)
}
