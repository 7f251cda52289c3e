package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := newZapLogger(zap.New(core))

	logger.WithModule("client").WithError(errors.New("boom")).Warn("Health check failed", "attempt", 2)
	logger.With("id", 7).Debug("Toggled")

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)

	first := entries[0].ContextMap()
	assert.Equal(t, "Health check failed", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "client", first["module"])
	assert.Equal(t, "boom", first["error"])
	assert.EqualValues(t, 2, first["attempt"])

	assert.EqualValues(t, 7, entries[1].ContextMap()["id"])
}

func TestNewLogger_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todoctl.log")

	logger := newLogger(path, false)
	newZapLogger(logger).Info("Loaded todos", "count", 3)
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"Loaded todos"`)
	assert.Contains(t, string(data), `"count":3`)
}
