package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLoggerWithWriters(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)

	logger.Info("query complete", "rows", 3)

	assert.Contains(t, stderr.String(), "query complete")
	assert.Contains(t, stderr.String(), "rows=3")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(file.Bytes(), &entry))
	assert.Equal(t, "query complete", entry["msg"])
	assert.Equal(t, float64(3), entry["rows"])
}

func TestSetupLoggerWithWritersLevelFilter(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelWarn)

	logger.Info("suppressed")
	logger.Warn("kept")

	assert.NotContains(t, stderr.String(), "suppressed")
	assert.Contains(t, stderr.String(), "kept")
	assert.NotContains(t, file.String(), "suppressed")
	assert.Contains(t, file.String(), "kept")
}
