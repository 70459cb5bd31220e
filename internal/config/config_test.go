package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ProviderBedrock, cfg.Provider)
	assert.Equal(t, "data_warehouse", cfg.DefaultDatabase)
	assert.Equal(t, "primary", cfg.WorkGroup)
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.Equal(t, 60*time.Second, cfg.QueryTimeout)
	assert.Equal(t, int32(100), cfg.MaxResultRows)
	assert.Equal(t, 10, cfg.MaxSchemaTables)
	assert.Equal(t, "/aws-glue/jobs/error", cfg.ErrorLogGroup)
	assert.Equal(t, int32(20), cfg.MaxLogLines)
	assert.Equal(t, int32(3), cfg.MaxRunHistory)
	assert.Equal(t, "AgenticDE/SelfHealing", cfg.MetricNamespace)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DATAHEAL_DATABASE", "staging")
	t.Setenv("DATAHEAL_QUERY_TIMEOUT", "30s")
	t.Setenv("DATAHEAL_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.DefaultDatabase)
	assert.Equal(t, 30*time.Second, cfg.QueryTimeout)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoadFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataheal.yaml")
	content := `
database: analytics
agent_id: AGENT123
agent_timeout: 90s
log_level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "analytics", cfg.DefaultDatabase)
	assert.Equal(t, "AGENT123", cfg.AgentID)
	assert.Equal(t, 90*time.Second, cfg.AgentTimeout)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	// Untouched fields keep their defaults.
	assert.Equal(t, "primary", cfg.WorkGroup)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFileBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{{nope"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"Warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLogLevel(tt.in), tt.in)
	}
}
