package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		checkFunc func(t *testing.T, logger *Logger, output *bytes.Buffer)
	}{
		{
			name:   "json format with debug level",
			config: Config{Level: "debug", Format: "json", TimeFormat: time.RFC3339},
			checkFunc: func(t *testing.T, logger *Logger, output *bytes.Buffer) {
				logger.Debug("Scan recorded", slog.String("checkpoint_id", "cp-1"))

				var entry map[string]interface{}
				require.NoError(t, json.Unmarshal(output.Bytes(), &entry))

				assert.Equal(t, "DEBUG", entry["level"])
				assert.Equal(t, "Scan recorded", entry["msg"])
				assert.Equal(t, "cp-1", entry["checkpoint_id"])
				assert.Contains(t, entry, "time")
			},
		},
		{
			name:   "warn level filters info",
			config: Config{Level: "warn", Format: "json"},
			checkFunc: func(t *testing.T, logger *Logger, output *bytes.Buffer) {
				logger.Info("Job created")
				logger.Warn("Stock below minimum", slog.String("item", "Fipronil"))

				lines := strings.Split(strings.TrimSpace(output.String()), "\n")
				require.Len(t, lines, 1)

				var entry map[string]interface{}
				require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
				assert.Equal(t, "WARN", entry["level"])
				assert.Equal(t, "Fipronil", entry["item"])
			},
		},
		{
			name:   "service attribute attached",
			config: Config{Level: "info", Format: "json", Service: "jobcard-api"},
			checkFunc: func(t *testing.T, logger *Logger, output *bytes.Buffer) {
				logger.Info("Starting")

				var entry map[string]interface{}
				require.NoError(t, json.Unmarshal(output.Bytes(), &entry))
				assert.Equal(t, "jobcard-api", entry["service"])
			},
		},
		{
			name:   "console format",
			config: Config{Level: "info", Format: "console", TimeFormat: time.RFC3339},
			checkFunc: func(t *testing.T, logger *Logger, output *bytes.Buffer) {
				logger.Info("console test")

				// tint prints "INF" rather than "INFO"
				assert.Contains(t, output.String(), "INF")
				assert.Contains(t, output.String(), "console test")
			},
		},
		{
			name:   "source location enabled",
			config: Config{Level: "info", Format: "json", EnableSource: true},
			checkFunc: func(t *testing.T, logger *Logger, output *bytes.Buffer) {
				logger.Info("message with source")

				var entry map[string]interface{}
				require.NoError(t, json.Unmarshal(output.Bytes(), &entry))
				source, ok := entry["source"].(map[string]interface{})
				require.True(t, ok)
				assert.Contains(t, source, "file")
				assert.Contains(t, source, "line")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := &bytes.Buffer{}
			cfg := tt.config
			cfg.writer = output

			logger, err := New(&cfg)
			require.NoError(t, err)
			require.NotNil(t, logger)

			tt.checkFunc(t, logger, output)
		})
	}
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.log")

	logger, err := New(&Config{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)

	logger.Info("Written to file", slog.String("job_id", "job-1"))
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"job_id":"job-1"`)
}

func TestNew_FileOutputUnwritable(t *testing.T) {
	_, err := New(&Config{Output: filepath.Join(t.TempDir(), "missing", "dir", "api.log")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open log file")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"DEBUG", slog.LevelDebug},
		{" Error ", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.level))
		})
	}
}

func TestLogger_Component(t *testing.T) {
	output := &bytes.Buffer{}
	logger, err := New(&Config{Level: "info", Format: "json", writer: output})
	require.NoError(t, err)

	logger.Component("scan").Info("Checkpoint matched")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(output.Bytes(), &entry))
	assert.Equal(t, "scan", entry["component"])
}

func TestLogger_WithGroup(t *testing.T) {
	output := &bytes.Buffer{}
	logger, err := New(&Config{Level: "info", Format: "json", writer: output})
	require.NoError(t, err)

	logger.WithGroup("quote").Info("Recalculated", slog.Float64("total", 230))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(output.Bytes(), &entry))
	group, ok := entry["quote"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(230), group["total"])
}

func TestNewDefault(t *testing.T) {
	logger := NewDefault()
	require.NotNil(t, logger)
	assert.NotNil(t, logger.Logger)
	assert.NoError(t, logger.Close())
}
