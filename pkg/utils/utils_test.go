package utils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_FileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "portal.log")

	logger, err := NewLogger(LoggerConfig{Level: "warn", OutputPath: path, Format: "json"})
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", zap.String("model", "VENDOR_MASTER"))
	require.NoError(t, logger.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "VENDOR_MASTER", entry["model"])
	assert.Equal(t, ServiceName, entry["service"])
	assert.Contains(t, entry, "timestamp")
}

func TestNewLogger_UnknownLevelDefaultsToInfo(t *testing.T) {
	logger, err := NewLogger(LoggerConfig{Level: "loud", OutputPath: "stderr", Format: "console"})
	require.NoError(t, err)

	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewLogger_ServiceField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal.log")
	cfg := DefaultLoggerConfig()
	cfg.OutputPath = path
	cfg.Service = "rfq-portal-test"

	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	logger.Info("started")
	require.NoError(t, logger.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &entry))
	assert.Equal(t, "rfq-portal-test", entry["service"])
	assert.Equal(t, "info", entry["level"])
}

func TestDefaultLoggerConfig(t *testing.T) {
	cfg := DefaultLoggerConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "stdout", cfg.OutputPath)
	assert.Equal(t, FormatJSON, cfg.Format)
}

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"SELECTED_VENDOR", false},
		{"_private", false},
		{"VENDOR2", false},
		{"", true},
		{"2VENDOR", true},
		{"VENDOR ID", true},
		{"VENDOR';--", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentifier(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "Acme Metals", SanitizeString("Acme\x00 Metals\x7f"))
}
