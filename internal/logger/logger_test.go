package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestOptionsConfig(t *testing.T) {
	cfg := FromFlags(false, false).Config()
	assert.Equal(t, "console", cfg.Encoding)
	assert.Equal(t, zapcore.InfoLevel, cfg.Level.Level())
	assert.Equal(t, []string{"stdout"}, cfg.OutputPaths)
	assert.Equal(t, AppName, cfg.InitialFields[FieldApp])

	cfg = FromFlags(true, true).Config()
	assert.Equal(t, "json", cfg.Encoding)
	assert.Equal(t, zapcore.DebugLevel, cfg.Level.Level())
}

func TestNewWritesJSONWithAppField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	log, err := New(Options{JSON: true, Output: path})
	require.NoError(t, err)

	log.Info("ranking done")
	log.Debug("hidden")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "ranking done", entry["msg"])
	assert.Equal(t, AppName, entry[FieldApp])
	assert.Equal(t, "info", entry["level"])
}
