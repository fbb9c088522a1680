package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/fitness-inventory/internal/config"
)

func TestNewWithOutput_JSONFormat(t *testing.T) {
	cfg := &config.Config{Logging: config.LoggingConfig{Level: "warn", Format: "json"}}
	var buf bytes.Buffer

	log := NewWithOutput(cfg, &buf)
	log.Info("dropped")
	log.WithField("product_id", 7).Warn("kept")

	assert.Equal(t, logrus.WarnLevel, log.GetLevel())

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.EqualValues(t, 7, entry["product_id"])
}

func TestNewWithOutput_InvalidLevelFallsBackToInfo(t *testing.T) {
	cfg := &config.Config{Logging: config.LoggingConfig{Level: "loud", Format: "text"}}

	log := NewWithOutput(cfg, &bytes.Buffer{})

	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	_, isText := log.Formatter.(*logrus.TextFormatter)
	assert.True(t, isText)
}

func TestFileWriter(t *testing.T) {
	t.Run("disabled without a file", func(t *testing.T) {
		assert.Nil(t, FileWriter(&config.Config{}))
	})

	t.Run("writes to the configured file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "inventory.log")
		cfg := &config.Config{Logging: config.LoggingConfig{
			Level: "info", Format: "json", File: path, FileMaxSizeMB: 1,
		}}

		w := FileWriter(cfg)
		require.NotNil(t, w)
		log := NewWithOutput(cfg, w)
		log.Info("stock adjusted")
		require.NoError(t, w.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "stock adjusted")
	})
}
