package logging

import (
	"os"
	"path/filepath"
	"testing"

	"adpulse/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParsesLevel(t *testing.T) {
	logger, closer, err := New(config.LoggingConfig{Level: "debug"}, config.AppConfig{Name: "adpulse"})
	require.NoError(t, err)
	assert.Nil(t, closer)
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
}

func TestNewDefaultsToInfoOnUnknownLevel(t *testing.T) {
	logger, _, err := New(config.LoggingConfig{Level: "loudest"}, config.AppConfig{})
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestNewFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	logger, closer, err := New(config.LoggingConfig{Output: "file", FilePath: path}, config.AppConfig{Name: "adpulse"})
	require.NoError(t, err)
	require.NotNil(t, closer)
	defer closer.Close()

	logger.Info().Msg("запись в файл")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "запись в файл")
	assert.Contains(t, string(data), `"app":"adpulse"`)
}

func TestNewFileOutputRequiresPath(t *testing.T) {
	_, _, err := New(config.LoggingConfig{Output: "file"}, config.AppConfig{})
	assert.Error(t, err)
}

func TestComponentTagsChildLogger(t *testing.T) {
	logger, _, err := New(config.LoggingConfig{}, config.AppConfig{})
	require.NoError(t, err)

	child := Component(logger, "scheduler")
	assert.Equal(t, logger.GetLevel(), child.GetLevel())
}
