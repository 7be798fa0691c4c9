package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.log")

	log, closer, err := New("info", "json", path)
	require.NoError(t, err)

	log.Debug().Msg("hidden")
	log.Info().Str("module", "vault").Msg("visible")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), `"message":"visible"`)
	assert.Contains(t, string(data), `"module":"vault"`)
}

func TestNewTextToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.log")

	log, closer, err := New("WARN", "text", path)
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, log.GetLevel())

	log.Warn().Msg("vault file corrupt")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "WRN")
	assert.Contains(t, string(data), "vault file corrupt")
}

func TestNewStderr(t *testing.T) {
	log, closer, err := New("", "", "")
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, log.GetLevel())
	assert.NoError(t, closer.Close())
}

func TestNewRejectsBadInput(t *testing.T) {
	_, _, err := New("loud", "text", "")
	assert.Error(t, err)

	_, _, err = New("info", "xml", "")
	assert.Error(t, err)

	_, _, err = New("info", "text", filepath.Join(t.TempDir(), "missing", "dir", "wallet.log"))
	assert.Error(t, err)
}
