package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		" INFO ":  zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"trace":   zerolog.TraceLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for input, want := range tests {
		assert.Equal(t, want, parseLogLevel(input), "input %q", input)
	}
}

func TestNewWritesJSONAtConfiguredLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	var buf bytes.Buffer

	log, err := New(Options{Level: "warn", Output: &buf})
	require.NoError(t, err)

	log.Info().Msg("hidden")
	log.Warn().Str("provider", "google").Msg("visible")

	line := buf.String()
	assert.NotContains(t, line, "hidden")
	assert.Equal(t, "visible", gjson.Get(line, "message").String())
	assert.Equal(t, "google", gjson.Get(line, "provider").String())
	assert.True(t, gjson.Get(line, "time").Exists())
}

func TestNewEnvironmentLevelWins(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	var buf bytes.Buffer

	log, err := New(Options{Level: "error", Output: &buf})
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, log.GetLevel())
}

func TestNewLogFile(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	path := filepath.Join(t.TempDir(), "relay.log")

	log, err := New(Options{File: path})
	require.NoError(t, err)
	log.Info().Msg("to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

func TestNewRejectsFileWithPretty(t *testing.T) {
	_, err := New(Options{File: "relay.log", Pretty: true})
	require.Error(t, err)

	_, err = InitWithOptions("relay.log", true)
	require.Error(t, err)
}
