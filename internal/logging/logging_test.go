package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(Config{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)
	defer closer.Close()

	logger.Info().Msg("hidden")
	logger.Warn().Str("label", "Positive").Msg("shown")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "shown", entry["message"])
	assert.Equal(t, "Positive", entry["label"])
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(Config{}, &buf)
	require.NoError(t, err)

	logger.Debug().Msg("below default level")
	logger.Info().Msg("anchors built")

	assert.NotContains(t, buf.String(), "below default level")
	assert.Contains(t, buf.String(), "anchors built")
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "semsim.log")
	var buf bytes.Buffer
	logger, closer, err := New(Config{Format: "json", File: path}, &buf)
	require.NoError(t, err)

	logger.Info().Msg("to both")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to both")
	assert.Contains(t, buf.String(), "to both")
}

func TestNew_Invalid(t *testing.T) {
	_, _, err := New(Config{Level: "loud"}, &bytes.Buffer{})
	assert.Error(t, err)

	_, _, err = New(Config{Format: "xml"}, &bytes.Buffer{})
	assert.Error(t, err)
}
