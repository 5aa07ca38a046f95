package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfoWritesFields(t *testing.T) {
	buf := &bytes.Buffer{}
	Configure(buf, "json", "debug")
	t.Cleanup(func() { Configure(nil, "json", "info") })

	Info("export.complete", map[string]any{"procedure_id": "p-1", "entries": 2})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "export.complete", entry["message"])
	assert.Equal(t, "p-1", entry["procedure_id"])
	assert.EqualValues(t, 2, entry["entries"])
}

func TestErrorFieldsAreStrings(t *testing.T) {
	buf := &bytes.Buffer{}
	Configure(buf, "json", "info")
	t.Cleanup(func() { Configure(nil, "json", "info") })

	Warn("export.entry_failed", map[string]any{"error": errors.New("Invalid Credentials")})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Invalid Credentials", entry["error"])
}

func TestLevelFilters(t *testing.T) {
	buf := &bytes.Buffer{}
	Configure(buf, "json", "error")
	t.Cleanup(func() { Configure(nil, "json", "info") })

	Info("dropped", nil)
	assert.Zero(t, buf.Len())
}

func TestParseLevelDefaults(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("nope"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("WARN"))
}
