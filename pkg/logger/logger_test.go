package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	SetLevel("info")
	SetOutput(&buf, "json")
	t.Cleanup(func() { SetFormat("console") })

	Log.Info().Str("sku", "WIDGET-001").Msg("evaluated")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "WIDGET-001", entry["sku"])
	assert.Equal(t, "evaluated", entry["message"])
}

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() { SetLevel("info") })

	SetLevel("debug")
	assert.Equal(t, zerolog.DebugLevel, Log.GetLevel())

	SetLevel("not-a-level")
	assert.Equal(t, zerolog.InfoLevel, Log.GetLevel())

	SetLevel("WARN")
	assert.Equal(t, zerolog.WarnLevel, Log.GetLevel())
}

func TestDebugSuppressedAtInfo(t *testing.T) {
	var buf bytes.Buffer
	SetLevel("info")
	SetOutput(&buf, "json")
	t.Cleanup(func() { SetFormat("console") })

	Log.Debug().Msg("hidden")
	assert.Empty(t, buf.String())
}
