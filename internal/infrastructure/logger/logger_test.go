package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"WARN", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"unknown", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.input), "parseLevel(%q)", tt.input)
	}
}

func TestNewJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: "json", Output: &buf})

	log.Debug().Msg("hidden")
	log.Info().Str("wallet_id", "w-1").Msg("wallet created")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "wallet created", entry["message"])
	assert.Equal(t, "w-1", entry["wallet_id"])
	assert.Equal(t, "gowallet", entry["service"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNewConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Format: "console", Output: &buf})

	log.Debug().Msg("console line")

	assert.Contains(t, buf.String(), "console line")
	assert.False(t, json.Valid(buf.Bytes()))
}

func TestNewSetsContextDefault(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Level: "info", Output: &buf})
	t.Cleanup(func() { zerolog.DefaultContextLogger = nil })

	zerolog.Ctx(context.Background()).Info().Msg("from context")

	assert.Contains(t, buf.String(), "from context")
}
