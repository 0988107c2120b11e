package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_JSONOutputAndLevel(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "warn", Output: &buf})
	t.Cleanup(func() { Init(Config{}) })

	Info().Msg("hidden")
	Warn().Str("crop", "tomato").Msg("shown")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "shown", entry["message"])
	assert.Equal(t, "tomato", entry["crop"])
}

func TestDebug_OnlyAtDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Output: &buf})
	t.Cleanup(func() { Init(Config{}) })

	Debug().Msg("quiet")
	assert.Zero(t, buf.Len())

	Init(Config{Level: "debug", Output: &buf})
	Debug().Msg("loud")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "loud", entry["message"])
}

func TestCtx_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Output: &buf})
	t.Cleanup(func() { Init(Config{}) })

	ctx := ContextWithRequestID(context.Background(), "req-123")
	Ctx(ctx).Info().Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "req-123", entry["request_id"])
}

func TestParseLevel(t *testing.T) {
	tests := map[string]string{
		"":         "info",
		"DEBUG":    "debug",
		"warning":  "warn",
		"disabled": "disabled",
		"nonsense": "info",
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in).String(), "level %q", in)
	}
}

func TestRequestIDFromContext_Missing(t *testing.T) {
	assert.Empty(t, RequestIDFromContext(context.Background()))
	assert.NotEmpty(t, GenerateRequestID())
}
