package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewJSONWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Format: "json", Component: ComponentSync, Output: &buf})

	l.Debug("hidden")
	l.Info("Sync finished", FieldPushed, 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Sync finished", entry["msg"])
	assert.Equal(t, ComponentSync, entry[FieldComponent])
	assert.Equal(t, float64(3), entry[FieldPushed])
	assert.Equal(t, ComponentSync, l.Component())
}

func TestSyncFailure(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Format: "json", Output: &buf})

	l.SyncFailure(context.Background(), "expenses", OpPush, "e1", errors.New("timeout"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "expenses", entry[FieldEntity])
	assert.Equal(t, "e1", entry[FieldRowID])
	assert.Equal(t, OpPush, entry[FieldPhase])
	assert.Equal(t, "timeout", entry[FieldError])
	assert.Equal(t, ErrorTypeRemote, entry[FieldErrorType])
}

func TestWithComponentOverrides(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Format: "json", Output: &buf}).WithComponent(ComponentWorker)
	l.Info("started")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, ComponentWorker, entry[FieldComponent])
}
