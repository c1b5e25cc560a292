package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/chordcraft/core/internal/domain/entities"
	"github.com/chordcraft/core/internal/infrastructure/config"
	"github.com/chordcraft/core/internal/ports"
)

func observed(level zapcore.Level) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return &Logger{SugaredLogger: zap.New(core).Sugar()}, logs
}

func TestNew(t *testing.T) {
	l, err := New(config.LoggerConfig{Level: "debug", Format: "json", Output: "stdout"})
	require.NoError(t, err)
	assert.NotNil(t, l)

	_, err = New(config.LoggerConfig{Level: "loud", Format: "json"})
	assert.Error(t, err)
}

func TestWithComponent(t *testing.T) {
	l, logs := observed(zapcore.InfoLevel)

	l.WithComponent("store").Infow("hello")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "store", logs.All()[0].ContextMap()["component"])
}

func TestLogHTTPRequest(t *testing.T) {
	l, logs := observed(zapcore.InfoLevel)

	l.LogHTTPRequest("GET", "/api/shapes", "req-1", 200, 1.5, nil)
	l.LogHTTPRequest("PUT", "/api/shapes/x", "", 404, 0.7, errors.New("shape not found"))

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "shape not found", entries[1].ContextMap()["error"])
	assert.NotContains(t, entries[1].ContextMap(), "request_id")
}

func TestLogStoreRepair(t *testing.T) {
	l, logs := observed(zapcore.DebugLevel)

	l.LogStoreRepair(ports.NormalizeReport{
		CreatedCollections: []entities.Kind{entities.KindShape},
		ReassignedIDs: []ports.IDChange{
			{Kind: entities.KindShape, Index: 1, Previous: "shape-dup", Current: "shape-new"},
		},
		RepairedFields: []ports.FieldRepair{
			{Kind: entities.KindShape, ID: "shape-new", Field: "chord"},
		},
	})

	summary := logs.FilterMessage("Document repaired during load").All()
	require.Len(t, summary, 1)
	assert.Equal(t, zapcore.WarnLevel, summary[0].Level)
	assert.EqualValues(t, 1, summary[0].ContextMap()["reassigned_ids"])

	assert.Equal(t, 1, logs.FilterMessage("Identifier reassigned").Len())
	assert.Equal(t, 1, logs.FilterMessage("Field repaired").Len())
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	l.Infow("discarded")
	assert.NoError(t, l.Close())
}
