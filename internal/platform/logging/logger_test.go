package logging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_KeyValueFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := FromZap(zap.New(core))

	logger.InfoContext(context.Background(), "ingest run finalized", "run_id", int64(7), "status", "partial", "err", errors.New("boom"))
	logger.Debug("dropped below level")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "ingest run finalized", entries[0].Message)
	assert.EqualValues(t, 7, fields["run_id"])
	assert.Equal(t, "partial", fields["status"])
	assert.Equal(t, "boom", fields["err"])
}

func TestLogger_NilFallsBackToDefault(t *testing.T) {
	var logger *Logger
	assert.NotPanics(t, func() { logger.Warn("no logger configured") })
	assert.NotNil(t, logger.With("k", "v"))
}

func TestNew_PicksEncoder(t *testing.T) {
	assert.NotNil(t, New(LevelInfo, "console"))
	assert.NotNil(t, New(LevelInfo, "json"))
}
