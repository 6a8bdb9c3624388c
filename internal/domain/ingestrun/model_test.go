package ingestrun

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, StatusSuccess, StatusFor(0, 10))
	assert.Equal(t, StatusSuccess, StatusFor(0, 0))
	assert.Equal(t, StatusPartial, StatusFor(2, 10))
	assert.Equal(t, StatusFailed, StatusFor(10, 10))
	assert.Equal(t, StatusFailed, StatusFor(1, 0))
}

func TestRun_FinishAndStale(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	run := Run{Status: StatusRunning, StartedAt: start}

	assert.True(t, run.IsStale(start.Add(time.Minute)))
	assert.False(t, run.IsStale(start))

	run.Finish(StatusPartial, start.Add(1500*time.Millisecond))
	assert.Equal(t, StatusPartial, run.Status)
	assert.EqualValues(t, 1500, run.DurationMS)
	assert.False(t, run.IsStale(start.Add(time.Hour)))
}
