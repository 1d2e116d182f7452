package infra

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestJanitor_NonPositiveIntervalDisablesJob(t *testing.T) {
	j := NewJanitor(quietLogger())
	require.NoError(t, j.Every("sessions", 0, func() int { return 0 }))
	require.NoError(t, j.Every("abuse", -time.Second, func() int { return 0 }))
	assert.Equal(t, 0, j.Jobs())
}

func TestJanitor_RunsSweepsUntilContextEnds(t *testing.T) {
	j := NewJanitor(quietLogger())

	var runs atomic.Int32
	ran := make(chan struct{}, 1)
	require.NoError(t, j.Every("sessions", time.Second, func() int {
		runs.Add(1)
		select {
		case ran <- struct{}{}:
		default:
		}
		return 1
	}))
	assert.Equal(t, 1, j.Jobs())

	ctx, cancel := context.WithCancel(context.Background())
	j.Start(ctx)

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		cancel()
		t.Fatalf("sweep did not run")
	}

	cancel()
	j.Stop()
	after := runs.Load()
	time.Sleep(1500 * time.Millisecond)
	assert.Equal(t, after, runs.Load(), "no sweeps after stop")
}

func TestJanitor_StopWithoutStartIsNoop(t *testing.T) {
	j := NewJanitor(nil)
	j.Stop()
}
