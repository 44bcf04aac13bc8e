package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestTerminateAndAwaitExit_NotRunningReturnsImmediately(t *testing.T) {
	procs := newMockProcessController()
	clock := clockwork.NewFakeClock()
	c := NewLifecycleController(procs, clock, zap.NewNop())
	start := clock.Now()

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.TerminateAndAwaitExit(context.Background(), "steam.exe", 500*time.Millisecond, 10*time.Second)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waited on an image that was not running")
	}
	assert.Empty(t, procs.terminated)
	assert.Zero(t, clock.Since(start))
}

func TestTerminateAndAwaitExit_WaitsForExit(t *testing.T) {
	procs := newMockProcessController()
	procs.runningChecks["steam.exe"] = 3 // initial check plus two polls
	clock := clockwork.NewFakeClock()
	c := NewLifecycleController(procs, clock, zap.NewNop())
	start := clock.Now()

	runWithClock(t, clock, 500*time.Millisecond, func() {
		c.TerminateAndAwaitExit(context.Background(), "steam.exe", 500*time.Millisecond, 10*time.Second)
	})

	assert.Equal(t, []string{"steam.exe"}, procs.terminated)
	assert.Equal(t, time.Second, clock.Since(start))
}

func TestTerminateAndAwaitExit_TimeoutIsNotAnError(t *testing.T) {
	procs := newMockProcessController()
	procs.runningChecks["steam.exe"] = 1000
	procs.terminateErr = errors.New("access denied")
	clock := clockwork.NewFakeClock()
	c := NewLifecycleController(procs, clock, zap.NewNop())
	start := clock.Now()

	runWithClock(t, clock, 500*time.Millisecond, func() {
		c.TerminateAndAwaitExit(context.Background(), "steam.exe", 500*time.Millisecond, 10*time.Second)
	})

	assert.Equal(t, 10*time.Second, clock.Since(start), "20 polls of 500ms")
	assert.Equal(t, 1000-21, procs.runningChecks["steam.exe"])
}
