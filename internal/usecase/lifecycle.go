package usecase

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/launch_mgr/internal/domain"
)

// LifecycleController stops client processes and waits for them to go away.
type LifecycleController struct {
	procs  domain.ProcessController
	clock  clockwork.Clock
	logger *zap.Logger
}

// NewLifecycleController creates a controller. A nil clock means the real one.
func NewLifecycleController(procs domain.ProcessController, clock clockwork.Clock, logger *zap.Logger) *LifecycleController {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &LifecycleController{procs: procs, clock: clock, logger: logger}
}

// TerminateAndAwaitExit force-kills every process named image, then polls
// every pollInterval until none is listed or maxWait has passed.
// Running out of time is not an error: the caller proceeds anyway.
// It returns at once when image is not running.
func (c *LifecycleController) TerminateAndAwaitExit(ctx context.Context, image string, pollInterval, maxWait time.Duration) {
	if !c.procs.IsRunning(image) {
		c.logger.Debug("process not running", zap.String("image", image))
		return
	}

	if err := c.procs.TerminateByImageName(ctx, image); err != nil {
		c.logger.Warn("failed to terminate process",
			zap.String("image", image),
			zap.Error(err))
	}

	attempts := 1
	if pollInterval > 0 {
		attempts = int(maxWait / pollInterval)
	}
	for i := 0; i < attempts; i++ {
		if !c.procs.IsRunning(image) {
			c.logger.Info("process exited", zap.String("image", image))
			return
		}
		c.clock.Sleep(pollInterval)
	}

	c.logger.Warn("process still running after wait, continuing",
		zap.String("image", image),
		zap.Duration("max_wait", maxWait))
}
