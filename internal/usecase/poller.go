package usecase

import (
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/launch_mgr/internal/domain"
)

// IdentityPoller waits for the client to report a given signed-in account.
type IdentityPoller struct {
	signal domain.IdentitySignal
	clock  clockwork.Clock
	logger *zap.Logger
}

// NewIdentityPoller creates a poller. A nil clock means the real one.
func NewIdentityPoller(signal domain.IdentitySignal, clock clockwork.Clock, logger *zap.Logger) *IdentityPoller {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &IdentityPoller{signal: signal, clock: clock, logger: logger}
}

// AwaitActiveIdentity reads the active identity up to maxRetries times,
// pollInterval apart, and reports whether it ever equalled target.
// A failed read counts as a miss.
func (p *IdentityPoller) AwaitActiveIdentity(target uint32, pollInterval time.Duration, maxRetries int) bool {
	for i := 0; i < maxRetries; i++ {
		active, err := p.signal.ReadActiveIdentity()
		switch {
		case err != nil:
			p.logger.Debug("active identity unreadable", zap.Int("attempt", i+1), zap.Error(err))
		case active == target:
			p.logger.Info("login confirmed", zap.Uint32("account_id", active))
			return true
		}
		p.clock.Sleep(pollInterval)
	}
	return false
}
