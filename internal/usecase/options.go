package usecase

import (
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

type options struct {
	config LaunchConfig
	clock  clockwork.Clock
	logger *zap.Logger
}

// Option configures NewService.
type Option func(*options)

// WithLaunchConfig overrides the wait policy.
func WithLaunchConfig(c LaunchConfig) Option {
	return func(o *options) { o.config = c }
}

// WithClock sets the clock used by poll loops.
func WithClock(c clockwork.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
