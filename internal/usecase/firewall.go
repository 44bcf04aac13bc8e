package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/launch_mgr/internal/domain"
)

// FirewallLedger applies named outbound block rules. The OS firewall is the
// only record of what is blocked; nothing is cached here.
//
// Mutations are advisory: failures are logged and never returned.
type FirewallLedger struct {
	store  domain.FirewallStore
	logger *zap.Logger
}

// NewFirewallLedger creates a ledger over store.
func NewFirewallLedger(store domain.FirewallStore, logger *zap.Logger) *FirewallLedger {
	return &FirewallLedger{store: store, logger: logger}
}

// SetBlocked creates or removes the rule named ruleName.
// Blocking replaces any existing rule of the same name so repeated calls
// never leave duplicates. Unblocking a missing rule succeeds. When an
// existing rule cannot be removed nothing else is changed.
func (l *FirewallLedger) SetBlocked(ctx context.Context, ruleName, path string, blocked bool) {
	exists, err := l.store.RuleExists(ctx, ruleName)
	if err != nil {
		l.logger.Warn("failed to query firewall rule, removing anyway",
			zap.String("rule", ruleName),
			zap.Error(err))
		exists = true
	}

	if exists {
		if err := l.store.RemoveRule(ctx, ruleName); err != nil {
			l.logger.Warn("failed to remove firewall rule",
				zap.String("rule", ruleName),
				zap.Error(err))
			return
		}
		if !blocked {
			l.logger.Info("firewall rule removed", zap.String("rule", ruleName))
		}
	}
	if !blocked {
		return
	}

	if err := l.store.AddOutboundBlockRule(ctx, domain.NewBlockRule(ruleName, path)); err != nil {
		l.logger.Warn("failed to add firewall rule",
			zap.String("rule", ruleName),
			zap.String("path", path),
			zap.Error(err))
		return
	}
	l.logger.Info("firewall rule added",
		zap.String("rule", ruleName),
		zap.String("path", path))
}

// IsBlocked queries the live rule store. Query errors read as not blocked.
func (l *FirewallLedger) IsBlocked(ctx context.Context, ruleName string) bool {
	exists, err := l.store.RuleExists(ctx, ruleName)
	if err != nil {
		l.logger.Debug("firewall rule query failed",
			zap.String("rule", ruleName),
			zap.Error(err))
		return false
	}
	return exists
}
