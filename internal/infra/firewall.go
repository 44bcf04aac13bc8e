package infra

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/eliteGoblin/focusd/launch_mgr/internal/domain"
)

// NetshFirewall implements domain.FirewallStore on top of Windows Firewall.
// Rules are written with netsh and read back with Get-NetFirewallRule, whose
// exit status does not depend on the system locale.
type NetshFirewall struct {
	cmd Executor
}

// NewNetshFirewall creates a netsh-backed firewall store.
func NewNetshFirewall(cmd Executor) *NetshFirewall {
	return &NetshFirewall{cmd: cmd}
}

// AddOutboundBlockRule creates an enabled outbound block rule.
func (f *NetshFirewall) AddOutboundBlockRule(ctx context.Context, rule domain.FirewallRule) error {
	out, err := f.cmd.Output(ctx, "netsh", "advfirewall", "firewall", "add", "rule",
		"name="+rule.Name,
		"dir="+string(rule.Direction),
		"action="+string(rule.Action),
		"program="+rule.TargetPath,
		"enable=yes",
	)
	if err != nil {
		return fmt.Errorf("netsh add rule %q: %w: %s", rule.Name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// RemoveRule deletes all rules with the name. netsh fails when nothing
// matches, so callers check RuleExists first.
func (f *NetshFirewall) RemoveRule(ctx context.Context, name string) error {
	out, err := f.cmd.Output(ctx, "netsh", "advfirewall", "firewall", "delete", "rule", "name="+name)
	if err != nil {
		return fmt.Errorf("netsh delete rule %q: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// RuleExists reports whether a rule with the exact display name exists.
func (f *NetshFirewall) RuleExists(ctx context.Context, name string) (bool, error) {
	query := fmt.Sprintf("Get-NetFirewallRule -DisplayName '%s'", strings.ReplaceAll(name, "'", "''"))
	_, err := f.cmd.Output(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", query)
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// Get-NetFirewallRule exits non-zero when nothing matches.
		return false, nil
	}
	return false, fmt.Errorf("query rule %q: %w", name, err)
}

// Ensure NetshFirewall implements domain.FirewallStore.
var _ domain.FirewallStore = (*NetshFirewall)(nil)

// unsupportedFirewall is used where no firewall backend exists.
type unsupportedFirewall struct{}

func (unsupportedFirewall) AddOutboundBlockRule(context.Context, domain.FirewallRule) error {
	return fmt.Errorf("firewall: %w", domain.ErrUnsupported)
}

func (unsupportedFirewall) RemoveRule(context.Context, string) error {
	return fmt.Errorf("firewall: %w", domain.ErrUnsupported)
}

func (unsupportedFirewall) RuleExists(context.Context, string) (bool, error) {
	return false, fmt.Errorf("firewall: %w", domain.ErrUnsupported)
}
