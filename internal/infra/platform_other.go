//go:build !windows

package infra

import (
	"fmt"

	"github.com/eliteGoblin/focusd/launch_mgr/internal/domain"
)

// NewFirewallStore returns a store that reports every operation as unsupported.
func NewFirewallStore(Executor) domain.FirewallStore {
	return unsupportedFirewall{}
}

type unsupportedIdentity struct{}

// NewIdentitySignal returns a signal that always fails to read.
func NewIdentitySignal() domain.IdentitySignal {
	return unsupportedIdentity{}
}

func (unsupportedIdentity) ReadActiveIdentity() (uint32, error) {
	return 0, fmt.Errorf("active identity: %w", domain.ErrUnsupported)
}

type unsupportedLocator struct{}

// NewInstallLocator returns a locator with no discovery; a configured
// Steam directory is the only way to point at an install here.
func NewInstallLocator() domain.InstallLocator {
	return unsupportedLocator{}
}

func (unsupportedLocator) SteamInstallPath() (string, error) {
	return "", fmt.Errorf("steam path: %w", domain.ErrUnsupported)
}

func (unsupportedLocator) EpicAppDataPath() (string, error) {
	return "", fmt.Errorf("epic path: %w", domain.ErrUnsupported)
}
