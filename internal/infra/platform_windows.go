//go:build windows

package infra

import (
	"fmt"

	"golang.org/x/sys/windows/registry"

	"github.com/eliteGoblin/focusd/launch_mgr/internal/domain"
)

const (
	steamUserKey       = `Software\Valve\Steam`
	steamActiveProcKey = `Software\Valve\Steam\ActiveProcess`
	epicLauncherKey    = `SOFTWARE\WOW6432Node\Epic Games\EpicGamesLauncher`
)

// NewFirewallStore returns the Windows Firewall backed store.
func NewFirewallStore(cmd Executor) domain.FirewallStore {
	return NewNetshFirewall(cmd)
}

// RegistryIdentitySignal reads ActiveUser from Steam's ActiveProcess key.
// Steam writes the local account id there once a login completes.
type RegistryIdentitySignal struct{}

// NewIdentitySignal creates the registry backed identity signal.
func NewIdentitySignal() domain.IdentitySignal {
	return RegistryIdentitySignal{}
}

func (RegistryIdentitySignal) ReadActiveIdentity() (uint32, error) {
	key, err := registry.OpenKey(registry.CURRENT_USER, steamActiveProcKey, registry.QUERY_VALUE)
	if err != nil {
		return 0, fmt.Errorf("open ActiveProcess key: %w", err)
	}
	defer func() { _ = key.Close() }()

	v, _, err := key.GetIntegerValue("ActiveUser")
	if err != nil {
		return 0, fmt.Errorf("read ActiveUser: %w", err)
	}
	return uint32(v), nil //nolint:gosec // ActiveUser is a DWORD
}

// RegistryInstallLocator finds install roots in the Windows registry.
type RegistryInstallLocator struct{}

// NewInstallLocator creates the registry backed locator.
func NewInstallLocator() domain.InstallLocator {
	return RegistryInstallLocator{}
}

// SteamInstallPath checks the per-user SteamPath first, then the
// machine-wide InstallPath (64-bit view before 32-bit).
func (RegistryInstallLocator) SteamInstallPath() (string, error) {
	if p, err := readString(registry.CURRENT_USER, steamUserKey, "SteamPath"); err == nil && p != "" {
		return p, nil
	}
	for _, path := range []string{`SOFTWARE\Wow6432Node\Valve\Steam`, `SOFTWARE\Valve\Steam`} {
		if p, err := readString(registry.LOCAL_MACHINE, path, "InstallPath"); err == nil && p != "" {
			return p, nil
		}
	}
	return "", domain.ErrSteamNotFound
}

func (RegistryInstallLocator) EpicAppDataPath() (string, error) {
	return readString(registry.LOCAL_MACHINE, epicLauncherKey, "AppDataPath")
}

func readString(root registry.Key, path, name string) (string, error) {
	key, err := registry.OpenKey(root, path, registry.QUERY_VALUE)
	if err != nil {
		return "", err
	}
	defer func() { _ = key.Close() }()

	v, _, err := key.GetStringValue(name)
	return v, err
}
