package policy

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/eliteGoblin/focusd/launch_mgr/internal/domain"
)

// DefaultSteamRoot is used for rule targets when no install is discovered.
const DefaultSteamRoot = `C:\Program Files (x86)\Steam`

// SteamImage is the image name of the Steam client process.
const SteamImage = "steam.exe"

// SteamPolicy implements LauncherPolicy for the Steam client executable.
// The install root is discovered at call time, never cached.
type SteamPolicy struct {
	fs       afero.Fs
	locator  domain.InstallLocator
	override string
}

// NewSteamPolicy creates a Steam policy. override, when non-empty, is a
// user-configured install root checked before the locator.
func NewSteamPolicy(fs afero.Fs, locator domain.InstallLocator, override string) *SteamPolicy {
	return &SteamPolicy{fs: fs, locator: locator, override: override}
}

func (p *SteamPolicy) ID() domain.LauncherID {
	return domain.LauncherSteam
}

func (p *SteamPolicy) Name() string {
	return "Steam"
}

func (p *SteamPolicy) ProcessImage() string {
	return SteamImage
}

// Root returns the Steam install root or domain.ErrSteamNotFound.
func (p *SteamPolicy) Root() (string, error) {
	if p.override != "" {
		if ok, _ := afero.DirExists(p.fs, p.override); ok {
			return p.override, nil
		}
	}
	if p.locator != nil {
		root, err := p.locator.SteamInstallPath()
		if err == nil && root != "" {
			if ok, _ := afero.DirExists(p.fs, root); ok {
				return root, nil
			}
		}
	}
	return "", fmt.Errorf("locate steam: %w", domain.ErrSteamNotFound)
}

// rootOrDefault is used where a best-guess path is acceptable.
func (p *SteamPolicy) rootOrDefault() string {
	if root, err := p.Root(); err == nil {
		return root
	}
	return DefaultSteamRoot
}

// Executables returns the Steam client executable.
func (p *SteamPolicy) Executables() []string {
	return []string{filepath.Join(p.rootOrDefault(), SteamImage)}
}

// CandidatePaths returns common Steam install locations.
func (p *SteamPolicy) CandidatePaths() []string {
	return []string{
		`C:\Program Files (x86)\Steam\steam.exe`,
		`D:\Steam\steam.exe`,
		`E:\Steam\steam.exe`,
		`C:\Program Files\Steam\steam.exe`,
	}
}

// SteamWebHelperPolicy covers Steam's embedded browser subprocess, which
// needs its own firewall rule.
type SteamWebHelperPolicy struct {
	steam *SteamPolicy
}

// NewSteamWebHelperPolicy creates the web helper policy sharing steam's root.
func NewSteamWebHelperPolicy(steam *SteamPolicy) *SteamWebHelperPolicy {
	return &SteamWebHelperPolicy{steam: steam}
}

func (p *SteamWebHelperPolicy) ID() domain.LauncherID {
	return domain.LauncherSteamWebHelper
}

func (p *SteamWebHelperPolicy) Name() string {
	return "Steam Web Helper"
}

func (p *SteamWebHelperPolicy) ProcessImage() string {
	return "steamwebhelper.exe"
}

func (p *SteamWebHelperPolicy) Executables() []string {
	return []string{filepath.Join(p.steam.rootOrDefault(), "bin", "cef", "cef.win7x64", "steamwebhelper.exe")}
}

func (p *SteamWebHelperPolicy) CandidatePaths() []string {
	return nil
}

// Ensure the Steam policies implement LauncherPolicy.
var (
	_ LauncherPolicy = (*SteamPolicy)(nil)
	_ LauncherPolicy = (*SteamWebHelperPolicy)(nil)
)
