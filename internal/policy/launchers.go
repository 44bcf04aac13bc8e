package policy

import (
	"path/filepath"

	"github.com/eliteGoblin/focusd/launch_mgr/internal/domain"
)

// NewUbisoftPolicy creates the Ubisoft Connect policy.
func NewUbisoftPolicy() *StaticPolicy {
	return NewStaticPolicy(domain.LauncherUbisoft, "Ubisoft Connect", "upc.exe",
		[]string{
			`C:\Program Files (x86)\Ubisoft\Ubisoft Game Launcher\upc.exe`,
		},
		[]string{
			`C:\Program Files (x86)\Ubisoft\Ubisoft Game Launcher\upc.exe`,
			`D:\Ubisoft\Ubisoft Game Launcher\upc.exe`,
			`C:\Program Files\Ubisoft\Ubisoft Game Launcher\upc.exe`,
			`E:\Ubisoft\Ubisoft Game Launcher\upc.exe`,
		})
}

// NewEAPolicy creates the EA app policy.
func NewEAPolicy() *StaticPolicy {
	return NewStaticPolicy(domain.LauncherEA, "EA App", "EADesktop.exe",
		[]string{
			`C:\Program Files\Electronic Arts\EA Desktop\EA Desktop\EADesktop.exe`,
		},
		[]string{
			`C:\Program Files\Electronic Arts\EA Desktop\EA Desktop\EADesktop.exe`,
			`D:\Electronic Arts\EA Desktop\EA Desktop\EADesktop.exe`,
			`C:\Program Files (x86)\Electronic Arts\EA Desktop\EA Desktop\EADesktop.exe`,
			`E:\EA Desktop\EA Desktop\EADesktop.exe`,
		})
}

// NewRockstarPolicy creates the Rockstar Games Launcher policy.
// The launcher talks to the network through four separate binaries.
func NewRockstarPolicy() *StaticPolicy {
	return NewStaticPolicy(domain.LauncherRockstar, "Rockstar Games", "Launcher.exe",
		[]string{
			`C:\Program Files\Rockstar Games\Launcher\Launcher.exe`,
			`C:\Program Files\Rockstar Games\Social Club\SocialClubHelper.exe`,
			`C:\Program Files\Rockstar Games\Launcher\RockstarService.exe`,
			`C:\Program Files\Rockstar Games\Launcher\ThirdParty\Crashpad\RockstarErrorHandler.exe`,
		},
		[]string{
			`C:\Program Files\Rockstar Games\Launcher\Launcher.exe`,
			`D:\Rockstar Games\Launcher\Launcher.exe`,
			`C:\Program Files (x86)\Rockstar Games\Launcher\Launcher.exe`,
			`E:\Rockstar Games\Launcher\Launcher.exe`,
		})
}

const epicLauncherSuffix = `Launcher\Portal\Binaries\Win64\EpicGamesLauncher.exe`

// EpicPolicy resolves the Epic launcher, preferring the registry-reported
// data directory over the fixed candidates.
type EpicPolicy struct {
	*StaticPolicy
	locator domain.InstallLocator
}

// NewEpicPolicy creates the Epic Games policy.
func NewEpicPolicy(locator domain.InstallLocator) *EpicPolicy {
	return &EpicPolicy{
		StaticPolicy: NewStaticPolicy(domain.LauncherEpic, "Epic Games", "EpicGamesLauncher.exe",
			[]string{
				`C:\Program Files (x86)\Epic Games\` + epicLauncherSuffix,
			},
			[]string{
				`C:\Program Files (x86)\Epic Games\` + epicLauncherSuffix,
				`D:\Epic Games\` + epicLauncherSuffix,
				`C:\Program Files\Epic Games\` + epicLauncherSuffix,
				`E:\Epic Games\` + epicLauncherSuffix,
			}),
		locator: locator,
	}
}

// CandidatePaths puts the registry location, when known, ahead of the defaults.
func (p *EpicPolicy) CandidatePaths() []string {
	candidates := p.StaticPolicy.CandidatePaths()
	if p.locator == nil {
		return candidates
	}
	dataDir, err := p.locator.EpicAppDataPath()
	if err != nil || dataDir == "" {
		return candidates
	}
	return append([]string{filepath.Join(dataDir, epicLauncherSuffix)}, candidates...)
}

var _ LauncherPolicy = (*EpicPolicy)(nil)
