package policy

import (
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/eliteGoblin/focusd/launch_mgr/internal/domain"
)

// detectable lists launchers shown to the user, in display order.
var detectable = []domain.LauncherID{
	domain.LauncherSteam,
	domain.LauncherEpic,
	domain.LauncherUbisoft,
	domain.LauncherEA,
	domain.LauncherRockstar,
}

// Detect probes every user-facing launcher by file existence.
func (r *Registry) Detect() []domain.DetectedLauncher {
	out := make([]domain.DetectedLauncher, 0, len(detectable))
	for _, id := range detectable {
		p, ok := r.Get(id)
		if !ok {
			continue
		}
		out = append(out, r.detectOne(p))
	}
	return out
}

func (r *Registry) detectOne(p LauncherPolicy) domain.DetectedLauncher {
	result := domain.DetectedLauncher{
		ID:     p.ID(),
		Name:   p.Name(),
		Status: domain.StatusNotFound,
	}

	candidates := p.CandidatePaths()
	if p.ID() == domain.LauncherSteam {
		// The detection UI addresses Steam and its web helper together.
		result.ID = domain.LauncherSteamAll
		if root, err := r.steam.Root(); err == nil {
			candidates = append([]string{filepath.Join(root, SteamImage)}, candidates...)
		}
	}

	for _, path := range candidates {
		if ok, _ := afero.Exists(r.fs, path); ok {
			result.Path = path
			result.Status = domain.StatusFound
			break
		}
	}
	return result
}
