package policy

import (
	"fmt"

	"github.com/spf13/afero"

	"github.com/eliteGoblin/focusd/launch_mgr/internal/domain"
)

// Registry holds all launcher policies and serves as the known-paths table.
type Registry struct {
	fs        afero.Fs
	steam     *SteamPolicy
	policies  map[domain.LauncherID]LauncherPolicy
	overrides map[domain.LauncherID][]string
}

// NewRegistry creates a registry with all default launcher policies.
// overrides replaces the executable set of individual launchers. The
// Steam_ALL alias is stored under Steam.
func NewRegistry(fs afero.Fs, locator domain.InstallLocator, steamDir string, overrides map[domain.LauncherID][]string) *Registry {
	steam := NewSteamPolicy(fs, locator, steamDir)
	r := NewRegistryWithPolicies(fs, steam,
		NewSteamWebHelperPolicy(steam),
		NewEpicPolicy(locator),
		NewUbisoftPolicy(),
		NewEAPolicy(),
		NewRockstarPolicy(),
	)
	for id, paths := range overrides {
		if len(paths) == 0 {
			continue
		}
		if id.IsSteam() {
			id = domain.LauncherSteam
		}
		r.overrides[id] = append([]string(nil), paths...)
	}
	return r
}

// NewRegistryWithPolicies creates a registry with custom policies (for testing).
func NewRegistryWithPolicies(fs afero.Fs, steam *SteamPolicy, policies ...LauncherPolicy) *Registry {
	r := &Registry{
		fs:        fs,
		steam:     steam,
		policies:  make(map[domain.LauncherID]LauncherPolicy),
		overrides: make(map[domain.LauncherID][]string),
	}
	r.Register(steam)
	for _, p := range policies {
		r.Register(p)
	}
	return r
}

// Register adds a policy to the registry.
func (r *Registry) Register(p LauncherPolicy) {
	r.policies[p.ID()] = p
}

// Get returns a policy by ID. Steam_ALL resolves to Steam.
func (r *Registry) Get(id domain.LauncherID) (LauncherPolicy, bool) {
	if id.IsSteam() {
		id = domain.LauncherSteam
	}
	p, ok := r.policies[id]
	return p, ok
}

// LauncherExecutables returns the ordered executable set for id.
func (r *Registry) LauncherExecutables(id domain.LauncherID) []string {
	p, ok := r.Get(id)
	if !ok {
		return nil
	}
	if paths, ok := r.overrides[p.ID()]; ok {
		return append([]string(nil), paths...)
	}
	return p.Executables()
}

// MainExecutable returns the first executable of id's set.
func (r *Registry) MainExecutable(id domain.LauncherID) (string, error) {
	paths := r.LauncherExecutables(id)
	if len(paths) == 0 {
		return "", fmt.Errorf("%s: %w", id, domain.ErrLauncherPathsNotFound)
	}
	return paths[0], nil
}

// ProcessImage returns the main process image of id, or "" when unknown.
func (r *Registry) ProcessImage(id domain.LauncherID) string {
	p, ok := r.Get(id)
	if !ok {
		return ""
	}
	return p.ProcessImage()
}

// SteamRoot returns the discovered Steam install root.
func (r *Registry) SteamRoot() (string, error) {
	return r.steam.Root()
}

// Ensure Registry implements domain.PathProvider.
var _ domain.PathProvider = (*Registry)(nil)
