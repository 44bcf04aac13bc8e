// Package policy implements the Strategy pattern for launcher-specific rules.
// Each launcher (Steam, Epic, ...) has its own policy defining which
// executables it owns and where it is usually installed.
package policy

import (
	"github.com/eliteGoblin/focusd/launch_mgr/internal/domain"
)

// LauncherPolicy defines the strategy interface for one launcher.
type LauncherPolicy interface {
	// ID returns the launcher identifier (e.g., "Steam", "Epic").
	ID() domain.LauncherID

	// Name returns human-readable name for display.
	Name() string

	// ProcessImage returns the image name of the main client process.
	ProcessImage() string

	// Executables returns the ordered executable set.
	// Rule names are derived from positions in this slice.
	Executables() []string

	// CandidatePaths returns main-executable locations to probe during detection,
	// most likely first.
	CandidatePaths() []string
}

// StaticPolicy is a launcher whose paths never change at runtime.
type StaticPolicy struct {
	id          domain.LauncherID
	name        string
	image       string
	executables []string
	candidates  []string
}

// NewStaticPolicy creates a policy from fixed tables.
func NewStaticPolicy(id domain.LauncherID, name, image string, executables, candidates []string) *StaticPolicy {
	return &StaticPolicy{
		id:          id,
		name:        name,
		image:       image,
		executables: executables,
		candidates:  candidates,
	}
}

func (p *StaticPolicy) ID() domain.LauncherID {
	return p.id
}

func (p *StaticPolicy) Name() string {
	return p.name
}

func (p *StaticPolicy) ProcessImage() string {
	return p.image
}

func (p *StaticPolicy) Executables() []string {
	out := make([]string, len(p.executables))
	copy(out, p.executables)
	return out
}

func (p *StaticPolicy) CandidatePaths() []string {
	out := make([]string, len(p.candidates))
	copy(out, p.candidates)
	return out
}

// Ensure StaticPolicy implements LauncherPolicy.
var _ LauncherPolicy = (*StaticPolicy)(nil)
