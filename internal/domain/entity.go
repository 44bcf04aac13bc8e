// Package domain contains core business entities and interfaces.
// This is the innermost layer in Clean Architecture - no external dependencies.
package domain

import (
	"fmt"
	"strings"
)

// LauncherID identifies a game-distribution client.
type LauncherID string

const (
	LauncherSteam          LauncherID = "Steam"
	LauncherSteamAll       LauncherID = "Steam_ALL" // Alias used by the detection UI
	LauncherSteamWebHelper LauncherID = "SteamWebHelper"
	LauncherEpic           LauncherID = "Epic"
	LauncherUbisoft        LauncherID = "Ubisoft"
	LauncherEA             LauncherID = "EA"
	LauncherRockstar       LauncherID = "Rockstar"
)

// IsSteam reports whether id refers to the Steam client as a whole.
func (id LauncherID) IsSteam() bool {
	return id == LauncherSteam || id == LauncherSteamAll
}

// SteamIDBase is the offset between a 64-bit external identity and the
// 32-bit local account id used by the running client.
const SteamIDBase uint64 = 76561197960265728

// UnknownName is the placeholder shown for missing owner/account data.
// An account name equal to it means "no switch requested".
const UnknownName = "Unknown"

// Fixed rule names for Steam's two well-known executables.
const (
	RuleSteamExe       = "Block Steam Exe"
	RuleSteamWebHelper = "Block Steam WebHelper"
)

// RuleName returns the firewall rule name for the executable at index in a
// launcher's executable set.
func RuleName(id LauncherID, index int) string {
	return fmt.Sprintf("Block %s App %d", id, index+1)
}

// CachedAccount is one login cached by the Steam client in loginusers.vdf.
type CachedAccount struct {
	ExternalID         string `json:"steam_id"`
	AccountName        string `json:"account_name"`
	DisplayName        string `json:"persona_name"`
	LastLoginTimestamp uint64 `json:"timestamp"`
	IsMostRecent       bool   `json:"most_recent"`
	AllowAutoLogin     bool   `json:"allow_auto_login"`
	WantsOfflineMode   bool   `json:"wants_offline_mode"`
}

// RuleDirection and RuleAction describe a firewall rule. Only outbound
// blocking rules are ever created.
type (
	RuleDirection string
	RuleAction    string
)

const (
	DirectionOutbound RuleDirection = "out"
	ActionBlock       RuleAction    = "block"
)

// FirewallRule is an outbound block rule keyed by Name.
type FirewallRule struct {
	Name       string
	TargetPath string
	Direction  RuleDirection
	Action     RuleAction
}

// NewBlockRule builds the only rule shape the ledger manages.
func NewBlockRule(name, path string) FirewallRule {
	return FirewallRule{
		Name:       name,
		TargetPath: path,
		Direction:  DirectionOutbound,
		Action:     ActionBlock,
	}
}

// LaunchRequest drives a single orchestrated game launch. Never persisted.
type LaunchRequest struct {
	GameID            uint32
	TargetAccountName string // Empty or UnknownName means no account switch
	Offline           bool
}

// WantsSwitch reports whether the request names an account to switch to.
func (r LaunchRequest) WantsSwitch() bool {
	return r.TargetAccountName != "" && r.TargetAccountName != UnknownName
}

// InstalledGame is a Steam app found in one of the library folders.
type InstalledGame struct {
	ID          uint32 `json:"id"`
	Name        string `json:"name"`
	Path        string `json:"path"`
	OwnerName   string `json:"owner_name"`
	AccountName string `json:"account_name"`
}

// LauncherFileStatus pairs one blockable executable with its rule state.
type LauncherFileStatus struct {
	Path     string `json:"path"`
	RuleName string `json:"rule_name"`
	Blocked  bool   `json:"blocked"`
}

// DetectionStatus is the outcome of probing for a launcher install.
type DetectionStatus string

const (
	StatusFound       DetectionStatus = "Found"
	StatusNotFound    DetectionStatus = "NotFound"
	StatusUserSkipped DetectionStatus = "UserSkipped"
)

// DetectedLauncher is the result of auto-detecting one launcher.
type DetectedLauncher struct {
	ID     LauncherID      `json:"id"`
	Name   string          `json:"name"`
	Path   string          `json:"path,omitempty"`
	Status DetectionStatus `json:"status"`
}

// LaunchState names a step of the launch orchestration.
type LaunchState string

const (
	StateStart         LaunchState = "START"
	StateOfflineToggle LaunchState = "OFFLINE_TOGGLE"
	StateAccountSwitch LaunchState = "ACCOUNT_SWITCH"
	StateAwaitLogin    LaunchState = "AWAIT_LOGIN"
	StateLaunch        LaunchState = "LAUNCH"
	StateDone          LaunchState = "DONE"
	StateFailed        LaunchState = "FAILED"
)

// LaunchReport captures what happened during a single launch.
type LaunchReport struct {
	Request        LaunchRequest
	States         []LaunchState
	LocalAccountID uint32 // Zero when no switch was requested or resolution failed
	LoginConfirmed bool
}

// Visited reports whether the orchestration passed through state.
func (r *LaunchReport) Visited(state LaunchState) bool {
	for _, s := range r.States {
		if s == state {
			return true
		}
	}
	return false
}

var knownLaunchers = []LauncherID{
	LauncherSteam, LauncherSteamAll, LauncherSteamWebHelper,
	LauncherEpic, LauncherUbisoft, LauncherEA, LauncherRockstar,
}

// ParseLauncherID matches s against the known launcher ids, ignoring case.
func ParseLauncherID(s string) (LauncherID, error) {
	for _, id := range knownLaunchers {
		if strings.EqualFold(string(id), s) {
			return id, nil
		}
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownLauncher)
}
