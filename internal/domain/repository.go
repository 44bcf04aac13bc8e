package domain

import "context"

// ProcessController handles OS process operations.
// Implementation: uses gopsutil for lookup/termination and the command
// executor for spawning.
type ProcessController interface {
	// Spawn starts path with args without waiting for it (fire-and-forget).
	// dir sets the working directory; empty means inherit.
	Spawn(ctx context.Context, path, dir string, args ...string) error

	// TerminateByImageName forcefully kills every process whose image name
	// matches (case-insensitive).
	TerminateByImageName(ctx context.Context, image string) error

	// IsRunning checks if any process with the image name is listed.
	IsRunning(image string) bool
}

// FirewallStore is the OS firewall rule store.
// Implementation: netsh/PowerShell on Windows.
type FirewallStore interface {
	// AddOutboundBlockRule creates an outbound block rule for path.
	AddOutboundBlockRule(ctx context.Context, rule FirewallRule) error

	// RemoveRule deletes every rule with the given name.
	RemoveRule(ctx context.Context, name string) error

	// RuleExists checks the live store for a rule with the exact name.
	RuleExists(ctx context.Context, name string) (bool, error)
}

// IdentitySignal reads which local account is signed into the running client.
type IdentitySignal interface {
	ReadActiveIdentity() (uint32, error)
}

// InstallLocator discovers install roots from OS state (registry on Windows).
type InstallLocator interface {
	// SteamInstallPath returns the Steam root directory.
	SteamInstallPath() (string, error)

	// EpicAppDataPath returns the Epic launcher's data directory.
	EpicAppDataPath() (string, error)
}

// TextFileStore reads and rewrites small text files such as loginusers.vdf.
type TextFileStore interface {
	// Exists checks if a path exists.
	Exists(path string) bool

	// ReadText returns the whole file as a string.
	ReadText(path string) (string, error)

	// WriteText replaces the file content atomically.
	WriteText(path, content string) error
}

// PathProvider is the known-launcher-paths table.
type PathProvider interface {
	// LauncherExecutables returns the ordered executable set for id.
	// Unknown ids yield an empty slice.
	LauncherExecutables(id LauncherID) []string

	// MainExecutable returns the first executable of id's set.
	MainExecutable(id LauncherID) (string, error)

	// ProcessImage returns the image name of id's main client process.
	ProcessImage(id LauncherID) string

	// SteamRoot returns the discovered Steam install root.
	SteamRoot() (string, error)
}

// LaunchService is the command surface exposed to the application.
type LaunchService interface {
	ListInstalledGames(ctx context.Context) ([]InstalledGame, error)
	LaunchGame(ctx context.Context, req LaunchRequest) (*LaunchReport, error)
	ToggleFirewall(ctx context.Context, id LauncherID, block bool) (string, error)
	GetFirewallStatus(ctx context.Context, id LauncherID) bool
	ListBlockableFiles(ctx context.Context, id LauncherID) ([]LauncherFileStatus, error)
	ToggleSingleFileRule(ctx context.Context, ruleName, path string, block bool) error
	ListCachedAccounts(ctx context.Context) ([]CachedAccount, error)
	SwitchAccount(ctx context.Context, accountName string) error
	OpenLauncher(ctx context.Context, id LauncherID) error
	DetectLaunchers(ctx context.Context) []DetectedLauncher
}
