package usecase

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/launch_mgr/internal/domain"
	"github.com/eliteGoblin/focusd/launch_mgr/internal/steam"
)

// LauncherDetector probes the machine for launcher installs.
type LauncherDetector interface {
	Detect() []domain.DetectedLauncher
}

// AppScanner lists the apps installed under a Steam root.
type AppScanner interface {
	InstalledApps(root string) []steam.App
}

// ServiceImpl implements domain.LaunchService.
type ServiceImpl struct {
	paths        domain.PathProvider
	procs        domain.ProcessController
	files        domain.TextFileStore
	ledger       *FirewallLedger
	lifecycle    *LifecycleController
	orchestrator *Orchestrator
	apps         AppScanner
	detector     LauncherDetector
	config       LaunchConfig
	logger       *zap.Logger
}

// ServiceDeps groups the collaborators of the service.
type ServiceDeps struct {
	Paths    domain.PathProvider
	Procs    domain.ProcessController
	Firewall domain.FirewallStore
	Identity domain.IdentitySignal
	Files    domain.TextFileStore
	Apps     AppScanner
	Detector LauncherDetector
}

// NewService wires the command surface. deps.Detector may be nil.
func NewService(deps ServiceDeps, opts ...Option) *ServiceImpl {
	o := options{config: DefaultLaunchConfig(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	ledger := NewFirewallLedger(deps.Firewall, o.logger)
	lifecycle := NewLifecycleController(deps.Procs, o.clock, o.logger)
	poller := NewIdentityPoller(deps.Identity, o.clock, o.logger)

	return &ServiceImpl{
		paths:        deps.Paths,
		procs:        deps.Procs,
		files:        deps.Files,
		ledger:       ledger,
		lifecycle:    lifecycle,
		orchestrator: NewOrchestrator(deps.Paths, deps.Procs, deps.Files, ledger, lifecycle, poller, o.config, o.logger),
		apps:         deps.Apps,
		detector:     deps.Detector,
		config:       o.config,
		logger:       o.logger,
	}
}

// ListInstalledGames returns every installed Steam app with the cached
// account that last owned it.
func (s *ServiceImpl) ListInstalledGames(_ context.Context) ([]domain.InstalledGame, error) {
	root, err := s.paths.SteamRoot()
	if err != nil {
		return nil, fmt.Errorf("list installed games: %w", err)
	}

	owners := make(map[string]domain.CachedAccount)
	accounts, err := LoadAccounts(s.files, steam.LoginUsersPath(root))
	if err != nil {
		s.logger.Warn("failed to read login cache", zap.Error(err))
	}
	for _, acc := range accounts {
		owners[acc.ExternalID] = acc
	}

	apps := s.apps.InstalledApps(root)
	games := make([]domain.InstalledGame, 0, len(apps))
	for _, app := range apps {
		game := domain.InstalledGame{
			ID:          app.ID,
			Name:        app.Name,
			Path:        app.InstallPath,
			OwnerName:   domain.UnknownName,
			AccountName: domain.UnknownName,
		}
		if acc, ok := owners[app.LastOwner]; ok {
			game.OwnerName = acc.DisplayName
			game.AccountName = acc.AccountName
		}
		games = append(games, game)
	}
	return games, nil
}

// LaunchGame runs the launch orchestration for req.
func (s *ServiceImpl) LaunchGame(ctx context.Context, req domain.LaunchRequest) (*domain.LaunchReport, error) {
	return s.orchestrator.Launch(ctx, req)
}

// ToggleFirewall blocks or unblocks every executable of a launcher and
// returns a status line for the user.
func (s *ServiceImpl) ToggleFirewall(ctx context.Context, id domain.LauncherID, block bool) (string, error) {
	s.logger.Info("toggling firewall", zap.String("launcher", string(id)), zap.Bool("block", block))

	if id.IsSteam() {
		for _, path := range s.paths.LauncherExecutables(domain.LauncherSteam) {
			s.ledger.SetBlocked(ctx, domain.RuleSteamExe, path, block)
		}
		for _, path := range s.paths.LauncherExecutables(domain.LauncherSteamWebHelper) {
			s.ledger.SetBlocked(ctx, domain.RuleSteamWebHelper, path, block)
		}
		return "Steam Full firewall rules updated", nil
	}

	paths := s.paths.LauncherExecutables(id)
	if len(paths) == 0 {
		return "", fmt.Errorf("%s: %w", id, domain.ErrLauncherPathsNotFound)
	}
	for i, path := range paths {
		s.ledger.SetBlocked(ctx, domain.RuleName(id, i), path, block)
	}
	return fmt.Sprintf("%s firewall rules updated (%d executables)", id, len(paths)), nil
}

// GetFirewallStatus reports whether a launcher is blocked, judged by its
// first rule.
func (s *ServiceImpl) GetFirewallStatus(ctx context.Context, id domain.LauncherID) bool {
	if id.IsSteam() {
		return s.ledger.IsBlocked(ctx, domain.RuleSteamExe)
	}
	if len(s.paths.LauncherExecutables(id)) == 0 {
		return false
	}
	return s.ledger.IsBlocked(ctx, domain.RuleName(id, 0))
}

// ListBlockableFiles returns each executable of a launcher with its rule.
func (s *ServiceImpl) ListBlockableFiles(ctx context.Context, id domain.LauncherID) ([]domain.LauncherFileStatus, error) {
	var files []domain.LauncherFileStatus
	add := func(path, rule string) {
		files = append(files, domain.LauncherFileStatus{
			Path:     path,
			RuleName: rule,
			Blocked:  s.ledger.IsBlocked(ctx, rule),
		})
	}

	if id.IsSteam() {
		for _, path := range s.paths.LauncherExecutables(domain.LauncherSteam) {
			add(path, domain.RuleSteamExe)
		}
		for _, path := range s.paths.LauncherExecutables(domain.LauncherSteamWebHelper) {
			add(path, domain.RuleSteamWebHelper)
		}
		return files, nil
	}

	for i, path := range s.paths.LauncherExecutables(id) {
		add(path, domain.RuleName(id, i))
	}
	return files, nil
}

// ToggleSingleFileRule blocks or unblocks one executable by rule name.
func (s *ServiceImpl) ToggleSingleFileRule(ctx context.Context, ruleName, path string, block bool) error {
	s.ledger.SetBlocked(ctx, ruleName, path, block)
	return nil
}

// ListCachedAccounts returns the logins cached by the Steam client.
func (s *ServiceImpl) ListCachedAccounts(_ context.Context) ([]domain.CachedAccount, error) {
	root, err := s.paths.SteamRoot()
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return LoadAccounts(s.files, steam.LoginUsersPath(root))
}

// SwitchAccount restarts Steam signed in as accountName. It does not wait
// for the login to complete.
func (s *ServiceImpl) SwitchAccount(ctx context.Context, accountName string) error {
	if accountName == "" || accountName == domain.UnknownName {
		return fmt.Errorf("switch to %q: %w", accountName, domain.ErrInvalidAccount)
	}

	root, err := s.paths.SteamRoot()
	if err != nil {
		return fmt.Errorf("switch account: %w", err)
	}

	image := s.paths.ProcessImage(domain.LauncherSteam)
	s.lifecycle.TerminateAndAwaitExit(ctx, image, s.config.ExitPollInterval, s.config.ExitMaxWait)

	steamExe := filepath.Join(root, image)
	if err := s.procs.Spawn(ctx, steamExe, "", "-login", accountName); err != nil {
		return fmt.Errorf("restart steam: %w", err)
	}
	s.logger.Info("steam restarted for account", zap.String("account", accountName))
	return nil
}

// OpenLauncher starts a launcher's main executable from its own directory.
func (s *ServiceImpl) OpenLauncher(ctx context.Context, id domain.LauncherID) error {
	path, err := s.paths.MainExecutable(id)
	if err != nil {
		return fmt.Errorf("open launcher: %w", err)
	}
	if err := s.procs.Spawn(ctx, path, filepath.Dir(path)); err != nil {
		return fmt.Errorf("open launcher %s: %w", id, err)
	}
	s.logger.Info("launcher opened", zap.String("launcher", string(id)), zap.String("path", path))
	return nil
}

// DetectLaunchers probes for every known launcher.
func (s *ServiceImpl) DetectLaunchers(_ context.Context) []domain.DetectedLauncher {
	if s.detector == nil {
		return nil
	}
	return s.detector.Detect()
}

// Ensure ServiceImpl implements domain.LaunchService.
var _ domain.LaunchService = (*ServiceImpl)(nil)
