package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/launch_mgr/internal/domain"
	"github.com/eliteGoblin/focusd/launch_mgr/internal/steam"
)

// LaunchConfig holds the wait policy of a launch.
type LaunchConfig struct {
	ExitPollInterval  time.Duration
	ExitMaxWait       time.Duration
	LoginPollInterval time.Duration
	LoginMaxRetries   int
}

// DefaultLaunchConfig returns the default wait policy.
func DefaultLaunchConfig() LaunchConfig {
	return LaunchConfig{
		ExitPollInterval:  500 * time.Millisecond,
		ExitMaxWait:       10 * time.Second,
		LoginPollInterval: time.Second,
		LoginMaxRetries:   30,
	}
}

// Orchestrator runs the launch state machine:
//
//	START -> OFFLINE_TOGGLE -> [ACCOUNT_SWITCH -> [AWAIT_LOGIN]] -> LAUNCH -> DONE
//
// FAILED is reached only when the install root is unknown or a client
// spawn fails. Every other failure is logged and the launch carries on.
type Orchestrator struct {
	paths     domain.PathProvider
	procs     domain.ProcessController
	files     domain.TextFileStore
	ledger    *FirewallLedger
	lifecycle *LifecycleController
	poller    *IdentityPoller
	config    LaunchConfig
	logger    *zap.Logger
}

// NewOrchestrator wires an orchestrator from its collaborators.
func NewOrchestrator(
	paths domain.PathProvider,
	procs domain.ProcessController,
	files domain.TextFileStore,
	ledger *FirewallLedger,
	lifecycle *LifecycleController,
	poller *IdentityPoller,
	config LaunchConfig,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		paths:     paths,
		procs:     procs,
		files:     files,
		ledger:    ledger,
		lifecycle: lifecycle,
		poller:    poller,
		config:    config,
		logger:    logger,
	}
}

// Launch runs req to completion and reports the states it went through.
// The report is returned even on failure.
func (o *Orchestrator) Launch(ctx context.Context, req domain.LaunchRequest) (*domain.LaunchReport, error) {
	report := &domain.LaunchReport{Request: req}
	report.States = append(report.States, domain.StateStart)

	fail := func(err error) (*domain.LaunchReport, error) {
		report.States = append(report.States, domain.StateFailed)
		o.logger.Error("launch failed",
			zap.Uint32("game_id", req.GameID),
			zap.Error(err))
		return report, err
	}

	root, err := o.paths.SteamRoot()
	if err != nil {
		return fail(fmt.Errorf("launch game %d: %w", req.GameID, err))
	}
	image := o.paths.ProcessImage(domain.LauncherSteam)
	steamExe := filepath.Join(root, image)

	o.logger.Info("launching game",
		zap.Uint32("game_id", req.GameID),
		zap.Bool("offline", req.Offline),
		zap.String("account", req.TargetAccountName))

	report.States = append(report.States, domain.StateOfflineToggle)
	o.toggleOffline(ctx, root, image, req.Offline)

	if req.WantsSwitch() {
		report.States = append(report.States, domain.StateAccountSwitch)
		o.lifecycle.TerminateAndAwaitExit(ctx, image, o.config.ExitPollInterval, o.config.ExitMaxWait)

		localID, resolved := ResolveFromFile(o.files, steam.LoginUsersPath(root), req.TargetAccountName)
		if !resolved {
			o.logger.Warn("account not found in login cache, skipping login wait",
				zap.String("account", req.TargetAccountName))
		}

		if err := o.procs.Spawn(ctx, steamExe, "", "-login", req.TargetAccountName); err != nil {
			return fail(fmt.Errorf("start steam login: %w", err))
		}

		if resolved {
			report.States = append(report.States, domain.StateAwaitLogin)
			report.LocalAccountID = localID
			report.LoginConfirmed = o.poller.AwaitActiveIdentity(localID, o.config.LoginPollInterval, o.config.LoginMaxRetries)
			if !report.LoginConfirmed {
				o.logger.Warn("login not confirmed in time, launching anyway",
					zap.String("account", req.TargetAccountName),
					zap.Uint32("account_id", localID))
			}
		}
	}

	report.States = append(report.States, domain.StateLaunch)
	if err := o.procs.Spawn(ctx, steamExe, "", "-applaunch", strconv.FormatUint(uint64(req.GameID), 10)); err != nil {
		return fail(fmt.Errorf("launch game %d: %w", req.GameID, err))
	}

	report.States = append(report.States, domain.StateDone)
	o.logger.Info("game launched", zap.Uint32("game_id", req.GameID))
	return report, nil
}

// toggleOffline applies or lifts offline mode. All failures are absorbed.
func (o *Orchestrator) toggleOffline(ctx context.Context, root, image string, offline bool) {
	if offline {
		o.lifecycle.TerminateAndAwaitExit(ctx, image, o.config.ExitPollInterval, o.config.ExitMaxWait)
		o.setSteamRules(ctx, true)
	} else {
		o.setSteamRules(ctx, false)
	}

	loginUsers := steam.LoginUsersPath(root)
	changed, err := steam.SetOfflineMarker(o.files, loginUsers, offline)
	if err != nil {
		o.logger.Warn("failed to update offline marker",
			zap.String("path", loginUsers),
			zap.Error(err))
		return
	}
	if changed {
		o.logger.Info("offline marker updated", zap.Bool("offline", offline))
	}
}

// setSteamRules blocks or unblocks both Steam executables.
func (o *Orchestrator) setSteamRules(ctx context.Context, blocked bool) {
	if !blocked {
		o.ledger.SetBlocked(ctx, domain.RuleSteamExe, "", false)
		o.ledger.SetBlocked(ctx, domain.RuleSteamWebHelper, "", false)
		return
	}
	for _, path := range o.paths.LauncherExecutables(domain.LauncherSteam) {
		o.ledger.SetBlocked(ctx, domain.RuleSteamExe, path, true)
	}
	for _, path := range o.paths.LauncherExecutables(domain.LauncherSteamWebHelper) {
		o.ledger.SetBlocked(ctx, domain.RuleSteamWebHelper, path, true)
	}
}
