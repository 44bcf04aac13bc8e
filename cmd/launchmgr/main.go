// Package main is the CLI entry point for launchmgr.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/launch_mgr/internal/config"
	"github.com/eliteGoblin/focusd/launch_mgr/internal/domain"
	"github.com/eliteGoblin/focusd/launch_mgr/internal/infra"
	"github.com/eliteGoblin/focusd/launch_mgr/internal/logging"
	"github.com/eliteGoblin/focusd/launch_mgr/internal/policy"
	"github.com/eliteGoblin/focusd/launch_mgr/internal/steam"
	"github.com/eliteGoblin/focusd/launch_mgr/internal/usecase"
)

var (
	// Version info (set via ldflags)
	Version   = "0.1.0"
	Commit    = "dev"
	BuildTime = "unknown"
)

var (
	configPath string
	verbose    bool
	jsonOutput bool

	launchAccount string
	launchOffline bool
	ruleUnblock   bool

	// Set up by PersistentPreRunE for commands that need it.
	svc    domain.LaunchService
	logger *zap.Logger
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if logger != nil {
		_ = logger.Sync()
	}
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "launchmgr",
	Short: "Game launcher manager - accounts, firewall rules and launches",
	Long: `launchmgr manages the game clients installed on this machine
(Steam, Epic, Ubisoft, EA, Rockstar). It blocks and unblocks their network
access with outbound firewall rules, lists and switches cached Steam
accounts, and launches Steam games under a chosen account, optionally
in offline mode.`,
	Version:           Version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "List installed Steam games",
	Args:  cobra.NoArgs,
	RunE:  runGames,
}

var launchCmd = &cobra.Command{
	Use:   "launch <appid>",
	Short: "Launch a Steam game",
	Long: `Launches a Steam game by app id.

With --account, Steam is restarted signed in as that account and the game
is launched once the login is confirmed (or after a timeout).
With --offline, Steam's network access is blocked and the client is put
in offline mode first; without it, both are lifted.`,
	Args: cobra.ExactArgs(1),
	RunE: runLaunch,
}

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List Steam accounts cached on this machine",
	Args:  cobra.NoArgs,
	RunE:  runAccounts,
}

var switchCmd = &cobra.Command{
	Use:   "switch <account>",
	Short: "Restart Steam signed in as another cached account",
	Args:  cobra.ExactArgs(1),
	RunE:  runSwitch,
}

var firewallCmd = &cobra.Command{
	Use:   "firewall",
	Short: "Manage launcher firewall rules",
}

var firewallStatusCmd = &cobra.Command{
	Use:   "status <launcher>",
	Short: "Show whether a launcher is blocked",
	Args:  cobra.ExactArgs(1),
	RunE:  runFirewallStatus,
}

var firewallBlockCmd = &cobra.Command{
	Use:   "block <launcher>",
	Short: "Block network access for all of a launcher's executables",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return runFirewallToggle(cmd, args[0], true) },
}

var firewallUnblockCmd = &cobra.Command{
	Use:   "unblock <launcher>",
	Short: "Restore network access for a launcher",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return runFirewallToggle(cmd, args[0], false) },
}

var firewallFilesCmd = &cobra.Command{
	Use:   "files <launcher>",
	Short: "List a launcher's executables and their rules",
	Args:  cobra.ExactArgs(1),
	RunE:  runFirewallFiles,
}

var firewallRuleCmd = &cobra.Command{
	Use:   "rule <rule-name> <path>",
	Short: "Block (or with --unblock, unblock) a single executable",
	Args:  cobra.ExactArgs(2),
	RunE:  runFirewallRule,
}

var openCmd = &cobra.Command{
	Use:   "open <launcher>",
	Short: "Start a launcher",
	Args:  cobra.ExactArgs(1),
	RunE:  runOpen,
}

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect installed launchers",
	Args:  cobra.NoArgs,
	RunE:  runDetect,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Prints version, commit, and build time. Use --json for machine-readable output.`,
	// No service needed.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	Run:               runVersion,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "Config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Also log to stderr")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	launchCmd.Flags().StringVar(&launchAccount, "account", "", "Account to switch to before launching")
	launchCmd.Flags().BoolVar(&launchOffline, "offline", false, "Block Steam and launch in offline mode")
	firewallRuleCmd.Flags().BoolVar(&ruleUnblock, "unblock", false, "Remove the rule instead of adding it")

	firewallCmd.AddCommand(firewallStatusCmd, firewallBlockCmd, firewallUnblockCmd, firewallFilesCmd, firewallRuleCmd)
	rootCmd.AddCommand(gamesCmd, launchCmd, accountsCmd, switchCmd, firewallCmd, openCmd, detectCmd, versionCmd)
}

// setup loads configuration and wires the service.
func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err = logging.New(logging.Options{
		File:    cfg.LogFile,
		Level:   cfg.LogLevel,
		Console: verbose,
	})
	if err != nil {
		return err
	}

	overrides, err := cfg.LauncherOverrides()
	if err != nil {
		return err
	}

	svc = newService(afero.NewOsFs(), cfg, overrides, logger)
	logger.Debug("launchmgr started",
		zap.String("command", cmd.CommandPath()),
		zap.String("version", Version))
	return nil
}

func newService(fs afero.Fs, cfg *config.Config, overrides map[domain.LauncherID][]string, logger *zap.Logger) *usecase.ServiceImpl {
	executor := infra.NewExecutor()
	registry := policy.NewRegistry(fs, infra.NewInstallLocator(), cfg.SteamDir, overrides)

	return usecase.NewService(usecase.ServiceDeps{
		Paths:    registry,
		Procs:    infra.NewProcessController(executor),
		Firewall: infra.NewFirewallStore(executor),
		Identity: infra.NewIdentitySignal(),
		Files:    infra.NewTextFiles(fs),
		Apps:     steam.NewLibrary(fs, logger),
		Detector: registry,
	},
		usecase.WithLaunchConfig(usecase.LaunchConfig{
			ExitPollInterval:  cfg.ExitPollInterval,
			ExitMaxWait:       cfg.ExitMaxWait,
			LoginPollInterval: cfg.LoginPollInterval,
			LoginMaxRetries:   cfg.LoginMaxRetries,
		}),
		usecase.WithLogger(logger),
	)
}

func runGames(cmd *cobra.Command, _ []string) error {
	games, err := svc.ListInstalledGames(cmd.Context())
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), games)
	}

	w := table(cmd.OutOrStdout())
	fmt.Fprintln(w, "ID\tNAME\tOWNER\tACCOUNT\tPATH")
	for _, g := range games {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", g.ID, g.Name, g.OwnerName, g.AccountName, g.Path)
	}
	return w.Flush()
}

func runLaunch(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid app id %q", args[0])
	}

	report, err := svc.LaunchGame(cmd.Context(), domain.LaunchRequest{
		GameID:            uint32(id),
		TargetAccountName: launchAccount,
		Offline:           launchOffline,
	})
	if jsonOutput && report != nil {
		if jerr := writeJSON(cmd.OutOrStdout(), report); jerr != nil {
			return jerr
		}
		return err
	}
	if report != nil {
		states := make([]string, len(report.States))
		for i, s := range report.States {
			states[i] = string(s)
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(states, " -> "))
		if report.Visited(domain.StateAwaitLogin) && !report.LoginConfirmed {
			fmt.Fprintln(cmd.OutOrStdout(), "Warning: login was not confirmed before launch")
		}
	}
	return err
}

func runAccounts(cmd *cobra.Command, _ []string) error {
	accounts, err := svc.ListCachedAccounts(cmd.Context())
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), accounts)
	}

	w := table(cmd.OutOrStdout())
	fmt.Fprintln(w, "ACCOUNT\tNAME\tSTEAM ID\tLAST LOGIN\tRECENT")
	for _, a := range accounts {
		recent := ""
		if a.IsMostRecent {
			recent = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", a.AccountName, a.DisplayName, a.ExternalID, a.LastLoginTimestamp, recent)
	}
	return w.Flush()
}

func runSwitch(cmd *cobra.Command, args []string) error {
	if err := svc.SwitchAccount(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Steam restarting as %s\n", args[0])
	return nil
}

func runFirewallStatus(cmd *cobra.Command, args []string) error {
	id, err := domain.ParseLauncherID(args[0])
	if err != nil {
		return err
	}
	blocked := svc.GetFirewallStatus(cmd.Context(), id)
	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), map[string]any{"launcher": id, "blocked": blocked})
	}
	state := "allowed"
	if blocked {
		state = "blocked"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", id, state)
	return nil
}

func runFirewallToggle(cmd *cobra.Command, launcher string, block bool) error {
	id, err := domain.ParseLauncherID(launcher)
	if err != nil {
		return err
	}
	msg, err := svc.ToggleFirewall(cmd.Context(), id, block)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}

func runFirewallFiles(cmd *cobra.Command, args []string) error {
	id, err := domain.ParseLauncherID(args[0])
	if err != nil {
		return err
	}
	files, err := svc.ListBlockableFiles(cmd.Context(), id)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), files)
	}

	w := table(cmd.OutOrStdout())
	fmt.Fprintln(w, "RULE\tBLOCKED\tPATH")
	for _, f := range files {
		fmt.Fprintf(w, "%s\t%t\t%s\n", f.RuleName, f.Blocked, f.Path)
	}
	return w.Flush()
}

func runFirewallRule(cmd *cobra.Command, args []string) error {
	return svc.ToggleSingleFileRule(cmd.Context(), args[0], args[1], !ruleUnblock)
}

func runOpen(cmd *cobra.Command, args []string) error {
	id, err := domain.ParseLauncherID(args[0])
	if err != nil {
		return err
	}
	return svc.OpenLauncher(cmd.Context(), id)
}

func runDetect(cmd *cobra.Command, _ []string) error {
	found := svc.DetectLaunchers(cmd.Context())
	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), found)
	}

	w := table(cmd.OutOrStdout())
	fmt.Fprintln(w, "LAUNCHER\tSTATUS\tPATH")
	for _, d := range found {
		fmt.Fprintf(w, "%s\t%s\t%s\n", d.Name, d.Status, d.Path)
	}
	return w.Flush()
}

func runVersion(cmd *cobra.Command, _ []string) {
	out := cmd.OutOrStdout()
	if jsonOutput {
		fmt.Fprintf(out, `{"version":"%s","commit":"%s","build_time":"%s"}`+"\n",
			Version, Commit, BuildTime)
	} else {
		fmt.Fprintf(out, "launchmgr %s (commit: %s, built: %s)\n",
			Version, Commit, BuildTime)
	}
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
