//go:build integration

package integration

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/launch_mgr/internal/domain"
	"github.com/eliteGoblin/focusd/launch_mgr/internal/infra"
	"github.com/eliteGoblin/focusd/launch_mgr/internal/policy"
	"github.com/eliteGoblin/focusd/launch_mgr/internal/steam"
	"github.com/eliteGoblin/focusd/launch_mgr/internal/usecase"
	"github.com/eliteGoblin/focusd/launch_mgr/test/fixtures"
)

var _ = Describe("Launch Service", func() {
	var (
		ctx      context.Context
		fs       afero.Fs
		fake     *fixtures.FakeSteamStructure
		procs    *fixtures.FakeProcessController
		firewall *fixtures.FakeFirewallStore
		identity *fixtures.FakeIdentitySignal
		svc      *usecase.ServiceImpl

		alice = fixtures.FakeAccount{LocalID: 1001, AccountName: "alice", PersonaName: "Alice", Timestamp: 100}
		bob   = fixtures.FakeAccount{LocalID: 2002, AccountName: "bob", PersonaName: "Bob", Timestamp: 500, MostRecent: true}
	)

	steamExe := func() string { return fake.Executables()[0] }

	BeforeEach(func() {
		ctx = context.Background()
		fs = afero.NewMemMapFs()

		fake = fixtures.NewFakeSteamStructure(fs, "/steam")
		fake.Accounts = []fixtures.FakeAccount{alice, bob}
		fake.Games = []fixtures.FakeGame{
			{AppID: 730, Name: "Counter-Strike 2", InstallDir: "Counter-Strike Global Offensive", Owner: &bob},
			{AppID: 570, Name: "Dota 2", InstallDir: "dota 2 beta"},
		}
		Expect(fake.Create()).To(Succeed())

		procs = fixtures.NewFakeProcessController()
		firewall = fixtures.NewFakeFirewallStore()
		identity = &fixtures.FakeIdentitySignal{}
		procs.LoginSignal = identity
		procs.Accounts = fake.Accounts

		registry := policy.NewRegistry(fs, infra.NewInstallLocator(), fake.Root, nil)
		svc = usecase.NewService(usecase.ServiceDeps{
			Paths:    registry,
			Procs:    procs,
			Firewall: firewall,
			Identity: identity,
			Files:    infra.NewTextFiles(fs),
			Apps:     steam.NewLibrary(fs, zap.NewNop()),
			Detector: registry,
		},
			usecase.WithLaunchConfig(usecase.LaunchConfig{
				ExitPollInterval:  time.Millisecond,
				ExitMaxWait:       10 * time.Millisecond,
				LoginPollInterval: time.Millisecond,
				LoginMaxRetries:   5,
			}),
			usecase.WithLogger(zap.NewNop()),
		)
	})

	AfterEach(func() {
		Expect(fake.Cleanup()).To(Succeed())
	})

	Describe("LaunchGame", func() {
		Context("with no account and online", func() {
			It("should go straight to a single -applaunch spawn", func() {
				report, err := svc.LaunchGame(ctx, domain.LaunchRequest{GameID: 730})
				Expect(err).NotTo(HaveOccurred())

				Expect(report.States).To(Equal([]domain.LaunchState{
					domain.StateStart, domain.StateOfflineToggle, domain.StateLaunch, domain.StateDone,
				}))
				Expect(procs.Spawns()).To(Equal([]fixtures.Spawn{
					{Path: steamExe(), Args: []string{"-applaunch", "730"}},
				}))
				Expect(procs.Terminated()).To(BeEmpty())
			})
		})

		Context("with the Unknown placeholder and offline", func() {
			It("should toggle offline mode without switching", func() {
				procs.SetRunning("steam.exe", true)

				report, err := svc.LaunchGame(ctx, domain.LaunchRequest{
					GameID:            730,
					TargetAccountName: domain.UnknownName,
					Offline:           true,
				})
				Expect(err).NotTo(HaveOccurred())

				Expect(report.Visited(domain.StateAccountSwitch)).To(BeFalse())
				Expect(report.Visited(domain.StateAwaitLogin)).To(BeFalse())
				Expect(procs.Terminated()).To(ConsistOf("steam.exe"))
				Expect(firewall.Count(domain.RuleSteamExe)).To(Equal(1))
				Expect(firewall.Count(domain.RuleSteamWebHelper)).To(Equal(1))

				cache, err := fake.ReadLoginUsers()
				Expect(err).NotTo(HaveOccurred())
				Expect(cache).NotTo(ContainSubstring("\"WantsOfflineMode\"\t\t\"0\""))
				Expect(cache).To(ContainSubstring("\"WantsOfflineMode\"\t\t\"1\""))

				Expect(procs.Spawns()).To(HaveLen(1))
				Expect(procs.Spawns()[0].Args).To(Equal([]string{"-applaunch", "730"}))
			})

			It("should restore online mode on the next online launch", func() {
				_, err := svc.LaunchGame(ctx, domain.LaunchRequest{GameID: 730, Offline: true})
				Expect(err).NotTo(HaveOccurred())
				_, err = svc.LaunchGame(ctx, domain.LaunchRequest{GameID: 730, Offline: true})
				Expect(err).NotTo(HaveOccurred())
				Expect(firewall.Count(domain.RuleSteamExe)).To(Equal(1), "repeat blocks must not leak rules")

				_, err = svc.LaunchGame(ctx, domain.LaunchRequest{GameID: 730})
				Expect(err).NotTo(HaveOccurred())

				Expect(firewall.Rules()).To(BeEmpty())
				cache, err := fake.ReadLoginUsers()
				Expect(err).NotTo(HaveOccurred())
				Expect(cache).NotTo(ContainSubstring("\"WantsOfflineMode\"\t\t\"1\""))
			})
		})

		Context("with a cached account", func() {
			It("should log in, wait for the identity and launch", func() {
				procs.SetRunning("steam.exe", true)

				report, err := svc.LaunchGame(ctx, domain.LaunchRequest{GameID: 570, TargetAccountName: "Alice"})
				Expect(err).NotTo(HaveOccurred())

				Expect(report.Visited(domain.StateAwaitLogin)).To(BeTrue())
				Expect(report.LoginConfirmed).To(BeTrue())
				Expect(report.LocalAccountID).To(Equal(alice.LocalID))

				spawns := procs.Spawns()
				Expect(spawns).To(HaveLen(2))
				Expect(spawns[0].Args).To(Equal([]string{"-login", "Alice"}))
				Expect(spawns[1].Args).To(Equal([]string{"-applaunch", "570"}))
			})
		})

		Context("with a wrapped login cache", func() {
			It("should still resolve the account", func() {
				fake.Wrapped = true
				Expect(fake.Create()).To(Succeed())

				report, err := svc.LaunchGame(ctx, domain.LaunchRequest{GameID: 570, TargetAccountName: "bob"})
				Expect(err).NotTo(HaveOccurred())
				Expect(report.LocalAccountID).To(Equal(bob.LocalID))
				Expect(report.LoginConfirmed).To(BeTrue())
			})
		})

		Context("when Steam is not installed", func() {
			It("should fail before spawning anything", func() {
				Expect(fake.Cleanup()).To(Succeed())

				report, err := svc.LaunchGame(ctx, domain.LaunchRequest{GameID: 730})
				Expect(err).To(MatchError(domain.ErrSteamNotFound))
				Expect(report.Visited(domain.StateFailed)).To(BeTrue())
				Expect(procs.Spawns()).To(BeEmpty())
			})
		})
	})

	Describe("Library and accounts", func() {
		It("should list installed games with their owners", func() {
			games, err := svc.ListInstalledGames(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(games).To(ConsistOf(
				domain.InstalledGame{
					ID: 730, Name: "Counter-Strike 2",
					Path:      "/steam/steamapps/common/Counter-Strike Global Offensive",
					OwnerName: "Bob", AccountName: "bob",
				},
				domain.InstalledGame{
					ID: 570, Name: "Dota 2",
					Path:      "/steam/steamapps/common/dota 2 beta",
					OwnerName: domain.UnknownName, AccountName: domain.UnknownName,
				},
			))
		})

		It("should list cached accounts most recent first", func() {
			accounts, err := svc.ListCachedAccounts(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(accounts).To(HaveLen(2))
			Expect(accounts[0].AccountName).To(Equal("bob"))
			Expect(accounts[0].IsMostRecent).To(BeTrue())
			Expect(accounts[1].AccountName).To(Equal("alice"))
		})
	})

	Describe("Firewall", func() {
		It("should block and unblock every Steam executable", func() {
			msg, err := svc.ToggleFirewall(ctx, domain.LauncherSteamAll, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(msg).To(Equal("Steam Full firewall rules updated"))
			Expect(svc.GetFirewallStatus(ctx, domain.LauncherSteam)).To(BeTrue())

			files, err := svc.ListBlockableFiles(ctx, domain.LauncherSteam)
			Expect(err).NotTo(HaveOccurred())
			Expect(files).To(HaveLen(2))
			for _, f := range files {
				Expect(f.Blocked).To(BeTrue())
			}

			_, err = svc.ToggleFirewall(ctx, domain.LauncherSteam, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(svc.GetFirewallStatus(ctx, domain.LauncherSteam)).To(BeFalse())
		})

		It("should name rules per executable for other launchers", func() {
			msg, err := svc.ToggleFirewall(ctx, domain.LauncherRockstar, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(msg).To(Equal("Rockstar firewall rules updated (4 executables)"))
			for i := 0; i < 4; i++ {
				Expect(firewall.Count(domain.RuleName(domain.LauncherRockstar, i))).To(Equal(1))
			}
		})
	})

	Describe("DetectLaunchers", func() {
		It("should find the fake Steam install", func() {
			found := svc.DetectLaunchers(ctx)
			Expect(found).NotTo(BeEmpty())
			Expect(found[0].ID).To(Equal(domain.LauncherSteamAll))
			Expect(found[0].Status).To(Equal(domain.StatusFound))
			Expect(found[0].Path).To(Equal(steamExe()))
		})
	})
})
