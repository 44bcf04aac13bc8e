package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/eliteGoblin/focusd/launch_mgr/internal/domain"
)

// spawnCall records one ProcessController.Spawn.
type spawnCall struct {
	path string
	dir  string
	args []string
}

// mockProcessController implements domain.ProcessController for testing.
// An image reports running for as many IsRunning checks as runningChecks
// holds for it.
type mockProcessController struct {
	runningChecks map[string]int
	terminateErr  error
	spawnErr      map[string]error // keyed by first argument
	terminated    []string
	spawns        []spawnCall
}

func newMockProcessController() *mockProcessController {
	return &mockProcessController{
		runningChecks: make(map[string]int),
		spawnErr:      make(map[string]error),
	}
}

func (m *mockProcessController) Spawn(_ context.Context, path, dir string, args ...string) error {
	key := ""
	if len(args) > 0 {
		key = args[0]
	}
	if err := m.spawnErr[key]; err != nil {
		return err
	}
	m.spawns = append(m.spawns, spawnCall{path: path, dir: dir, args: args})
	return nil
}

func (m *mockProcessController) TerminateByImageName(_ context.Context, image string) error {
	m.terminated = append(m.terminated, image)
	return m.terminateErr
}

func (m *mockProcessController) IsRunning(image string) bool {
	if m.runningChecks[image] > 0 {
		m.runningChecks[image]--
		return true
	}
	return false
}

// mockFirewallStore implements domain.FirewallStore as a multiset of rules,
// so duplicate adds are visible.
type mockFirewallStore struct {
	rules       map[string][]string
	removeCalls int
	addErr      error
	removeErr   error
	existsErr   error
}

func newMockFirewallStore() *mockFirewallStore {
	return &mockFirewallStore{rules: make(map[string][]string)}
}

func (m *mockFirewallStore) AddOutboundBlockRule(_ context.Context, rule domain.FirewallRule) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.rules[rule.Name] = append(m.rules[rule.Name], rule.TargetPath)
	return nil
}

func (m *mockFirewallStore) RemoveRule(_ context.Context, name string) error {
	m.removeCalls++
	if m.removeErr != nil {
		return m.removeErr
	}
	delete(m.rules, name)
	return nil
}

func (m *mockFirewallStore) RuleExists(_ context.Context, name string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	return len(m.rules[name]) > 0, nil
}

// mockIdentitySignal replays values, then fails every read.
type mockIdentitySignal struct {
	values []uint32
	reads  int
}

func (m *mockIdentitySignal) ReadActiveIdentity() (uint32, error) {
	m.reads++
	if len(m.values) == 0 {
		return 0, errors.New("no active process")
	}
	v := m.values[0]
	m.values = m.values[1:]
	return v, nil
}

// mockPaths implements domain.PathProvider for testing.
type mockPaths struct {
	root    string
	rootErr error
	exes    map[domain.LauncherID][]string
}

func (m *mockPaths) LauncherExecutables(id domain.LauncherID) []string {
	if id.IsSteam() {
		id = domain.LauncherSteam
	}
	return m.exes[id]
}

func (m *mockPaths) MainExecutable(id domain.LauncherID) (string, error) {
	exes := m.LauncherExecutables(id)
	if len(exes) == 0 {
		return "", domain.ErrLauncherPathsNotFound
	}
	return exes[0], nil
}

func (m *mockPaths) ProcessImage(id domain.LauncherID) string {
	if id.IsSteam() {
		return "steam.exe"
	}
	return ""
}

func (m *mockPaths) SteamRoot() (string, error) {
	if m.rootErr != nil {
		return "", m.rootErr
	}
	return m.root, nil
}

// runWithClock runs fn, advancing clock by step whenever fn is asleep on it,
// until fn returns.
func runWithClock(t *testing.T, clock *clockwork.FakeClock, step time.Duration, fn func()) {
	t.Helper()

	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-done:
			return
		case <-deadline:
			t.Fatal("function did not return")
		default:
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		err := clock.BlockUntilContext(ctx, 1)
		cancel()
		if err == nil {
			clock.Advance(step)
		}
	}
}
