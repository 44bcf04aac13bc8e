package fixtures

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/eliteGoblin/focusd/launch_mgr/internal/domain"
)

// Spawn records one process start.
type Spawn struct {
	Path string
	Dir  string
	Args []string
}

// FakeProcessController simulates the OS process table. Spawning the Steam
// client with -login marks it running and, when LoginSignal is set, signs
// the account in.
type FakeProcessController struct {
	mu         sync.Mutex
	running    map[string]bool
	spawns     []Spawn
	terminated []string
	SpawnErr   error

	// LoginSignal and Accounts let a -login spawn update the active identity.
	LoginSignal *FakeIdentitySignal
	Accounts    []FakeAccount
}

// NewFakeProcessController creates an empty process table.
func NewFakeProcessController() *FakeProcessController {
	return &FakeProcessController{running: make(map[string]bool)}
}

// SetRunning marks image as running or not.
func (p *FakeProcessController) SetRunning(image string, running bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running[strings.ToLower(image)] = running
}

func (p *FakeProcessController) Spawn(_ context.Context, path, dir string, args ...string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.SpawnErr != nil {
		return p.SpawnErr
	}
	p.spawns = append(p.spawns, Spawn{Path: path, Dir: dir, Args: append([]string(nil), args...)})

	if len(args) == 2 && args[0] == "-login" {
		p.running["steam.exe"] = true
		if p.LoginSignal != nil {
			for _, a := range p.Accounts {
				if strings.EqualFold(a.AccountName, args[1]) {
					p.LoginSignal.Set(a.LocalID)
				}
			}
		}
	}
	return nil
}

func (p *FakeProcessController) TerminateByImageName(_ context.Context, image string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.terminated = append(p.terminated, image)
	delete(p.running, strings.ToLower(image))
	return nil
}

func (p *FakeProcessController) IsRunning(image string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running[strings.ToLower(image)]
}

// Spawns returns every recorded spawn.
func (p *FakeProcessController) Spawns() []Spawn {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Spawn(nil), p.spawns...)
}

// Terminated returns every image passed to TerminateByImageName.
func (p *FakeProcessController) Terminated() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.terminated...)
}

// FakeFirewallStore keeps rules in memory. Duplicate names are allowed, as
// in the real store, so leaks are observable.
type FakeFirewallStore struct {
	mu    sync.Mutex
	rules []domain.FirewallRule
}

// NewFakeFirewallStore creates an empty rule store.
func NewFakeFirewallStore() *FakeFirewallStore {
	return &FakeFirewallStore{}
}

func (s *FakeFirewallStore) AddOutboundBlockRule(_ context.Context, rule domain.FirewallRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append(s.rules, rule)
	return nil
}

func (s *FakeFirewallStore) RemoveRule(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.rules[:0]
	for _, r := range s.rules {
		if r.Name != name {
			kept = append(kept, r)
		}
	}
	s.rules = kept
	return nil
}

func (s *FakeFirewallStore) RuleExists(_ context.Context, name string) (bool, error) {
	return s.Count(name) > 0, nil
}

// Count returns how many rules carry name.
func (s *FakeFirewallStore) Count(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.rules {
		if r.Name == name {
			n++
		}
	}
	return n
}

// Rules returns a copy of all rules.
func (s *FakeFirewallStore) Rules() []domain.FirewallRule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.FirewallRule(nil), s.rules...)
}

// FakeIdentitySignal reports a settable active account. Zero means no
// account is signed in and reads fail.
type FakeIdentitySignal struct {
	mu     sync.Mutex
	active uint32
	reads  int
}

// Set changes the active account.
func (s *FakeIdentitySignal) Set(localID uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = localID
}

func (s *FakeIdentitySignal) ReadActiveIdentity() (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.active == 0 {
		return 0, fmt.Errorf("no active process")
	}
	return s.active, nil
}

// Reads returns how many times the signal was read.
func (s *FakeIdentitySignal) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

var (
	_ domain.ProcessController = (*FakeProcessController)(nil)
	_ domain.FirewallStore     = (*FakeFirewallStore)(nil)
	_ domain.IdentitySignal    = (*FakeIdentitySignal)(nil)
)
