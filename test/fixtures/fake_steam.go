// Package fixtures provides test helpers for integration tests.
package fixtures

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/eliteGoblin/focusd/launch_mgr/internal/domain"
	"github.com/eliteGoblin/focusd/launch_mgr/internal/keyvalue"
)

// FakeAccount is one cached login written to the fake loginusers.vdf.
type FakeAccount struct {
	LocalID     uint32
	AccountName string
	PersonaName string
	Timestamp   uint64
	MostRecent  bool
	Offline     bool
}

// ExternalID returns the 64-bit id the client stores for the account.
func (a FakeAccount) ExternalID() string {
	return strconv.FormatUint(domain.SteamIDBase+uint64(a.LocalID), 10)
}

// FakeGame is one installed app with its manifest.
type FakeGame struct {
	AppID      uint32
	Name       string
	InstallDir string
	Owner      *FakeAccount
}

// FakeSteamStructure builds a directory tree mimicking a Steam install on
// an afero filesystem.
type FakeSteamStructure struct {
	Fs       afero.Fs
	Root     string
	Accounts []FakeAccount
	Games    []FakeGame
	// Wrapped writes loginusers.vdf with the duplicated "users" wrapper.
	Wrapped bool
}

// NewFakeSteamStructure creates a new fake Steam structure generator.
func NewFakeSteamStructure(fs afero.Fs, root string) *FakeSteamStructure {
	return &FakeSteamStructure{Fs: fs, Root: root}
}

// Create writes the executables, library folders, manifests and login cache.
func (f *FakeSteamStructure) Create() error {
	for _, exe := range f.Executables() {
		if err := f.write(exe, "MZ"); err != nil {
			return err
		}
	}

	libraries := fmt.Sprintf("\"libraryfolders\"\n{\n\t\"0\"\n\t{\n\t\t\"path\"\t\t\"%s\"\n\t}\n}\n", f.Root)
	if err := f.write(filepath.Join(f.Root, "steamapps", "libraryfolders.vdf"), libraries); err != nil {
		return err
	}

	for _, g := range f.Games {
		if err := f.write(f.manifestPath(g.AppID), f.manifest(g)); err != nil {
			return err
		}
		if err := f.Fs.MkdirAll(filepath.Join(f.Root, "steamapps", "common", g.InstallDir), 0o755); err != nil {
			return err
		}
	}

	return f.write(f.LoginUsersPath(), f.LoginUsers())
}

// Executables returns the Steam client and web helper paths.
func (f *FakeSteamStructure) Executables() []string {
	return []string{
		filepath.Join(f.Root, "steam.exe"),
		filepath.Join(f.Root, "bin", "cef", "cef.win7x64", "steamwebhelper.exe"),
	}
}

// LoginUsersPath returns the path of the login cache.
func (f *FakeSteamStructure) LoginUsersPath() string {
	return filepath.Join(f.Root, "config", "loginusers.vdf")
}

// LoginUsers renders the login cache for the configured accounts.
func (f *FakeSteamStructure) LoginUsers() string {
	records := keyvalue.NewRecords()
	for _, a := range f.Accounts {
		records.Add(a.ExternalID(), keyvalue.Record{
			"AccountName":      a.AccountName,
			"PersonaName":      a.PersonaName,
			"Timestamp":        strconv.FormatUint(a.Timestamp, 10),
			"MostRecent":       boolFlag(a.MostRecent),
			"WantsOfflineMode": boolFlag(a.Offline),
		})
	}
	text := keyvalue.Encode("users", records)
	if !f.Wrapped {
		return text
	}

	// Indent the canonical body one level inside a second "users" block.
	body := strings.TrimPrefix(text, "\"users\"\n")
	lines := strings.Split(strings.TrimSuffix(body, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "\t" + l
	}
	return "\"users\"\n{\n\t\"users\"\n" + strings.Join(lines, "\n") + "\n}\n"
}

// ReadLoginUsers returns the current login cache content.
func (f *FakeSteamStructure) ReadLoginUsers() (string, error) {
	data, err := afero.ReadFile(f.Fs, f.LoginUsersPath())
	return string(data), err
}

// AppIDs returns the configured app ids in ascending order.
func (f *FakeSteamStructure) AppIDs() []uint32 {
	ids := make([]uint32, 0, len(f.Games))
	for _, g := range f.Games {
		ids = append(ids, g.AppID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Cleanup removes the fake Steam tree.
func (f *FakeSteamStructure) Cleanup() error {
	return f.Fs.RemoveAll(f.Root)
}

func (f *FakeSteamStructure) manifestPath(appID uint32) string {
	return filepath.Join(f.Root, "steamapps", fmt.Sprintf("appmanifest_%d.acf", appID))
}

func (f *FakeSteamStructure) manifest(g FakeGame) string {
	owner := "0"
	if g.Owner != nil {
		owner = g.Owner.ExternalID()
	}
	return fmt.Sprintf("\"AppState\"\n{\n\t\"appid\"\t\t\"%d\"\n\t\"name\"\t\t\"%s\"\n\t\"installdir\"\t\t\"%s\"\n\t\"LastOwner\"\t\t\"%s\"\n}\n",
		g.AppID, g.Name, g.InstallDir, owner)
}

func (f *FakeSteamStructure) write(path, content string) error {
	if err := f.Fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return afero.WriteFile(f.Fs, path, []byte(content), 0o644)
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
