package steam

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/launch_mgr/internal/infra"
)

const libraryFolders = `"libraryfolders"
{
	"0"
	{
		"path"		"/steam"
		"label"		""
	}
	"1"
	{
		"path"		"/games/SteamLibrary"
	}
}
`

func manifest(id, name, dir, owner string) string {
	return `"AppState"
{
	"appid"		"` + id + `"
	"name"		"` + name + `"
	"installdir"		"` + dir + `"
	"LastOwner"		"` + owner + `"
}
`
}

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
}

func TestLibrary_InstalledApps(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/steam/steamapps/libraryfolders.vdf", libraryFolders)
	writeFile(t, fs, "/steam/steamapps/appmanifest_730.acf",
		manifest("730", "Counter-Strike 2", "Counter-Strike Global Offensive", "76561197960265729"))
	writeFile(t, fs, "/games/SteamLibrary/steamapps/appmanifest_570.acf",
		manifest("570", "Dota 2", "dota 2 beta", ""))
	writeFile(t, fs, "/games/SteamLibrary/steamapps/appmanifest_bad.acf", "not vdf {")
	writeFile(t, fs, "/games/SteamLibrary/steamapps/workshop.acf", manifest("1", "x", "x", ""))

	apps := NewLibrary(fs, zap.NewNop()).InstalledApps("/steam")

	require.Len(t, apps, 2)
	byID := map[uint32]App{}
	for _, a := range apps {
		byID[a.ID] = a
	}
	assert.Equal(t, App{
		ID:          730,
		Name:        "Counter-Strike 2",
		InstallPath: "/steam/steamapps/common/Counter-Strike Global Offensive",
		LastOwner:   "76561197960265729",
	}, byID[730])
	assert.Equal(t, "Dota 2", byID[570].Name)
	assert.Empty(t, byID[570].LastOwner)
}

func TestLibrary_LibraryFolders(t *testing.T) {
	t.Run("root only without file", func(t *testing.T) {
		lib := NewLibrary(afero.NewMemMapFs(), zap.NewNop())
		assert.Equal(t, []string{"/steam"}, lib.LibraryFolders("/steam"))
	})

	t.Run("dedupes root and keeps order", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeFile(t, fs, "/steam/steamapps/libraryfolders.vdf", libraryFolders)
		lib := NewLibrary(fs, zap.NewNop())
		assert.Equal(t, []string{"/steam", "/games/SteamLibrary"}, lib.LibraryFolders("/steam"))
	})

	t.Run("legacy flat layout", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeFile(t, fs, "/steam/steamapps/libraryfolders.vdf", `"LibraryFolders"
{
	"TimeNextStatsReport"		"1600000000"
	"1"		"/mnt/lib"
}
`)
		lib := NewLibrary(fs, zap.NewNop())
		folders := lib.LibraryFolders("/steam")
		assert.Equal(t, []string{"/steam", "/mnt/lib"}, folders)
	})
}

func TestLibrary_ManifestDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/steam/steamapps/appmanifest_10.acf", `"AppState"
{
	"appid"		"10"
}
`)
	apps := NewLibrary(fs, zap.NewNop()).InstalledApps("/steam")

	require.Len(t, apps, 1)
	assert.Equal(t, UnknownGameName, apps[0].Name)
	assert.Empty(t, apps[0].InstallPath)
}

func TestRewriteOfflineMarker(t *testing.T) {
	tabbed := "\"users\"\n{\n\t\"1\"\n\t{\n\t\t\"WantsOfflineMode\"\t\t\"0\"\n\t}\n}\n"
	spaced := `"users" { "1" { "WantsOfflineMode" "0" } "2" { "WantsOfflineMode" "0" } }`

	on := RewriteOfflineMarker(tabbed, true)
	assert.Contains(t, on, "\"WantsOfflineMode\"\t\t\"1\"")
	assert.Equal(t, tabbed, RewriteOfflineMarker(on, false))

	onSpaced := RewriteOfflineMarker(spaced, true)
	assert.NotContains(t, onSpaced, `"WantsOfflineMode" "0"`)
	assert.Equal(t, spaced, RewriteOfflineMarker(onSpaced, false))

	// Already in the requested state.
	assert.Equal(t, tabbed, RewriteOfflineMarker(tabbed, false))
}

func TestSetOfflineMarker(t *testing.T) {
	fs := afero.NewMemMapFs()
	files := infra.NewTextFiles(fs)
	path := LoginUsersPath("/steam")

	t.Run("missing file", func(t *testing.T) {
		changed, err := SetOfflineMarker(files, path, true)
		require.NoError(t, err)
		assert.False(t, changed)
	})

	writeFile(t, fs, path, "\"users\"\n{\n\t\"76561197960265729\"\n\t{\n\t\t\"WantsOfflineMode\"\t\t\"0\"\n\t}\n}\n")

	t.Run("flips to offline", func(t *testing.T) {
		changed, err := SetOfflineMarker(files, path, true)
		require.NoError(t, err)
		assert.True(t, changed)

		text, err := files.ReadText(path)
		require.NoError(t, err)
		assert.Contains(t, text, "\"WantsOfflineMode\"\t\t\"1\"")
	})

	t.Run("no-op when already offline", func(t *testing.T) {
		changed, err := SetOfflineMarker(files, path, true)
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("back online", func(t *testing.T) {
		changed, err := SetOfflineMarker(files, path, false)
		require.NoError(t, err)
		assert.True(t, changed)
	})
}
