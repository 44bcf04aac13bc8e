// Package steam reads and patches the Steam client's on-disk state:
// library folders, app manifests and the login cache.
package steam

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/andygrunwald/vdf"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// UnknownGameName is used for manifests without a name.
const UnknownGameName = "Unknown Game"

// App is one installed Steam app as described by its appmanifest_*.acf.
type App struct {
	ID          uint32
	Name        string
	InstallPath string
	// LastOwner is the 64-bit id of the account that last updated the app.
	// Empty when the manifest does not say.
	LastOwner string
}

// Library scans Steam library folders.
type Library struct {
	fs     afero.Fs
	logger *zap.Logger
}

// NewLibrary creates a library scanner on fs.
func NewLibrary(fs afero.Fs, logger *zap.Logger) *Library {
	return &Library{fs: fs, logger: logger}
}

// LoginUsersPath returns where the client caches its logins.
func LoginUsersPath(root string) string {
	return filepath.Join(root, "config", "loginusers.vdf")
}

// LibraryFolders returns every library root listed in
// steamapps/libraryfolders.vdf. The install root itself always comes first.
func (l *Library) LibraryFolders(root string) []string {
	folders := []string{root}
	seen := map[string]bool{filepath.Clean(root): true}

	m, err := l.parseFile(filepath.Join(root, "steamapps", "libraryfolders.vdf"))
	if err != nil {
		l.logger.Debug("no library folders file", zap.String("root", root), zap.Error(err))
		return folders
	}

	lfs, ok := m["libraryfolders"].(map[string]any)
	if !ok {
		l.logger.Warn("libraryfolders is not a map", zap.String("root", root))
		return folders
	}

	// Library entries are keyed "0", "1", ... in the order the client shows them.
	keys := make([]string, 0, len(lfs))
	for k := range lfs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		if errA != nil || errB != nil {
			return keys[i] < keys[j]
		}
		return a < b
	})

	for _, k := range keys {
		var path string
		switch v := lfs[k].(type) {
		case map[string]any:
			path, _ = v["path"].(string)
		case string:
			// Pre-2021 layout: "1" "D:\\SteamLibrary", next to non-library
			// keys such as "TimeNextStatsReport".
			if _, err := strconv.Atoi(k); err == nil {
				path = v
			}
		}
		if path == "" {
			continue
		}
		if seen[filepath.Clean(path)] {
			continue
		}
		seen[filepath.Clean(path)] = true
		folders = append(folders, path)
	}
	return folders
}

// InstalledApps reads every appmanifest in every library folder.
// Unreadable folders and manifests are skipped.
func (l *Library) InstalledApps(root string) []App {
	var apps []App
	for _, folder := range l.LibraryFolders(root) {
		steamApps := filepath.Join(folder, "steamapps")
		entries, err := afero.ReadDir(l.fs, steamApps)
		if err != nil {
			l.logger.Debug("skipping library folder", zap.String("path", steamApps), zap.Error(err))
			continue
		}

		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || !strings.HasPrefix(name, "appmanifest_") || !strings.HasSuffix(name, ".acf") {
				continue
			}
			app, ok := l.readManifest(filepath.Join(steamApps, name))
			if ok {
				apps = append(apps, app)
			}
		}
	}
	return apps
}

func (l *Library) readManifest(path string) (App, bool) {
	m, err := l.parseFile(path)
	if err != nil {
		l.logger.Warn("failed to parse app manifest", zap.String("path", path), zap.Error(err))
		return App{}, false
	}

	state, ok := m["appstate"].(map[string]any)
	if !ok {
		l.logger.Warn("appstate is not a map", zap.String("path", path))
		return App{}, false
	}

	rawID, _ := state["appid"].(string)
	id, err := strconv.ParseUint(rawID, 10, 32)
	if err != nil {
		l.logger.Warn("invalid appid in manifest", zap.String("path", path), zap.String("appid", rawID))
		return App{}, false
	}

	app := App{ID: uint32(id), Name: UnknownGameName}
	if name, ok := state["name"].(string); ok && name != "" {
		app.Name = name
	}
	if dir, ok := state["installdir"].(string); ok && dir != "" {
		app.InstallPath = filepath.Join(filepath.Dir(path), "common", dir)
	}
	app.LastOwner, _ = state["lastowner"].(string)
	return app, true
}

func (l *Library) parseFile(path string) (map[string]any, error) {
	f, err := l.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			l.logger.Warn("error closing vdf file", zap.String("path", path), zap.Error(closeErr))
		}
	}()

	m, err := vdf.NewParser(f).Parse()
	if err != nil {
		return nil, err
	}
	return normalizeVDFKeys(m), nil
}

// normalizeVDFKeys recursively lowercases all keys.
// Valve writes LastOwner, AppID and friends with inconsistent casing.
func normalizeVDFKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			v = normalizeVDFKeys(nested)
		}
		out[strings.ToLower(k)] = v
	}
	return out
}
