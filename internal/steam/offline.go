package steam

import (
	"fmt"
	"strings"

	"github.com/eliteGoblin/focusd/launch_mgr/internal/domain"
)

// The client writes the marker with either two tabs or a single space
// between key and value, depending on version. Both are rewritten.
var offlineMarkerSeparators = []string{"\t\t", " "}

func offlineMarker(sep, value string) string {
	return `"WantsOfflineMode"` + sep + `"` + value + `"`
}

// RewriteOfflineMarker flips every "WantsOfflineMode" entry in text to the
// requested state. Other formatting is left untouched.
func RewriteOfflineMarker(text string, offline bool) string {
	from, to := "1", "0"
	if offline {
		from, to = "0", "1"
	}
	for _, sep := range offlineMarkerSeparators {
		text = strings.ReplaceAll(text, offlineMarker(sep, from), offlineMarker(sep, to))
	}
	return text
}

// SetOfflineMarker rewrites the login cache at path in place.
// A missing file is not an error; it returns false when nothing was written.
func SetOfflineMarker(files domain.TextFileStore, path string, offline bool) (bool, error) {
	if !files.Exists(path) {
		return false, nil
	}

	text, err := files.ReadText(path)
	if err != nil {
		return false, fmt.Errorf("read login cache: %w", err)
	}

	updated := RewriteOfflineMarker(text, offline)
	if updated == text {
		return false, nil
	}
	if err := files.WriteText(path, updated); err != nil {
		return false, fmt.Errorf("write login cache: %w", err)
	}
	return true, nil
}
