package infra

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/eliteGoblin/focusd/launch_mgr/internal/domain"
)

// TextFiles implements domain.TextFileStore on an afero filesystem.
type TextFiles struct {
	fs afero.Fs
}

// NewTextFiles creates a text file store on fs.
func NewTextFiles(fs afero.Fs) *TextFiles {
	return &TextFiles{fs: fs}
}

// Exists checks if a path exists.
func (t *TextFiles) Exists(path string) bool {
	ok, err := afero.Exists(t.fs, path)
	return err == nil && ok
}

// ReadText returns the whole file as a string.
func (t *TextFiles) ReadText(path string) (string, error) {
	data, err := afero.ReadFile(t.fs, path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteText replaces the file content using atomic write pattern.
// Writes to temp file first, syncs, then renames so a running client never
// sees a half-written file. The original file mode is kept.
func (t *TextFiles) WriteText(path, content string) error {
	mode := os.FileMode(0o644)
	if info, err := t.fs.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmpFile, err := afero.TempFile(t.fs, filepath.Dir(path), ".launchmgr-tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()

	// Clean up temp file on any error
	success := false
	defer func() {
		if !success {
			_ = t.fs.Remove(tmpPath)
		}
	}()

	if _, err = tmpFile.WriteString(content); err != nil {
		tmpFile.Close()
		return err
	}
	if err = tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return err
	}
	if err = tmpFile.Close(); err != nil {
		return err
	}
	if err = t.fs.Chmod(tmpPath, mode); err != nil {
		return err
	}
	if err = t.fs.Rename(tmpPath, path); err != nil {
		return err
	}

	success = true
	return nil
}

// Ensure TextFiles implements domain.TextFileStore.
var _ domain.TextFileStore = (*TextFiles)(nil)
