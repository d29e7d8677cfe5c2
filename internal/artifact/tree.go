// internal/artifact/tree.go
//
// Generated-artifact tree helpers.
//
// Context
// -------
// Every deployed site owns one directory under the configured sites root,
// named by its site id, holding the generated HTML, assets, and derived
// config files.  The patch engine and its handlers never touch the
// filesystem directly; they go through Tree, which:
//
//   - resolves and guards paths (no escaping the site directory),
//   - writes atomically (temp file in the same directory, then rename),
//     so a cancelled or crashed patch never leaves a half-written file,
//   - offers targeted literal search-and-replace for template hot-fixes.
//
// Notes
// -----
// • Rename is atomic on POSIX filesystems when source and target share a
//   directory, which the temp-file placement guarantees.
// • Oxford commas, two spaces after periods.
package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrPathOutsideTree is returned when a relative path would escape the
// site's directory.
var ErrPathOutsideTree = errors.New("path escapes site artifact tree")

// Tree resolves site ids to artifact directories under one root.
type Tree struct {
	root string
}

// NewTree returns a Tree rooted at sitesDir.
func NewTree(sitesDir string) *Tree {
	return &Tree{root: sitesDir}
}

// Dir returns the absolute artifact directory for a site id.
func (t *Tree) Dir(siteID string) string {
	return filepath.Join(t.root, siteID)
}

// Exists reports whether the site has a generated-artifact directory.
func (t *Tree) Exists(siteID string) bool {
	fi, err := os.Stat(t.Dir(siteID))
	return err == nil && fi.IsDir()
}

// path joins and validates a relative path inside the site directory.
func (t *Tree) path(siteID, rel string) (string, error) {
	dir := t.Dir(siteID)
	p := filepath.Join(dir, filepath.FromSlash(rel))
	if p != dir && !strings.HasPrefix(p, dir+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathOutsideTree, rel)
	}
	return p, nil
}

// ReadFile returns the contents of one file inside the site tree.
func (t *Tree) ReadFile(siteID, rel string) ([]byte, error) {
	p, err := t.path(siteID, rel)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}

// WriteFile writes data to rel atomically, creating parent directories as
// needed.  The temp file lives next to the target so the final rename
// stays on one filesystem.
func (t *Tree) WriteFile(siteID, rel string, data []byte) error {
	p, err := t.path(siteID, rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), "."+filepath.Base(p)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, p); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// ReplaceInFile applies a literal search-and-replace to one file and
// returns the number of occurrences replaced.  Zero occurrences is not an
// error here; callers decide whether that is a failure.
func (t *Tree) ReplaceInFile(siteID, rel, find, replace string) (int, error) {
	if find == "" {
		return 0, errors.New("empty search pattern")
	}
	data, err := t.ReadFile(siteID, rel)
	if err != nil {
		return 0, err
	}

	n := strings.Count(string(data), find)
	if n == 0 {
		return 0, nil
	}

	out := strings.ReplaceAll(string(data), find, replace)
	if err := t.WriteFile(siteID, rel, []byte(out)); err != nil {
		return 0, err
	}
	return n, nil
}
