// Package snapshot provides read-only access to a previously collected
// node state snapshot (log files, command-output captures, config files).
// All engine file access goes through a Root so that checks never touch
// the live system.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Root wraps the directory a snapshot was unpacked into.
type Root struct {
	dir string
}

// NewRoot creates a Root for dir. The directory must exist.
func NewRoot(dir string) (*Root, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("snapshot root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("snapshot root %q is not a directory", dir)
	}
	return &Root{dir: dir}, nil
}

// Dir returns the snapshot root directory.
func (r *Root) Dir() string {
	return r.dir
}

// Path resolves a snapshot-relative path to an absolute one.
func (r *Root) Path(rel string) string {
	return filepath.Join(r.dir, rel)
}

// Exists reports whether a snapshot-relative path exists.
func (r *Root) Exists(rel string) bool {
	_, err := os.Stat(r.Path(rel))
	return err == nil
}

// Command returns the contents of a command-output capture, e.g.
// "sos_commands/dpkg/dpkg_-l". Absence is reported via os.IsNotExist on
// the returned error.
func (r *Root) Command(rel string) ([]byte, error) {
	return os.ReadFile(r.Path(rel))
}

// LogPaths expands a snapshot-relative glob to absolute log paths. With
// allLogs set, rotated variants (path.1, path.2.gz, ...) are included by
// widening the glob. Results are sorted for deterministic search
// registration.
func (r *Root) LogPaths(glob string, allLogs bool) ([]string, error) {
	pattern := r.Path(glob)
	if allLogs {
		pattern += "*"
	}
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("expand log glob %q: %w", glob, err)
	}
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			continue
		}
		// Compressed rotations are collected but not searchable yet.
		if strings.HasSuffix(p, ".gz") {
			continue
		}
		files = append(files, p)
	}
	sort.Strings(files)
	return files, nil
}
