// Package lockfile implements mmdl10n.lock, a record of the strings the
// last extraction produced for each branch. Comparing a new extraction
// against it tells how much the template changed before it is uploaded.
//
// Strings are stored as MD5 checksums of the msgid, mapped to a checksum
// of the locations that reference them.
package lockfile

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// LockFileName is the default lock file name.
const LockFileName = "mmdl10n.lock"

// Version is the lock file format version.
const Version = 1

// LockFile represents the mmdl10n.lock file structure.
type LockFile struct {
	Version   int                          `yaml:"version"`
	Checksums map[string]map[string]string `yaml:"checksums"` // branch -> hash(msgid) -> hash(locations)

	mu   sync.Mutex `yaml:"-"`
	path string     `yaml:"-"`
}

// Snapshot maps each extracted msgid to its location tokens.
type Snapshot map[string][]string

// Changes counts the difference between a snapshot and the recorded one.
type Changes struct {
	Added   int
	Removed int
	// Moved counts strings kept but referenced from different locations.
	Moved int
}

// Empty reports whether nothing changed.
func (c Changes) Empty() bool {
	return c.Added == 0 && c.Removed == 0 && c.Moved == 0
}

func (c Changes) String() string {
	return fmt.Sprintf("+%d -%d ~%d", c.Added, c.Removed, c.Moved)
}

// Load reads a lock file from the given directory.
// Returns an empty lock file if the file doesn't exist.
func Load(dir string) (*LockFile, error) {
	path := filepath.Join(dir, LockFileName)
	lf := &LockFile{
		Version:   Version,
		Checksums: make(map[string]map[string]string),
		path:      path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return lf, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, lf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if lf.Version != Version {
		return nil, fmt.Errorf("%s: unsupported version %d", path, lf.Version)
	}
	lf.path = path

	if lf.Checksums == nil {
		lf.Checksums = make(map[string]map[string]string)
	}

	return lf, nil
}

// Save writes the lock file to disk.
func (lf *LockFile) Save() error {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	if lf.path == "" {
		return fmt.Errorf("lock file path not set")
	}

	data, err := yaml.Marshal(lf)
	if err != nil {
		return fmt.Errorf("marshaling lock file: %w", err)
	}

	if err := os.WriteFile(lf.path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", lf.path, err)
	}

	return nil
}

// Path returns the lock file path.
func (lf *LockFile) Path() string {
	return lf.path
}

// Hash computes the MD5 hex digest of a string.
func Hash(s string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(s)))
}

func locationsHash(tokens []string) string {
	sorted := append([]string(nil), tokens...)
	sort.Strings(sorted)
	return Hash(strings.Join(sorted, "\n"))
}

func checksums(s Snapshot) map[string]string {
	out := make(map[string]string, len(s))
	for msgid, tokens := range s {
		out[Hash(msgid)] = locationsHash(tokens)
	}
	return out
}

// Diff compares a snapshot with the one recorded for branch. Every string
// counts as added when the branch was never recorded.
func (lf *LockFile) Diff(branch string, s Snapshot) Changes {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	old := lf.Checksums[branch]
	current := checksums(s)

	var c Changes
	for key, locs := range current {
		prev, ok := old[key]
		switch {
		case !ok:
			c.Added++
		case prev != locs:
			c.Moved++
		}
	}
	for key := range old {
		if _, ok := current[key]; !ok {
			c.Removed++
		}
	}
	return c
}

// Record replaces the snapshot of branch.
func (lf *LockFile) Record(branch string, s Snapshot) {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	lf.Checksums[branch] = checksums(s)
}

// RemoveBranch drops everything recorded for branch.
func (lf *LockFile) RemoveBranch(branch string) {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	delete(lf.Checksums, branch)
}

// Stats returns the number of branches and total strings in the lock file.
func (lf *LockFile) Stats() (branches, keys int) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	branches = len(lf.Checksums)
	for _, m := range lf.Checksums {
		keys += len(m)
	}
	return
}

// Branches returns the recorded branches, sorted.
func (lf *LockFile) Branches() []string {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	branches := make([]string, 0, len(lf.Checksums))
	for b := range lf.Checksums {
		branches = append(branches, b)
	}
	sort.Strings(branches)
	return branches
}

// Summary returns a human-readable summary string.
func (lf *LockFile) Summary() string {
	branches, keys := lf.Stats()
	if branches == 0 {
		return "empty"
	}

	var parts []string
	for _, b := range lf.Branches() {
		parts = append(parts, fmt.Sprintf("%s: %d strings", b, len(lf.Checksums[b])))
	}
	return fmt.Sprintf("%d branches, %d strings (%s)", branches, keys, strings.Join(parts, ", "))
}
