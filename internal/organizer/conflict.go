package organizer

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// extensionOf returns the lower-cased extension of name without the
// dot. A name with no dot, only a leading dot, or a trailing dot has
// no extension.
func extensionOf(name string) string {
	dot := strings.LastIndex(name, ".")
	if dot <= 0 || dot == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[dot+1:])
}

// splitName splits a filename into stem and extension (dot included),
// same rule as extensionOf but preserving case.
func splitName(name string) (string, string) {
	dot := strings.LastIndex(name, ".")
	if dot <= 0 || dot == len(name)-1 {
		return name, ""
	}
	return name[:dot], name[dot:]
}

// resolveConflict returns desired if it is free, otherwise the first
// stem_N.ext (N = 1, 2, ...) for which exists reports false. The
// caller must hold the target directory's lock so the returned path
// stays free until claimed.
func resolveConflict(desired string, exists func(string) bool) string {
	if !exists(desired) {
		return desired
	}
	dir := filepath.Dir(desired)
	stem, ext := splitName(filepath.Base(desired))
	for n := 1; ; n++ {
		candidate := filepath.Join(dir, stem+"_"+strconv.Itoa(n)+ext)
		if !exists(candidate) {
			return candidate
		}
	}
}

func pathExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// dirLocks hands out one mutex per target directory so that resolving
// a conflict-free name and claiming it with the move are serialized
// per directory, without serializing unrelated categories against
// each other.
type dirLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newDirLocks() *dirLocks {
	return &dirLocks{locks: make(map[string]*sync.Mutex)}
}

func (d *dirLocks) forDir(dir string) *sync.Mutex {
	d.mu.Lock()
	defer d.mu.Unlock()
	lock, ok := d.locks[dir]
	if !ok {
		lock = &sync.Mutex{}
		d.locks[dir] = lock
	}
	return lock
}
