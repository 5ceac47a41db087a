package organizer

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"tidy/internal/rules"
	"tidy/pkg/sniff"
)

// mover runs the categorize-then-move sequence for single files. One
// mover is shared by all workers of a run; the per-directory locks
// make the check-then-claim step safe under concurrency.
type mover struct {
	rules *rules.Rules
	opts  Options
	locks *dirLocks

	dirMu   sync.Mutex
	dirs    map[string]bool
	created int
}

func newMover(r *rules.Rules, opts Options) *mover {
	return &mover{
		rules: r,
		opts:  opts,
		locks: newDirLocks(),
		dirs:  make(map[string]bool),
	}
}

// execute organizes one file and returns its outcome plus the number
// of target directories created on the way. Every failure is folded
// into the Outcome; nothing escapes to the pool.
func (m *mover) execute(job Job) (Outcome, int) {
	out := Outcome{Source: job.Path}

	out.Category = m.categoryFor(job)
	targetDir := filepath.Join(job.Base, out.Category)
	if m.opts.ByDate && isImageExt(extensionOf(job.Name)) {
		targetDir = filepath.Join(targetDir, captureMonth(job.Path))
	}

	if m.opts.Mode == ModePreview {
		out.Status = StatusPlanned
		out.Dest = filepath.Join(targetDir, job.Name)
		return out, 0
	}

	created, err := m.ensureDir(targetDir)
	if err != nil {
		return fail(out, err), created
	}

	// Hold the directory lock across resolve and claim so no sibling
	// worker can pick the same free name.
	lock := m.locks.forDir(targetDir)
	lock.Lock()
	dest := resolveConflict(filepath.Join(targetDir, job.Name), pathExists)
	warning, err := moveFile(job.Path, dest)
	lock.Unlock()

	if err != nil {
		return fail(out, err), created
	}

	out.Status = StatusMoved
	out.Dest = dest
	out.Warning = warning
	return out, created
}

func (m *mover) categoryFor(job Job) string {
	ext := extensionOf(job.Name)
	if ext == "" && m.opts.Sniff {
		ext = sniff.Hint(job.Path)
	}
	return m.rules.Category(ext)
}

// ensureDir creates dir if this run has not seen it yet. Racing
// creators converging on the same directory are harmless; the cache
// keeps the created count honest and skips repeated MkdirAll calls.
func (m *mover) ensureDir(dir string) (int, error) {
	m.dirMu.Lock()
	defer m.dirMu.Unlock()

	if m.dirs[dir] {
		return 0, nil
	}
	_, statErr := os.Stat(dir)
	if statErr == nil {
		m.dirs[dir] = true
		return 0, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}
	m.dirs[dir] = true
	m.created++
	return 1, nil
}

// createdDirs is only meaningful once all workers have finished.
func (m *mover) createdDirs() int {
	m.dirMu.Lock()
	defer m.dirMu.Unlock()
	return m.created
}

func fail(out Outcome, err error) Outcome {
	out.Status = StatusFailed
	out.Err = err
	out.Kind = classify(err)
	return out
}

func classify(err error) FailureKind {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return FailNotFound
	case errors.Is(err, fs.ErrExist):
		return FailAlreadyExists
	case errors.Is(err, fs.ErrPermission):
		return FailPermission
	default:
		return FailIO
	}
}

// moveFile moves src to dest without ever replacing an existing file:
// the destination is claimed with a hard link, so a name grabbed by
// another process after conflict resolution surfaces as fs.ErrExist
// instead of being overwritten. Cross-device moves fall back to
// copy-then-delete; filesystems without hard links fall back to a
// checked rename. A non-empty warning means the data reached dest but
// the source copy could not be removed.
func moveFile(src, dest string) (string, error) {
	err := os.Link(src, dest)
	if err == nil {
		return removeSource(src)
	}
	if errors.Is(err, fs.ErrExist) || errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
		return "", err
	}
	if errors.Is(err, syscall.EXDEV) {
		if err := copyFile(src, dest); err != nil {
			return "", err
		}
		return removeSource(src)
	}

	// Hard links unsupported here (FAT, some network mounts). The
	// per-directory lock still guards in-process racers; recheck the
	// destination before the plain rename.
	if pathExists(dest) {
		return "", fmt.Errorf("destination %s: %w", dest, fs.ErrExist)
	}
	return "", os.Rename(src, dest)
}

func removeSource(src string) (string, error) {
	if err := os.Remove(src); err != nil {
		return fmt.Sprintf("source not removed after move: %v", err), nil
	}
	return "", nil
}

// copyFile writes dest exclusively, so a destination claimed by
// another process after conflict resolution surfaces as fs.ErrExist.
func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dest)
		return err
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		_ = os.Remove(dest)
		return err
	}
	return out.Close()
}
