package organizer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidy/internal/rules"
)

func TestRunEndToEnd(t *testing.T) {
	source := t.TempDir()
	writeFile(t, filepath.Join(source, "report.pdf"), "pdf")
	writeFile(t, filepath.Join(source, "photo.jpg"), "jpg")
	writeFile(t, filepath.Join(source, "notes.txt"), "new")
	writeFile(t, filepath.Join(source, "Documents", "notes.txt"), "old")

	summary, outcomes, err := Run(context.Background(), source, rules.Default(), Options{Mode: ModeOrganize}, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Submitted)
	assert.Equal(t, 3, summary.Moved)
	assert.Equal(t, 0, summary.Failed)
	assert.Len(t, outcomes, 3)

	assert.FileExists(t, filepath.Join(source, "Documents", "report.pdf"))
	assert.FileExists(t, filepath.Join(source, "Documents", "notes_1.txt"))
	assert.FileExists(t, filepath.Join(source, "Images", "photo.jpg"))

	old, err := os.ReadFile(filepath.Join(source, "Documents", "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "old", string(old))

	// Images was created by the run, Documents pre-existed.
	assert.Equal(t, 1, summary.DirsCreated)
}

func TestRunEmptySource(t *testing.T) {
	source := t.TempDir()

	summary, outcomes, err := Run(context.Background(), source, rules.Default(), Options{Mode: ModeOrganize}, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Submitted)
	assert.Equal(t, 0, summary.DirsCreated)
	assert.Empty(t, outcomes)

	entries, err := os.ReadDir(source)
	require.NoError(t, err)
	assert.Empty(t, entries, "no directories should be created and the lock file should be gone")
}

func TestRunSecondPassIsIdempotent(t *testing.T) {
	source := t.TempDir()
	writeFile(t, filepath.Join(source, "a.txt"), "a")
	writeFile(t, filepath.Join(source, "b.mp3"), "b")

	first, _, err := Run(context.Background(), source, rules.Default(), Options{Mode: ModeOrganize}, nil)
	require.NoError(t, err)
	require.Equal(t, 2, first.Submitted)

	second, _, err := Run(context.Background(), source, rules.Default(), Options{Mode: ModeOrganize}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Submitted)
	assert.Equal(t, 0, second.Failed)
}

func TestRunInvalidSource(t *testing.T) {
	_, _, err := Run(context.Background(), filepath.Join(t.TempDir(), "missing"), rules.Default(), Options{Mode: ModeOrganize}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSource)

	file := filepath.Join(t.TempDir(), "plain.txt")
	writeFile(t, file, "x")
	_, _, err = Run(context.Background(), file, rules.Default(), Options{Mode: ModeOrganize}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSource)
}

func TestRunInterrupted(t *testing.T) {
	source := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		writeFile(t, filepath.Join(source, name), name)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, _, err := Run(ctx, source, rules.Default(), Options{Mode: ModeOrganize}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInterrupted)
	assert.Equal(t, 0, summary.Moved, "canceled run must not move files")
}

func TestRunDrainDeadline(t *testing.T) {
	const files = 200

	source := t.TempDir()
	for i := 0; i < files; i++ {
		writeFile(t, filepath.Join(source, fmt.Sprintf("f%03d.txt", i)), "x")
	}

	// A deadline that expires immediately: the single worker cannot
	// drain the backlog before the timer fires.
	summary, outcomes, err := Run(context.Background(), source, rules.Default(),
		Options{Mode: ModeOrganize, Workers: 1, DrainTimeout: time.Nanosecond}, nil)
	require.NoError(t, err, "a blown deadline is a warning, not a failure")

	assert.True(t, summary.TimedOut)
	assert.Less(t, summary.Moved, files, "the deadline must cut the backlog short")
	assert.Equal(t, summary.Submitted, summary.Moved+summary.Skipped,
		"every job handed to the worker reaches a terminal state")
	assert.Equal(t, 0, summary.Unfinished)
	assert.Len(t, outcomes, summary.Submitted)

	for _, out := range outcomes {
		if out.Status == StatusSkipped {
			assert.Equal(t, "canceled", out.Reason)
			assert.FileExists(t, out.Source, "abandoned files stay in the source")
		}
	}
	// Completed moves are not rolled back on timeout.
	if summary.Moved > 0 {
		entries, readErr := os.ReadDir(filepath.Join(source, "Documents"))
		require.NoError(t, readErr)
		assert.Len(t, entries, summary.Moved)
	}
}

func TestRunRefusesLockedSource(t *testing.T) {
	source := t.TempDir()
	writeFile(t, filepath.Join(source, "a.txt"), "a")

	held := flock.New(filepath.Join(source, ".tidy.lock"))
	ok, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	defer held.Unlock()

	_, _, err = Run(context.Background(), source, rules.Default(), Options{Mode: ModeOrganize}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLocked)
}

func TestRunPermissionFailureIsIsolated(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	source := t.TempDir()
	writeFile(t, filepath.Join(source, "notes.txt"), "n")
	writeFile(t, filepath.Join(source, "photo.jpg"), "p")

	docs := filepath.Join(source, "Documents")
	require.NoError(t, os.Mkdir(docs, 0o555))
	t.Cleanup(func() { _ = os.Chmod(docs, 0o755) })

	summary, outcomes, err := Run(context.Background(), source, rules.Default(), Options{Mode: ModeOrganize}, nil)
	require.NoError(t, err, "per-file failures must not abort the run")

	assert.Equal(t, 2, summary.Submitted)
	assert.Equal(t, 1, summary.Moved)
	assert.Equal(t, 1, summary.Failed)
	assert.FileExists(t, filepath.Join(source, "Images", "photo.jpg"))

	var failed *Outcome
	for i := range outcomes {
		if outcomes[i].Status == StatusFailed {
			failed = &outcomes[i]
		}
	}
	require.NotNil(t, failed)
	assert.Equal(t, FailPermission, failed.Kind)
	assert.Equal(t, filepath.Join(source, "notes.txt"), failed.Source)
}

func TestRunSniffsExtensionlessFiles(t *testing.T) {
	pngHeader := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00}

	t.Run("enabled", func(t *testing.T) {
		source := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(source, "mystery"), pngHeader, 0o644))

		_, _, err := Run(context.Background(), source, rules.Default(), Options{Mode: ModeOrganize, Sniff: true}, nil)
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(source, "Images", "mystery"))
	})

	t.Run("disabled", func(t *testing.T) {
		source := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(source, "mystery"), pngHeader, 0o644))

		_, _, err := Run(context.Background(), source, rules.Default(), Options{Mode: ModeOrganize}, nil)
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(source, "Others", "mystery"))
	})
}

func TestRunByDateFilesImagesByCaptureMonth(t *testing.T) {
	source := t.TempDir()
	require.NoError(t, buildJPEGWithDate(filepath.Join(source, "snap.jpg"), "2024:01:02 03:04:05"))

	summary, _, err := Run(context.Background(), source, rules.Default(), Options{Mode: ModeOrganize, ByDate: true}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Moved)
	assert.FileExists(t, filepath.Join(source, "Images", "2024-01", "snap.jpg"))
}

func TestRunProgressUpdates(t *testing.T) {
	source := t.TempDir()
	writeFile(t, filepath.Join(source, "a.txt"), "a")
	writeFile(t, filepath.Join(source, "b.jpg"), "b")

	updates := make(chan ProgressUpdate, 64)
	summary, _, err := Run(context.Background(), source, rules.Default(), Options{Mode: ModeOrganize}, updates)
	require.NoError(t, err)
	close(updates)

	total, processed, dirs := 0, 0, 0
	for u := range updates {
		total += u.TotalDelta
		processed += u.ProcessedDelta
		dirs += u.DirsCreatedDelta
	}
	assert.Equal(t, summary.Submitted, total)
	assert.Equal(t, summary.Moved, processed)
	assert.Equal(t, summary.DirsCreated, dirs)
}
