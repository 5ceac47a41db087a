package organizer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureMonthFromExif(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snap.jpg")
	require.NoError(t, buildJPEGWithDate(path, "2024:01:02 03:04:05"))

	assert.Equal(t, "2024-01", captureMonth(path))
}

func TestCaptureMonthFallsBackToModTime(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.jpg")
	// JPEG magic only, no EXIF segment.
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xd8, 0xff, 0xdb, 0x00, 0x04, 0xff, 0xd9}, 0o644))

	stamp := time.Date(2021, time.July, 14, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(path, stamp, stamp))

	assert.Equal(t, "2021-07", captureMonth(path))
}

func TestIsImageExt(t *testing.T) {
	assert.True(t, isImageExt("jpg"))
	assert.True(t, isImageExt("png"))
	assert.False(t, isImageExt("pdf"))
	assert.False(t, isImageExt(""))
}
